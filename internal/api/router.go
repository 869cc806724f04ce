package api

import (
	"net/http"
	"time"

	"github.com/alexivanou/nearport/internal/service"
	"github.com/alexivanou/nearport/internal/stats"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(
	svc service.ServiceInterface,
	locator service.LocatorInterface,
	statsCollector *stats.Collector,
	logger *zap.Logger,
) *mux.Router {
	handler := NewHandler(svc, locator, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()
	router.Use(requestLogger(handler.logger))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/places/suggest", handler.SuggestPlaces).Methods("GET")
	v1.HandleFunc("/nearest", handler.FindNearestCity).Methods("GET")
	v1.HandleFunc("/city/{id}", handler.GetCity).Methods("GET")
	v1.HandleFunc("/airports/nearest", handler.FindNearestAirports).Methods("GET")
	v1.HandleFunc("/resolve", handler.Resolve).Methods("GET")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
