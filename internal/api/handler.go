package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexivanou/nearport/internal/geo"
	"github.com/alexivanou/nearport/internal/model"
	"github.com/alexivanou/nearport/internal/resolver"
	"github.com/alexivanou/nearport/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SessionHeader lets a client group its resolve calls so that a newer one
// supersedes an older one still in flight.
const SessionHeader = "X-Session-ID"

const kindSuperseded = "superseded"

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	locator service.LocatorInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, locator service.LocatorInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, locator: locator, logger: logger}
}

// SuggestPlaces handles GET /api/v1/places/suggest
func (h *Handler) SuggestPlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	response, err := h.service.SuggestPlaces(r.Context(), model.SuggestRequest{Query: query, Limit: limit})
	if err != nil {
		if errors.Is(err, service.ErrQueryTooShort) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Error suggesting places", zap.String("query", query), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}

// FindNearestCity handles GET /api/v1/nearest
func (h *Handler) FindNearestCity(w http.ResponseWriter, r *http.Request) {
	coord, ok := requireCoordinate(w, r)
	if !ok {
		return
	}

	response, err := h.service.FindNearestCity(r.Context(), coord.Lat, coord.Lon)
	if err != nil {
		h.logger.Error("Error finding nearest city", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if response == nil {
		http.Error(w, "no cities found", http.StatusNotFound)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}

// GetCity handles GET /api/v1/city/{id}
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid city id", http.StatusBadRequest)
		return
	}

	city, err := h.service.GetCityByID(r.Context(), id)
	if err != nil {
		h.logger.Error("Error getting city", zap.Int("id", id), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if city == nil {
		http.Error(w, "city not found", http.StatusNotFound)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, city)
}

// FindNearestAirports handles GET /api/v1/airports/nearest
func (h *Handler) FindNearestAirports(w http.ResponseWriter, r *http.Request) {
	coord, ok := requireCoordinate(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	response, err := h.service.FindNearestAirports(r.Context(), coord.Lat, coord.Lon, limit)
	if err != nil {
		h.logger.Error("Error finding nearest airports", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}

// Resolve handles GET /api/v1/resolve. Coordinates are optional: without
// them the client address is used for an approximate fix.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	req := model.ResolveRequest{
		ClientIP:  clientIP(r),
		SessionID: r.Header.Get(SessionHeader),
	}

	latStr, lonStr := r.URL.Query().Get("lat"), r.URL.Query().Get("lon")
	if latStr != "" || lonStr != "" {
		coord, err := geo.ParseCoordinate(latStr, lonStr)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Coordinate = &coord
	}

	loc, err := h.locator.Resolve(r.Context(), req)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, loc)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) writeResolveError(w http.ResponseWriter, err error) {
	var re *resolver.ResolutionError
	switch {
	case errors.As(err, &re):
		h.logger.Info("Resolution failed", zap.String("kind", string(re.Kind)), zap.Error(err))
		writeJSON(w, h.logger, statusForKind(re.Kind), model.ErrorResponse{
			Error: model.ErrorDetail{Kind: string(re.Kind), Message: re.Message},
		})
	case errors.Is(err, resolver.ErrSuperseded):
		writeJSON(w, h.logger, http.StatusConflict, model.ErrorResponse{
			Error: model.ErrorDetail{Kind: kindSuperseded, Message: err.Error()},
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Debug("Resolution abandoned by client", zap.Error(err))
		http.Error(w, "request canceled", http.StatusServiceUnavailable)
	default:
		h.logger.Error("Error resolving location", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func statusForKind(kind resolver.ErrorKind) int {
	switch kind {
	case resolver.KindPermissionDenied:
		return http.StatusForbidden
	case resolver.KindLocationUnavailable:
		return http.StatusServiceUnavailable
	case resolver.KindTimeout:
		return http.StatusGatewayTimeout
	case resolver.KindGeocodingFailed:
		return http.StatusBadGateway
	case resolver.KindAirportNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding response", zap.Error(err))
	}
}

func requireCoordinate(w http.ResponseWriter, r *http.Request) (model.Coordinate, bool) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")

	if latStr == "" || lonStr == "" {
		http.Error(w, "parameters 'lat' and 'lon' are required", http.StatusBadRequest)
		return model.Coordinate{}, false
	}

	coord, err := geo.ParseCoordinate(latStr, lonStr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return model.Coordinate{}, false
	}
	return coord, true
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		http.Error(w, "invalid limit parameter", http.StatusBadRequest)
		return 0, false
	}
	return limit, true
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
