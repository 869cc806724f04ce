package api

import (
	"net/http"

	"github.com/alexivanou/nearport/internal/stats"
	"go.uber.org/zap"
)

// StatsHandler serves the collector's snapshot
type StatsHandler struct {
	collector *stats.Collector
	logger    *zap.Logger
}

func NewStatsHandler(collector *stats.Collector, logger *zap.Logger) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{collector: collector, logger: logger}
}

// GetStats handles GET /api/v1/stats. Responses are marked no-store.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.collector.Collect(r.Context())
	if err != nil {
		h.logger.Error("Error collecting statistics", zap.Error(err))
		http.Error(w, "failed to collect statistics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, h.logger, http.StatusOK, snapshot)
}
