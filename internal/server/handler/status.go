package handler

import (
	"net/http"
	"time"

	"github.com/bufferlabs/buffer-solver/internal/telemetry"
)

// StatusHandler serves runtime information for dashboards.
type StatusHandler struct {
	stats    *telemetry.Stats
	strategy string
}

// NewStatusHandler creates a StatusHandler reporting the given strategy
// name.
func NewStatusHandler(stats *telemetry.Stats, strategy string) *StatusHandler {
	return &StatusHandler{stats: stats, strategy: strategy}
}

type statusResponse struct {
	Service   string             `json:"service"`
	Strategy  string             `json:"strategy"`
	StartedAt time.Time          `json:"started_at"`
	Stats     telemetry.Snapshot `json:"stats"`
}

// GetStatus responds with the solver identity and activity counters.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Service:   "solverd",
		Strategy:  h.strategy,
		StartedAt: h.stats.StartedAt(),
		Stats:     h.stats.Snapshot(),
	})
}
