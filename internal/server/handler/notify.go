package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/bufferlabs/buffer-solver/internal/metrics"
	"github.com/bufferlabs/buffer-solver/internal/telemetry"
)

// maxNotifyBytes bounds how much of a notification body is read. The
// payload is informational, so anything past this is simply ignored.
const maxNotifyBytes = 1 << 20

// Alerter forwards selected notifications to operator channels.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// NotifyHandler acknowledges driver notifications. The protocol requires
// an unconditional acknowledgment: whatever the driver reports, and
// however it is shaped, the endpoint answers OK so a notification can
// never fail a settlement.
type NotifyHandler struct {
	alerter Alerter
	bus     *telemetry.Bus
	stats   *telemetry.Stats
	logger  *slog.Logger
}

// NewNotifyHandler creates a NotifyHandler. The alerter may be nil when
// no operator channels are configured.
func NewNotifyHandler(alerter Alerter, bus *telemetry.Bus, stats *telemetry.Stats, logger *slog.Logger) *NotifyHandler {
	return &NotifyHandler{
		alerter: alerter,
		bus:     bus,
		stats:   stats,
		logger:  logger,
	}
}

// notification is the best-effort view of a driver notification. Fields
// the driver did not send, or sent in an unexpected shape, stay zero.
type notification struct {
	AuctionID *json.Number `json:"auctionId"`
	Kind      string       `json:"kind"`
}

// Notify acknowledges a driver notification and fans it out to
// telemetry and operator alerts.
// POST /api/v1/notify
func (h *NotifyHandler) Notify(w http.ResponseWriter, r *http.Request) {
	h.stats.NotificationReceived()

	kind := "unknown"
	auctionID := ""
	body, err := io.ReadAll(io.LimitReader(r.Body, maxNotifyBytes))
	if err == nil && len(body) > 0 {
		var n notification
		if json.Unmarshal(body, &n) == nil {
			if n.Kind != "" {
				kind = n.Kind
			}
			if n.AuctionID != nil {
				auctionID = n.AuctionID.String()
			}
		}
	}

	metrics.Notifications.WithLabelValues(kind).Inc()
	h.bus.Publish(telemetry.TopicNotifyReceived, map[string]any{
		"auction_id": auctionID,
		"kind":       kind,
	})
	h.logger.InfoContext(r.Context(), "notify: notification received",
		slog.String("auction_id", auctionID),
		slog.String("kind", kind),
	)

	if h.alerter != nil {
		// Alert delivery must not delay the acknowledgment, and it must
		// outlive the request context.
		go func() {
			if err := h.alerter.Notify(context.Background(), kind,
				"driver notification: "+kind,
				"auction "+auctionID); err != nil {
				h.logger.Warn("notify: alert delivery failed",
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "OK"})
}
