package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bufferlabs/buffer-solver/internal/domain"
	"github.com/bufferlabs/buffer-solver/internal/metrics"
	"github.com/bufferlabs/buffer-solver/internal/telemetry"
)

// SolveService defines the methods that the solve handler requires from
// the solver engine.
type SolveService interface {
	Solve(ctx context.Context, a *domain.Auction) (domain.SolutionResponse, error)
}

// SolveHandler serves the driver-facing auction endpoint.
type SolveHandler struct {
	solver  SolveService
	bus     *telemetry.Bus
	stats   *telemetry.Stats
	logger  *slog.Logger
	maxBody int64
}

// NewSolveHandler creates a SolveHandler. Request bodies larger than
// maxBody bytes are rejected before parsing; zero means the 16 MiB
// default.
func NewSolveHandler(solver SolveService, bus *telemetry.Bus, stats *telemetry.Stats, maxBody int64, logger *slog.Logger) *SolveHandler {
	if maxBody <= 0 {
		maxBody = 16 << 20
	}
	return &SolveHandler{
		solver:  solver,
		bus:     bus,
		stats:   stats,
		logger:  logger,
		maxBody: maxBody,
	}
}

// Solve runs one auction through the solver and returns the solutions.
// An unsolvable but well formed auction yields an empty solution list;
// only malformed or semantically broken input is rejected.
// POST /api/v1/solve
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	metrics.AuctionsReceived.Inc()
	h.stats.AuctionReceived()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.reject(r.Context(), w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return
		}
		h.reject(r.Context(), w, http.StatusBadRequest, "unreadable request body: "+err.Error())
		return
	}

	var auction domain.Auction
	if err := json.Unmarshal(data, &auction); err != nil {
		h.reject(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}

	h.bus.Publish(telemetry.TopicAuctionReceived, map[string]any{
		"auction_id": auction.LogID(),
		"orders":     len(auction.Orders),
		"liquidity":  len(auction.Liquidity),
	})

	resp, err := h.solver.Solve(r.Context(), &auction)
	if err != nil {
		var sem *domain.SemanticError
		if errors.As(err, &sem) {
			h.stats.AuctionRejected()
			metrics.AuctionsRejected.WithLabelValues(kindSemanticViolation).Inc()
			h.bus.Publish(telemetry.TopicAuctionRejected, map[string]any{
				"auction_id": auction.LogID(),
				"kind":       kindSemanticViolation,
				"violations": sem.Violations,
			})
			h.logger.WarnContext(r.Context(), "solve: auction rejected",
				slog.String("auction_id", auction.LogID()),
				slog.Int("violations", len(sem.Violations)),
			)
			writeViolations(w, sem.Violations)
			return
		}

		metrics.Solutions.WithLabelValues("fault").Inc()
		h.logger.ErrorContext(r.Context(), "solve: solver fault",
			slog.String("auction_id", auction.LogID()),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, kindInternalFault, "internal solver fault")
		return
	}

	elapsed := time.Since(start)
	metrics.SolveDuration.Observe(elapsed.Seconds())

	if len(resp.Solutions) == 0 {
		h.stats.SolutionEmpty()
		metrics.Solutions.WithLabelValues("empty").Inc()
		h.bus.Publish(telemetry.TopicSolutionEmpty, map[string]any{
			"auction_id": auction.LogID(),
		})
	} else {
		h.stats.SolutionBuilt()
		metrics.Solutions.WithLabelValues("solution").Inc()
		h.bus.Publish(telemetry.TopicSolutionBuilt, map[string]any{
			"auction_id": auction.LogID(),
			"solutions":  len(resp.Solutions),
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// reject handles requests that never produced a parseable auction.
func (h *SolveHandler) reject(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	h.stats.AuctionRejected()
	metrics.AuctionsRejected.WithLabelValues(kindMalformedInput).Inc()
	h.bus.Publish(telemetry.TopicAuctionRejected, map[string]any{
		"kind":  kindMalformedInput,
		"error": msg,
	})
	h.logger.WarnContext(ctx, "solve: malformed auction",
		slog.String("error", msg),
	)
	writeError(w, status, kindMalformedInput, msg)
}
