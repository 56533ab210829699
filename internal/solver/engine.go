// Package solver turns parsed auctions into solution responses: validate
// the auction, pick an order, price it against the buffers.
package solver

import (
	"context"
	"log/slog"
	"time"

	"github.com/bufferlabs/buffer-solver/internal/domain"
)

// Engine runs the validate, select, build pipeline for one auction at a
// time. It keeps no state between requests, so any number of Solve calls
// may run concurrently.
type Engine struct {
	strategy Strategy
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine returns an engine that selects orders with the given
// strategy.
func NewEngine(strategy Strategy, logger *slog.Logger) *Engine {
	return &Engine{
		strategy: strategy,
		logger:   logger.With(slog.String("component", "solver")),
		now:      time.Now,
	}
}

// WithClock overrides the eligibility clock. Tests pin it to keep
// fixtures from expiring.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Solve produces at most one buffer solution for the auction. Finding
// nothing to settle yields an empty response, not an error; an error
// means the auction was semantically broken or solving itself faulted.
func (e *Engine) Solve(ctx context.Context, a *domain.Auction) (domain.SolutionResponse, error) {
	violations, advisories := ValidateAuction(a)
	for _, adv := range advisories {
		e.logger.WarnContext(ctx, "auction advisory",
			slog.String("auction_id", a.LogID()),
			slog.String("code", string(adv.Code)),
			slog.String("detail", adv.Message))
	}
	if len(violations) > 0 {
		return domain.SolutionResponse{}, &domain.SemanticError{Violations: violations}
	}

	eligible := eligibleOrders(a.Orders, e.now())
	if len(eligible) == 0 {
		e.logger.InfoContext(ctx, "no eligible orders",
			slog.String("auction_id", a.LogID()),
			slog.Int("orders", len(a.Orders)))
		return domain.EmptySolutionResponse(), nil
	}

	order, ok := e.strategy.Select(eligible)
	if !ok {
		return domain.EmptySolutionResponse(), nil
	}

	solution, err := BuildBufferSolution(order)
	if err != nil {
		return domain.SolutionResponse{}, err
	}
	e.logger.InfoContext(ctx, "solution built",
		slog.String("auction_id", a.LogID()),
		slog.String("order", string(order.UID)),
		slog.String("strategy", e.strategy.Name()),
		slog.Int("eligible", len(eligible)))
	return domain.SingleSolution(solution), nil
}

// eligibleOrders drops orders that have already expired. Expiry is
// evaluated against the wall clock, not the auction deadline: the
// deadline says when the driver stops listening, not how long orders
// stay valid.
func eligibleOrders(orders []domain.Order, now time.Time) []domain.Order {
	cutoff := now.Unix()
	eligible := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.ValidTo >= cutoff {
			eligible = append(eligible, o)
		}
	}
	return eligible
}
