package app

import (
	"fmt"
	"log/slog"

	"github.com/bufferlabs/buffer-solver/internal/config"
	"github.com/bufferlabs/buffer-solver/internal/notify"
	"github.com/bufferlabs/buffer-solver/internal/solver"
	"github.com/bufferlabs/buffer-solver/internal/telemetry"
)

// Dependencies bundles every long-lived object the serve loop needs. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Engine   *solver.Engine
	Bus      *telemetry.Bus
	Stats    *telemetry.Stats
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Solving engine ---
	strategy, err := solver.DefaultRegistry().Get(cfg.Solver.OrderSelection)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: order selection: %w", err)
	}
	deps.Engine = solver.NewEngine(strategy, logger)

	// --- Telemetry ---
	deps.Bus = telemetry.NewBus(cfg.Telemetry.EventBuffer, logger)
	closers = append(closers, deps.Bus.Close)
	deps.Stats = telemetry.NewStats()

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Kinds, logger)

	return deps, cleanup, nil
}
