// Package app provides the top-level application lifecycle management for the
// solver service. It wires together all dependencies (the solving engine,
// telemetry, and notifications), starts the HTTP server, and tears everything
// down on shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bufferlabs/buffer-solver/internal/config"
)

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the HTTP
// server and telemetry goroutines, and blocks until the context is cancelled.
// On return it runs all registered cleanup functions through Close.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting solver",
		slog.String("order_selection", a.cfg.Solver.OrderSelection),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	return a.Serve(ctx, deps)
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down solver")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
