package app

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/bufferlabs/buffer-solver/internal/server"
	"github.com/bufferlabs/buffer-solver/internal/server/handler"
	"github.com/bufferlabs/buffer-solver/internal/server/ws"
)

// Serve starts the HTTP server and, when enabled, the telemetry WebSocket
// hub. It blocks until the context is cancelled or a component fails, then
// drains in-flight requests within the configured shutdown timeout.
func (a *App) Serve(ctx context.Context, deps *Dependencies) error {
	g, ctx := errgroup.WithContext(ctx)

	var hub *ws.Hub
	if a.cfg.Telemetry.WSEnabled {
		hub = ws.NewHub(deps.Bus, a.cfg.Solver.OrderSelection, a.logger)
		g.Go(func() error {
			return hub.Run(ctx)
		})
	}

	handlers := server.Handlers{
		Solve:  handler.NewSolveHandler(deps.Engine, deps.Bus, deps.Stats, a.cfg.Server.MaxBodyBytes, a.logger),
		Notify: handler.NewNotifyHandler(deps.Notifier, deps.Bus, deps.Stats, a.logger),
		Status: handler.NewStatusHandler(deps.Stats, a.cfg.Solver.OrderSelection),
	}

	srv := server.NewServer(server.Config{
		Host:           a.cfg.Server.Host,
		Port:           a.cfg.Server.Port,
		APIKey:         a.cfg.Server.APIKey,
		CORSOrigins:    a.cfg.Server.CORSOrigins,
		RateLimitRPS:   a.cfg.Server.RateLimitRPS,
		RateLimitBurst: a.cfg.Server.RateLimitBurst,
	}, handlers, hub, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Duration)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			a.logger.Error("server shutdown incomplete", slog.String("error", err.Error()))
			return err
		}
		return nil
	})

	return g.Wait()
}
