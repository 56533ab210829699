package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bufferlabs/buffer-solver/internal/server/handler"
	"github.com/bufferlabs/buffer-solver/internal/server/middleware"
	"github.com/bufferlabs/buffer-solver/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host           string
	Port           int
	APIKey         string // if empty, authentication is disabled
	CORSOrigins    []string
	RateLimitRPS   int // if zero, rate limiting is disabled
	RateLimitBurst int
}

// Handlers aggregates the HTTP handlers that the server registers.
type Handlers struct {
	Solve  *handler.SolveHandler
	Notify *handler.NotifyHandler
	Status *handler.StatusHandler
}

// Server is the HTTP + WebSocket front of the solver. It exposes the driver
// protocol endpoints plus health, status, metrics, and the telemetry feed.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered on the ServeMux and
// the middleware chain assembled around them. The health and metrics routes
// stay reachable without credentials so probes and scrapers keep working when
// an API key is set.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Driver protocol.
	mux.HandleFunc("POST /api/v1/solve", handlers.Solve.Solve)
	mux.HandleFunc("POST /api/v1/notify", handlers.Notify.Notify)

	// Operational surface.
	mux.HandleFunc("GET /api/health", handler.HealthCheck)
	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Telemetry WebSocket feed.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain. Wrapping order is inside out: Recover sits
	// closest to the handlers so the outer layers still record the 500 it
	// writes, and Logging runs first so every request is logged, including
	// ones rejected by auth or the rate limiter.
	var h http.Handler = mux
	h = middleware.Recover(logger)(h)
	h = middleware.Auth(cfg.APIKey, "/api/health", "/metrics")(h)
	if cfg.RateLimitRPS > 0 {
		h = middleware.RateLimit(middleware.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))(h)
	}
	h = middleware.CORS(cfg.CORSOrigins)(h)
	h = middleware.Metrics()(h)
	h = middleware.Logging(logger)(h)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: listening",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
