package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufferlabs/buffer-solver/internal/server/handler"
	"github.com/bufferlabs/buffer-solver/internal/solver"
	"github.com/bufferlabs/buffer-solver/internal/telemetry"
)

const serveAuctionJSON = `{
	"id": 7,
	"orders": [{
		"uid": "0xbeef",
		"sellToken": "0x0101010101010101010101010101010101010101",
		"buyToken": "0x0202020202020202020202020202020202020202",
		"sellAmount": "500",
		"buyAmount": "400",
		"validTo": 4294967295,
		"kind": "sell",
		"owner": "0x0404040404040404040404040404040404040404",
		"class": "market"
	}],
	"deadline": "2106-01-01T00:00:00Z",
	"effectiveGasPrice": "15000000000"
}`

// startServer assembles a full Server with a real engine and returns an
// httptest server that exercises the complete middleware chain.
func startServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	strat, err := solver.DefaultRegistry().Get(solver.StrategyFirstEligible)
	require.NoError(t, err)
	engine := solver.NewEngine(strat, logger)

	bus := telemetry.NewBus(16, logger)
	t.Cleanup(bus.Close)
	stats := telemetry.NewStats()

	srv := NewServer(cfg, Handlers{
		Solve:  handler.NewSolveHandler(engine, bus, stats, 0, logger),
		Notify: handler.NewNotifyHandler(nil, bus, stats, logger),
		Status: handler.NewStatusHandler(stats, solver.StrategyFirstEligible),
	}, nil, logger)

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestServerRoutes(t *testing.T) {
	ts := startServer(t, Config{APIKey: "secret-key"})

	t.Run("health is open", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics is open", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("solve requires the api key", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/v1/solve", "application/json", strings.NewReader(serveAuctionJSON))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("solve round trip with bearer token", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/solve", strings.NewReader(serveAuctionJSON))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer secret-key")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"), "logging middleware assigns a request id")
	})

	t.Run("unknown route", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/settle", nil)
		require.NoError(t, err)
		req.Header.Set("X-API-Key", "secret-key")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServerCORSPreflightSkipsAuth(t *testing.T) {
	ts := startServer(t, Config{APIKey: "secret-key"})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/solve", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://dashboard.local")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://dashboard.local", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServerRateLimitWired(t *testing.T) {
	ts := startServer(t, Config{RateLimitRPS: 1, RateLimitBurst: 1})

	var limited int
	for i := 0; i < 5; i++ {
		resp, err := http.Get(ts.URL + "/api/health")
		require.NoError(t, err)
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Positive(t, limited, "burst of requests should trip the limiter")
}
