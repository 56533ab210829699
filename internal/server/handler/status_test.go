package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufferlabs/buffer-solver/internal/telemetry"
)

func TestStatusEndpoint(t *testing.T) {
	stats := telemetry.NewStats()
	stats.AuctionReceived()
	stats.SolutionBuilt()
	h := NewStatusHandler(stats, "first-eligible")

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "solverd", resp.Service)
	assert.Equal(t, "first-eligible", resp.Strategy)
	assert.False(t, resp.StartedAt.IsZero())
	assert.Equal(t, int64(1), resp.Stats.AuctionsReceived)
	assert.Equal(t, int64(1), resp.Stats.SolutionsBuilt)
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, resp["timestamp"])
}
