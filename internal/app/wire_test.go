package app

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufferlabs/buffer-solver/internal/config"
)

func TestWire(t *testing.T) {
	cfg := config.Defaults()
	logger := slog.New(slog.DiscardHandler)

	deps, cleanup, err := Wire(&cfg, logger)
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, deps.Engine)
	assert.NotNil(t, deps.Bus)
	assert.NotNil(t, deps.Stats)
	assert.NotNil(t, deps.Notifier)
}

func TestWireUnknownSelection(t *testing.T) {
	cfg := config.Defaults()
	cfg.Solver.OrderSelection = "surplus-maximizing"

	_, _, err := Wire(&cfg, slog.New(slog.DiscardHandler))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order selection")
}
