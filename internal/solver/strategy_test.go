package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufferlabs/buffer-solver/internal/domain"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, []string{StrategyFirstEligible, StrategyLast}, reg.List())

	strat, err := reg.Get(StrategyFirstEligible)
	require.NoError(t, err)
	assert.Equal(t, StrategyFirstEligible, strat.Name())

	_, err = reg.Get("surplus-maximizing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistryReplace(t *testing.T) {
	reg := NewRegistry()
	reg.Register(StrategyFirstEligible, firstEligible{})
	reg.Register(StrategyFirstEligible, lastEligible{})

	strat, err := reg.Get(StrategyFirstEligible)
	require.NoError(t, err)
	assert.Equal(t, StrategyLast, strat.Name())
	assert.Equal(t, []string{StrategyFirstEligible}, reg.List())
}

func TestStrategySelection(t *testing.T) {
	orders := []domain.Order{
		fixtureOrder(t, "0x01", "10", "9", fixtureNow.Unix()+60),
		fixtureOrder(t, "0x02", "20", "19", fixtureNow.Unix()+60),
		fixtureOrder(t, "0x03", "30", "29", fixtureNow.Unix()+60),
	}

	t.Run("first eligible", func(t *testing.T) {
		picked, ok := firstEligible{}.Select(orders)
		require.True(t, ok)
		assert.Equal(t, domain.OrderUID("0x01"), picked.UID)
	})

	t.Run("last", func(t *testing.T) {
		picked, ok := lastEligible{}.Select(orders)
		require.True(t, ok)
		assert.Equal(t, domain.OrderUID("0x03"), picked.UID)
	})

	t.Run("nothing to pick", func(t *testing.T) {
		_, ok := firstEligible{}.Select(nil)
		assert.False(t, ok)
		_, ok = lastEligible{}.Select(nil)
		assert.False(t, ok)
	})
}
