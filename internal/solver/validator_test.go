package solver

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufferlabs/buffer-solver/internal/domain"
)

// TestValidateAuctionClean checks a well formed auction raises nothing.
func TestValidateAuctionClean(t *testing.T) {
	a := fixtureAuction(
		fixtureOrder(t, "0x01", "10", "9", fixtureNow.Add(time.Hour).Unix()),
		fixtureOrder(t, "0x02", "20", "19", fixtureNow.Add(time.Hour).Unix()),
	)
	violations, advisories := ValidateAuction(a)
	assert.Empty(t, violations)
	assert.Empty(t, advisories)
}

func TestValidateAuctionViolations(t *testing.T) {
	validTo := fixtureNow.Add(time.Hour).Unix()

	t.Run("duplicate uid", func(t *testing.T) {
		dup := fixtureOrder(t, "0x01", "10", "9", validTo)
		violations, _ := ValidateAuction(fixtureAuction(dup, dup))
		require.Len(t, violations, 1)
		assert.Equal(t, domain.ViolationDuplicateUID, violations[0].Code)
		assert.Equal(t, domain.OrderUID("0x01"), violations[0].Order)
	})

	t.Run("self trade", func(t *testing.T) {
		o := fixtureOrder(t, "0x01", "10", "9", validTo)
		o.BuyToken = o.SellToken
		violations, _ := ValidateAuction(fixtureAuction(o))
		require.Len(t, violations, 1)
		assert.Equal(t, domain.ViolationSelfTrade, violations[0].Code)
	})

	t.Run("zero sell amount", func(t *testing.T) {
		o := fixtureOrder(t, "0x01", "0", "9", validTo)
		violations, _ := ValidateAuction(fixtureAuction(o))
		require.Len(t, violations, 1)
		assert.Equal(t, domain.ViolationZeroAmount, violations[0].Code)
	})

	t.Run("zero buy amount", func(t *testing.T) {
		o := fixtureOrder(t, "0x01", "10", "0", validTo)
		violations, _ := ValidateAuction(fixtureAuction(o))
		require.Len(t, violations, 1)
		assert.Equal(t, domain.ViolationZeroAmount, violations[0].Code)
	})

	t.Run("findings accumulate across orders", func(t *testing.T) {
		dup := fixtureOrder(t, "0x01", "10", "9", validTo)
		zero := fixtureOrder(t, "0x02", "0", "9", validTo)
		violations, _ := ValidateAuction(fixtureAuction(dup, dup, zero))
		require.Len(t, violations, 2)
		assert.Equal(t, domain.ViolationDuplicateUID, violations[0].Code)
		assert.Equal(t, domain.ViolationZeroAmount, violations[1].Code)
	})
}

func TestValidateAuctionAdvisories(t *testing.T) {
	t.Run("order expiring before the deadline is stale", func(t *testing.T) {
		a := fixtureAuction(fixtureOrder(t, "0x01", "10", "9", fixtureNow.Unix()+10))
		require.Greater(t, a.Deadline.Unix(), fixtureNow.Unix()+10)

		violations, advisories := ValidateAuction(a)
		assert.Empty(t, violations)
		require.Len(t, advisories, 1)
		assert.Equal(t, domain.AdvisoryStaleOrder, advisories[0].Code)
		assert.Equal(t, domain.OrderUID("0x01"), advisories[0].Order)
	})

	t.Run("order outliving the deadline is fine", func(t *testing.T) {
		deadline := fixtureNow.Add(2 * time.Minute)
		a := fixtureAuction(fixtureOrder(t, "0x01", "10", "9", deadline.Unix()))
		_, advisories := ValidateAuction(a)
		assert.Empty(t, advisories)
	})

	t.Run("tokens missing from the reference list", func(t *testing.T) {
		a := fixtureAuction(fixtureOrder(t, "0x01", "10", "9", fixtureNow.Add(time.Hour).Unix()))
		a.Tokens = map[common.Address]domain.TokenInfo{
			testAddr(t, testSellToken): {AvailableBalance: domain.MustAmount("0")},
		}
		_, advisories := ValidateAuction(a)
		require.Len(t, advisories, 1)
		assert.Equal(t, domain.AdvisoryUnknownToken, advisories[0].Code)
		assert.Contains(t, advisories[0].Message, testBuyToken)
	})

	t.Run("no reference list means no token advisories", func(t *testing.T) {
		a := fixtureAuction(fixtureOrder(t, "0x01", "10", "9", fixtureNow.Add(time.Hour).Unix()))
		a.Tokens = nil
		_, advisories := ValidateAuction(a)
		assert.Empty(t, advisories)
	})
}
