package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullAuctionJSON = `{
	"id": 8737849,
	"tokens": {
		"0x0101010101010101010101010101010101010101": {
			"decimals": 18,
			"symbol": "WETH",
			"referencePrice": "1000000000000000000",
			"availableBalance": "1412206645170290748",
			"trusted": true
		},
		"0x0202020202020202020202020202020202020202": {
			"availableBalance": "0",
			"trusted": false
		}
	},
	"orders": [
		{
			"uid": "0x01",
			"sellToken": "0x0101010101010101010101010101010101010101",
			"buyToken": "0x0202020202020202020202020202020202020202",
			"sellAmount": "1000",
			"buyAmount": "900",
			"validTo": 1893456000,
			"kind": "sell",
			"owner": "0x0404040404040404040404040404040404040404",
			"class": "market"
		}
	],
	"liquidity": [
		{
			"kind": "constantProduct",
			"id": "0",
			"address": "0x9999999999999999999999999999999999999999",
			"gasEstimate": "110000",
			"tokens": {
				"0x0101010101010101010101010101010101010101": {"balance": "1000000"},
				"0x0202020202020202020202020202020202020202": {"balance": "2000000"}
			},
			"fee": "0.003",
			"router": "0x7a25d05ea7d868907da8ef3fdedcafdff7cbbbbb"
		}
	],
	"effectiveGasPrice": "15000000000",
	"deadline": "2106-01-01T00:00:00.000Z",
	"surplusCapturingJitOrderOwners": ["0x0606060606060606060606060606060606060606"]
}`

// TestAuctionParse decodes a complete solve request.
func TestAuctionParse(t *testing.T) {
	var a Auction
	require.NoError(t, json.Unmarshal([]byte(fullAuctionJSON), &a))

	require.NotNil(t, a.ID)
	assert.Equal(t, int64(8737849), *a.ID)
	assert.Equal(t, "8737849", a.LogID())

	require.Len(t, a.Tokens, 2)
	weth, err := ParseAddress("0x0101010101010101010101010101010101010101")
	require.NoError(t, err)
	info := a.Tokens[weth]
	require.NotNil(t, info.Decimals)
	assert.Equal(t, uint8(18), *info.Decimals)
	assert.Equal(t, "WETH", info.Symbol)
	assert.True(t, info.Trusted)

	require.Len(t, a.Orders, 1)
	assert.Equal(t, OrderUID("0x01"), a.Orders[0].UID)

	require.Len(t, a.Liquidity, 1)
	assert.Equal(t, LiquidityConstantProduct, a.Liquidity[0].Kind())

	assert.Equal(t, "15000000000", a.EffectiveGasPrice.String())
	assert.Equal(t, 2106, a.Deadline.Year())
	require.Len(t, a.SurplusCapturingJitOrderOwners, 1)
}

// TestAuctionQuoteRequest checks a null id parses as a quote probe.
func TestAuctionQuoteRequest(t *testing.T) {
	raw := `{
		"id": null,
		"orders": [],
		"effectiveGasPrice": "1",
		"deadline": "2106-01-01T00:00:00Z"
	}`
	var a Auction
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Nil(t, a.ID)
	assert.Equal(t, "quote", a.LogID())
	assert.Empty(t, a.Orders)
}

// TestAuctionZeroOrders checks an orderless auction is valid input.
func TestAuctionZeroOrders(t *testing.T) {
	raw := `{
		"id": 1,
		"effectiveGasPrice": "1",
		"deadline": "2106-01-01T00:00:00Z"
	}`
	var a Auction
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Empty(t, a.Orders)
	assert.Empty(t, a.Liquidity)
	assert.Empty(t, a.Tokens)
}

// TestAuctionParseErrors checks error paths carry the element index and
// field.
func TestAuctionParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name: "bad token key",
			raw: `{"tokens": {"weth": {"availableBalance": "0"}},
				"effectiveGasPrice": "1", "deadline": "2106-01-01T00:00:00Z"}`,
			wantErr: `tokens["weth"]`,
		},
		{
			name: "second order malformed",
			raw: `{"orders": [
					{"uid": "0x01", "sellToken": "0x0101010101010101010101010101010101010101",
					 "buyToken": "0x0202020202020202020202020202020202020202",
					 "sellAmount": "1", "buyAmount": "1", "validTo": 1893456000,
					 "kind": "sell", "owner": "0x0404040404040404040404040404040404040404", "class": "market"},
					{"uid": "0x02", "sellToken": "0x0101010101010101010101010101010101010101",
					 "buyToken": "0x0202020202020202020202020202020202020202",
					 "sellAmount": "eleven", "buyAmount": "1", "validTo": 1893456000,
					 "kind": "sell", "owner": "0x0404040404040404040404040404040404040404", "class": "market"}
				],
				"effectiveGasPrice": "1", "deadline": "2106-01-01T00:00:00Z"}`,
			wantErr: "orders[1]: sellAmount",
		},
		{
			name: "unknown liquidity kind",
			raw: `{"liquidity": [{"kind": "mystery", "id": "0",
					"address": "0x9999999999999999999999999999999999999999", "gasEstimate": "1"}],
				"effectiveGasPrice": "1", "deadline": "2106-01-01T00:00:00Z"}`,
			wantErr: `liquidity[0]: unknown liquidity kind "mystery"`,
		},
		{
			name:    "missing deadline",
			raw:     `{"effectiveGasPrice": "1"}`,
			wantErr: "deadline",
		},
		{
			name:    "malformed deadline",
			raw:     `{"effectiveGasPrice": "1", "deadline": "tomorrow"}`,
			wantErr: "deadline",
		},
		{
			name:    "missing gas price",
			raw:     `{"deadline": "2106-01-01T00:00:00Z"}`,
			wantErr: "effectiveGasPrice",
		},
		{
			name: "bad jit owner",
			raw: `{"surplusCapturingJitOrderOwners": ["0x99"],
				"effectiveGasPrice": "1", "deadline": "2106-01-01T00:00:00Z"}`,
			wantErr: "surplusCapturingJitOrderOwners[0]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Auction
			err := json.Unmarshal([]byte(tt.raw), &a)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestAuctionRoundTrip checks parse, reserialize, reparse is identity on
// every field of a complete auction.
func TestAuctionRoundTrip(t *testing.T) {
	var first Auction
	require.NoError(t, json.Unmarshal([]byte(fullAuctionJSON), &first))

	out, err := json.Marshal(first)
	require.NoError(t, err)

	var second Auction
	require.NoError(t, json.Unmarshal(out, &second))
	assert.Equal(t, first, second)
	assert.True(t, first.Deadline.Equal(second.Deadline))
	assert.Equal(t, time.Date(2106, 1, 1, 0, 0, 0, 0, time.UTC), second.Deadline)
}
