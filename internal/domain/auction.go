package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TokenInfo is the driver's reference data for one token. Tokens outside
// this map are untrusted but still routable.
type TokenInfo struct {
	Decimals         *uint8  `json:"decimals,omitempty"`
	Symbol           string  `json:"symbol,omitempty"`
	ReferencePrice   *Amount `json:"referencePrice,omitempty"`
	AvailableBalance Amount  `json:"availableBalance"`
	Trusted          bool    `json:"trusted"`
}

// Auction is one solve request: the orders to settle, the liquidity to
// settle them against and the token reference data. It is plain data;
// nothing mutates it after parsing and solving never stores it.
type Auction struct {
	ID                             *int64                       `json:"id,omitempty"`
	Tokens                         map[common.Address]TokenInfo `json:"tokens,omitempty"`
	Orders                         []Order                      `json:"orders,omitempty"`
	Liquidity                      []Liquidity                  `json:"liquidity,omitempty"`
	EffectiveGasPrice              Amount                       `json:"effectiveGasPrice"`
	Deadline                       time.Time                    `json:"deadline"`
	SurplusCapturingJitOrderOwners []common.Address             `json:"surplusCapturingJitOrderOwners,omitempty"`
}

// LogID renders the auction id for log fields. Quote requests carry no
// id.
func (a *Auction) LogID() string {
	if a.ID == nil {
		return "quote"
	}
	return strconv.FormatInt(*a.ID, 10)
}

type wireTokenInfo struct {
	Decimals         *json.Number `json:"decimals"`
	Symbol           *string      `json:"symbol"`
	ReferencePrice   *string      `json:"referencePrice"`
	AvailableBalance *string      `json:"availableBalance"`
	Trusted          *bool        `json:"trusted"`
}

type wireAuction struct {
	ID                             *int64                   `json:"id"`
	Tokens                         map[string]wireTokenInfo `json:"tokens"`
	Orders                         []json.RawMessage        `json:"orders"`
	Liquidity                      []json.RawMessage        `json:"liquidity"`
	EffectiveGasPrice              *string                  `json:"effectiveGasPrice"`
	Deadline                       *string                  `json:"deadline"`
	SurplusCapturingJitOrderOwners []string                 `json:"surplusCapturingJitOrderOwners"`
}

func parseAuction(data []byte) (Auction, error) {
	var w wireAuction
	if err := json.Unmarshal(data, &w); err != nil {
		return Auction{}, err
	}

	var a Auction
	a.ID = w.ID
	if len(w.Tokens) > 0 {
		a.Tokens = make(map[common.Address]TokenInfo, len(w.Tokens))
		for key, wt := range w.Tokens {
			addr, err := ParseAddress(key)
			if err != nil {
				return Auction{}, fmt.Errorf("tokens[%q]: %w", key, err)
			}
			info, err := parseTokenInfo(wt)
			if err != nil {
				return Auction{}, fmt.Errorf("tokens[%q]: %w", key, err)
			}
			a.Tokens[addr] = info
		}
	}
	for i, raw := range w.Orders {
		o, err := parseOrder(raw)
		if err != nil {
			return Auction{}, fmt.Errorf("orders[%d]: %w", i, err)
		}
		a.Orders = append(a.Orders, o)
	}
	for i, raw := range w.Liquidity {
		l, err := parseLiquidity(raw)
		if err != nil {
			return Auction{}, fmt.Errorf("liquidity[%d]: %w", i, err)
		}
		a.Liquidity = append(a.Liquidity, l)
	}
	var err error
	if a.EffectiveGasPrice, err = reqAmount(w.EffectiveGasPrice); err != nil {
		return Auction{}, fmt.Errorf("effectiveGasPrice: %w", err)
	}
	if w.Deadline == nil {
		return Auction{}, fmt.Errorf("deadline: %w", errRequired)
	}
	if a.Deadline, err = time.Parse(time.RFC3339, *w.Deadline); err != nil {
		return Auction{}, fmt.Errorf("deadline: invalid RFC 3339 timestamp %q", *w.Deadline)
	}
	for i, s := range w.SurplusCapturingJitOrderOwners {
		addr, err := ParseAddress(s)
		if err != nil {
			return Auction{}, fmt.Errorf("surplusCapturingJitOrderOwners[%d]: %w", i, err)
		}
		a.SurplusCapturingJitOrderOwners = append(a.SurplusCapturingJitOrderOwners, addr)
	}
	return a, nil
}

func parseTokenInfo(w wireTokenInfo) (TokenInfo, error) {
	var t TokenInfo
	var err error
	if w.Decimals != nil {
		n, err := strconv.ParseUint(w.Decimals.String(), 10, 8)
		if err != nil {
			return TokenInfo{}, fmt.Errorf("decimals: out of u8 range %q", w.Decimals.String())
		}
		d := uint8(n)
		t.Decimals = &d
	}
	if w.Symbol != nil {
		t.Symbol = *w.Symbol
	}
	if t.ReferencePrice, err = optAmountPtr(w.ReferencePrice); err != nil {
		return TokenInfo{}, fmt.Errorf("referencePrice: %w", err)
	}
	if t.AvailableBalance, err = optAmount(w.AvailableBalance, Amount{}); err != nil {
		return TokenInfo{}, fmt.Errorf("availableBalance: %w", err)
	}
	if w.Trusted != nil {
		t.Trusted = *w.Trusted
	}
	return t, nil
}

// UnmarshalJSON decodes a solve request, reporting the offending field on
// failure. Absent collections stay nil; an auction with zero orders is
// valid.
func (a *Auction) UnmarshalJSON(data []byte) error {
	v, err := parseAuction(data)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
