package domain

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// TradeKind discriminates how a solution executes an order. The solver
// only ever settles orders the auction supplied, so fulfillment is the
// sole kind.
type TradeKind string

const (
	TradeFulfillment TradeKind = "fulfillment"
)

// Trade reports how far one auction order executed in a solution.
type Trade struct {
	Kind           TradeKind `json:"kind"`
	Order          OrderUID  `json:"order"`
	Fee            Amount    `json:"fee"`
	ExecutedAmount Amount    `json:"executedAmount"`
}

type wireTrade struct {
	Kind           *string `json:"kind"`
	Order          *string `json:"order"`
	Fee            *string `json:"fee"`
	ExecutedAmount *string `json:"executedAmount"`
}

func parseTrade(data []byte) (Trade, error) {
	var w wireTrade
	if err := json.Unmarshal(data, &w); err != nil {
		return Trade{}, err
	}
	var t Trade
	var err error
	if w.Kind == nil {
		return Trade{}, fmt.Errorf("kind: %w", errRequired)
	}
	if TradeKind(*w.Kind) != TradeFulfillment {
		return Trade{}, fmt.Errorf("kind: unknown trade kind %q", *w.Kind)
	}
	t.Kind = TradeFulfillment
	if w.Order == nil {
		return Trade{}, fmt.Errorf("order: %w", errRequired)
	}
	if t.Order, err = ParseOrderUID(*w.Order); err != nil {
		return Trade{}, fmt.Errorf("order: %w", err)
	}
	if t.Fee, err = optAmount(w.Fee, Amount{}); err != nil {
		return Trade{}, fmt.Errorf("fee: %w", err)
	}
	if t.ExecutedAmount, err = reqAmount(w.ExecutedAmount); err != nil {
		return Trade{}, fmt.Errorf("executedAmount: %w", err)
	}
	return t, nil
}

// UnmarshalJSON decodes a trade, reporting the offending field on
// failure.
func (t *Trade) UnmarshalJSON(data []byte) error {
	v, err := parseTrade(data)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Solution is one candidate settlement for an auction: a price vector, the
// trades it clears and the interactions that source the liquidity.
type Solution struct {
	ID               uint64                    `json:"id"`
	Prices           map[common.Address]Amount `json:"prices"`
	Trades           []Trade                   `json:"trades"`
	PreInteractions  []Call                    `json:"preInteractions,omitempty"`
	Interactions     []Interaction             `json:"interactions"`
	PostInteractions []Call                    `json:"postInteractions,omitempty"`
	Gas              *uint64                   `json:"gas,omitempty"`
	Flashloans       map[OrderUID]Flashloan    `json:"flashloans,omitempty"`
}

type wireSolution struct {
	ID               *uint64                   `json:"id"`
	Prices           map[string]*string        `json:"prices"`
	Trades           []json.RawMessage         `json:"trades"`
	PreInteractions  []json.RawMessage         `json:"preInteractions"`
	Interactions     []json.RawMessage         `json:"interactions"`
	PostInteractions []json.RawMessage         `json:"postInteractions"`
	Gas              *uint64                   `json:"gas"`
	Flashloans       map[string]*wireFlashloan `json:"flashloans"`
}

func parseSolution(data []byte) (Solution, error) {
	var w wireSolution
	if err := json.Unmarshal(data, &w); err != nil {
		return Solution{}, err
	}
	var s Solution
	if w.ID == nil {
		return Solution{}, fmt.Errorf("id: %w", errRequired)
	}
	s.ID = *w.ID
	s.Prices = make(map[common.Address]Amount, len(w.Prices))
	for key, v := range w.Prices {
		addr, err := ParseAddress(key)
		if err != nil {
			return Solution{}, fmt.Errorf("prices[%q]: %w", key, err)
		}
		price, err := reqAmount(v)
		if err != nil {
			return Solution{}, fmt.Errorf("prices[%q]: %w", key, err)
		}
		s.Prices[addr] = price
	}
	s.Trades = make([]Trade, 0, len(w.Trades))
	for i, raw := range w.Trades {
		t, err := parseTrade(raw)
		if err != nil {
			return Solution{}, fmt.Errorf("trades[%d]: %w", i, err)
		}
		s.Trades = append(s.Trades, t)
	}
	var err error
	if s.PreInteractions, err = parseCalls("preInteractions", w.PreInteractions); err != nil {
		return Solution{}, err
	}
	s.Interactions = make([]Interaction, 0, len(w.Interactions))
	for i, raw := range w.Interactions {
		n, err := parseInteraction(raw)
		if err != nil {
			return Solution{}, fmt.Errorf("interactions[%d]: %w", i, err)
		}
		s.Interactions = append(s.Interactions, n)
	}
	if s.PostInteractions, err = parseCalls("postInteractions", w.PostInteractions); err != nil {
		return Solution{}, err
	}
	s.Gas = w.Gas
	if len(w.Flashloans) > 0 {
		s.Flashloans = make(map[OrderUID]Flashloan, len(w.Flashloans))
		for key, wf := range w.Flashloans {
			uid, err := ParseOrderUID(key)
			if err != nil {
				return Solution{}, fmt.Errorf("flashloans[%q]: %w", key, err)
			}
			if wf == nil {
				return Solution{}, fmt.Errorf("flashloans[%q]: %w", key, errRequired)
			}
			f, err := parseFlashloan(*wf)
			if err != nil {
				return Solution{}, fmt.Errorf("flashloans[%q]: %w", key, err)
			}
			s.Flashloans[uid] = f
		}
	}
	return s, nil
}

// UnmarshalJSON decodes a solution, reporting the offending field on
// failure. Prices, trades and interactions normalize to empty rather
// than nil so reserialization emits {} and [].
func (s *Solution) UnmarshalJSON(data []byte) error {
	v, err := parseSolution(data)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SolutionResponse is the reply to a solve request. Solutions is non-nil
// by construction so finding nothing serializes as [] rather than null;
// an empty list is a valid outcome, not an error.
type SolutionResponse struct {
	Solutions []Solution `json:"solutions"`
}

// EmptySolutionResponse is the canonical reply when no order can be
// settled.
func EmptySolutionResponse() SolutionResponse {
	return SolutionResponse{Solutions: []Solution{}}
}

// SingleSolution wraps one settlement in a response.
func SingleSolution(s Solution) SolutionResponse {
	return SolutionResponse{Solutions: []Solution{s}}
}

// UnmarshalJSON decodes a solver reply, keeping Solutions non-nil.
func (r *SolutionResponse) UnmarshalJSON(data []byte) error {
	var w struct {
		Solutions []json.RawMessage `json:"solutions"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := make([]Solution, 0, len(w.Solutions))
	for i, raw := range w.Solutions {
		s, err := parseSolution(raw)
		if err != nil {
			return fmt.Errorf("solutions[%d]: %w", i, err)
		}
		out = append(out, s)
	}
	r.Solutions = out
	return nil
}
