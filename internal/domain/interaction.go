package domain

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Call is one raw EVM call executed around settlement, used for order
// hooks and solution pre/post interactions.
type Call struct {
	Target   common.Address `json:"target"`
	Value    Amount         `json:"value"`
	CallData hexutil.Bytes  `json:"callData,omitempty"`
}

type wireCall struct {
	Target   *string `json:"target"`
	Value    *string `json:"value"`
	CallData *string `json:"callData"`
}

func parseCall(data []byte) (Call, error) {
	var w wireCall
	if err := json.Unmarshal(data, &w); err != nil {
		return Call{}, err
	}
	var c Call
	var err error
	if c.Target, err = reqAddr(w.Target); err != nil {
		return Call{}, fmt.Errorf("target: %w", err)
	}
	if c.Value, err = optAmount(w.Value, Amount{}); err != nil {
		return Call{}, fmt.Errorf("value: %w", err)
	}
	if c.CallData, err = optBytes(w.CallData); err != nil {
		return Call{}, fmt.Errorf("callData: %w", err)
	}
	return c, nil
}

// UnmarshalJSON decodes a call, reporting the offending field on failure.
func (c *Call) UnmarshalJSON(data []byte) error {
	v, err := parseCall(data)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// parseCalls decodes a call list, prefixing errors with the list index.
// Empty lists normalize to nil.
func parseCalls(field string, raws []json.RawMessage) ([]Call, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	calls := make([]Call, 0, len(raws))
	for i, raw := range raws {
		c, err := parseCall(raw)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		calls = append(calls, c)
	}
	return calls, nil
}

// Asset pairs a token with an amount.
type Asset struct {
	Token  common.Address `json:"token"`
	Amount Amount         `json:"amount"`
}

type wireAsset struct {
	Token  *string `json:"token"`
	Amount *string `json:"amount"`
}

func parseAsset(w wireAsset) (Asset, error) {
	var a Asset
	var err error
	if a.Token, err = reqAddr(w.Token); err != nil {
		return Asset{}, fmt.Errorf("token: %w", err)
	}
	if a.Amount, err = reqAmount(w.Amount); err != nil {
		return Asset{}, fmt.Errorf("amount: %w", err)
	}
	return a, nil
}

// Allowance approves a spender before a custom interaction runs.
type Allowance struct {
	Token   common.Address `json:"token"`
	Spender common.Address `json:"spender"`
	Amount  Amount         `json:"amount"`
}

type wireAllowance struct {
	Token   *string `json:"token"`
	Spender *string `json:"spender"`
	Amount  *string `json:"amount"`
}

func parseAllowance(w wireAllowance) (Allowance, error) {
	var a Allowance
	var err error
	if a.Token, err = reqAddr(w.Token); err != nil {
		return Allowance{}, fmt.Errorf("token: %w", err)
	}
	if a.Spender, err = reqAddr(w.Spender); err != nil {
		return Allowance{}, fmt.Errorf("spender: %w", err)
	}
	if a.Amount, err = reqAmount(w.Amount); err != nil {
		return Allowance{}, fmt.Errorf("amount: %w", err)
	}
	return a, nil
}

// InteractionKind discriminates settlement interactions.
type InteractionKind string

const (
	InteractionLiquidity InteractionKind = "liquidity"
	InteractionCustom    InteractionKind = "custom"
)

// Interaction is one step of a settlement plan. The set of kinds is
// closed; parseInteraction rejects anything it does not recognize.
type Interaction interface {
	Kind() InteractionKind
	isInteraction()
}

// LiquidityInteraction trades against a liquidity source the auction
// listed, referenced by its id.
type LiquidityInteraction struct {
	Internalize  bool           `json:"internalize"`
	ID           string         `json:"id"`
	InputToken   common.Address `json:"inputToken"`
	OutputToken  common.Address `json:"outputToken"`
	InputAmount  Amount         `json:"inputAmount"`
	OutputAmount Amount         `json:"outputAmount"`
}

func (LiquidityInteraction) Kind() InteractionKind { return InteractionLiquidity }
func (LiquidityInteraction) isInteraction()        {}

func (n LiquidityInteraction) MarshalJSON() ([]byte, error) {
	type alias LiquidityInteraction
	return json.Marshal(struct {
		Kind InteractionKind `json:"kind"`
		alias
	}{InteractionLiquidity, alias(n)})
}

// CustomInteraction calls an arbitrary target with prepared calldata.
type CustomInteraction struct {
	Internalize bool           `json:"internalize"`
	Target      common.Address `json:"target"`
	Value       Amount         `json:"value"`
	CallData    hexutil.Bytes  `json:"callData,omitempty"`
	Allowances  []Allowance    `json:"allowances,omitempty"`
	Inputs      []Asset        `json:"inputs,omitempty"`
	Outputs     []Asset        `json:"outputs,omitempty"`
}

func (CustomInteraction) Kind() InteractionKind { return InteractionCustom }
func (CustomInteraction) isInteraction()        {}

func (n CustomInteraction) MarshalJSON() ([]byte, error) {
	type alias CustomInteraction
	return json.Marshal(struct {
		Kind InteractionKind `json:"kind"`
		alias
	}{InteractionCustom, alias(n)})
}

type wireLiquidityInteraction struct {
	Internalize  *bool   `json:"internalize"`
	ID           *string `json:"id"`
	InputToken   *string `json:"inputToken"`
	OutputToken  *string `json:"outputToken"`
	InputAmount  *string `json:"inputAmount"`
	OutputAmount *string `json:"outputAmount"`
}

type wireCustomInteraction struct {
	Internalize *bool           `json:"internalize"`
	Target      *string         `json:"target"`
	Value       *string         `json:"value"`
	CallData    *string         `json:"callData"`
	Allowances  []wireAllowance `json:"allowances"`
	Inputs      []wireAsset     `json:"inputs"`
	Outputs     []wireAsset     `json:"outputs"`
}

// parseInteraction probes the kind tag and dispatches to the matching
// variant decoder.
func parseInteraction(data []byte) (Interaction, error) {
	var probe struct {
		Kind *string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Kind == nil {
		return nil, fmt.Errorf("kind: %w", errRequired)
	}
	switch InteractionKind(*probe.Kind) {
	case InteractionLiquidity:
		return parseLiquidityInteraction(data)
	case InteractionCustom:
		return parseCustomInteraction(data)
	}
	return nil, fmt.Errorf("unknown interaction kind %q", *probe.Kind)
}

func parseLiquidityInteraction(data []byte) (Interaction, error) {
	var w wireLiquidityInteraction
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	var n LiquidityInteraction
	var err error
	if w.Internalize != nil {
		n.Internalize = *w.Internalize
	}
	if n.ID, err = reqString(w.ID); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if n.InputToken, err = reqAddr(w.InputToken); err != nil {
		return nil, fmt.Errorf("inputToken: %w", err)
	}
	if n.OutputToken, err = reqAddr(w.OutputToken); err != nil {
		return nil, fmt.Errorf("outputToken: %w", err)
	}
	if n.InputAmount, err = reqAmount(w.InputAmount); err != nil {
		return nil, fmt.Errorf("inputAmount: %w", err)
	}
	if n.OutputAmount, err = reqAmount(w.OutputAmount); err != nil {
		return nil, fmt.Errorf("outputAmount: %w", err)
	}
	return n, nil
}

func parseCustomInteraction(data []byte) (Interaction, error) {
	var w wireCustomInteraction
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	var n CustomInteraction
	var err error
	if w.Internalize != nil {
		n.Internalize = *w.Internalize
	}
	if n.Target, err = reqAddr(w.Target); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if n.Value, err = optAmount(w.Value, Amount{}); err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	if n.CallData, err = optBytes(w.CallData); err != nil {
		return nil, fmt.Errorf("callData: %w", err)
	}
	for i, wa := range w.Allowances {
		a, err := parseAllowance(wa)
		if err != nil {
			return nil, fmt.Errorf("allowances[%d]: %w", i, err)
		}
		n.Allowances = append(n.Allowances, a)
	}
	for i, wa := range w.Inputs {
		a, err := parseAsset(wa)
		if err != nil {
			return nil, fmt.Errorf("inputs[%d]: %w", i, err)
		}
		n.Inputs = append(n.Inputs, a)
	}
	for i, wa := range w.Outputs {
		a, err := parseAsset(wa)
		if err != nil {
			return nil, fmt.Errorf("outputs[%d]: %w", i, err)
		}
		n.Outputs = append(n.Outputs, a)
	}
	return n, nil
}
