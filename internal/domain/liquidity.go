package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// LiquidityKind discriminates the on-chain venues the driver indexes.
type LiquidityKind string

const (
	LiquidityConstantProduct LiquidityKind = "constantProduct"
	LiquidityWeightedProduct LiquidityKind = "weightedProduct"
	LiquidityStable          LiquidityKind = "stable"
	LiquidityConcentrated    LiquidityKind = "concentratedLiquidity"
	LiquidityLimitOrder      LiquidityKind = "limitOrder"
)

// Liquidity is one venue a solution may route through. The set of kinds
// is closed; parseLiquidity rejects anything it does not recognize so an
// unindexed venue can never slip through as a half-parsed pool.
type Liquidity interface {
	Kind() LiquidityKind
	Meta() LiquidityMeta
	isLiquidity()
}

// LiquidityMeta carries the fields every liquidity kind shares.
type LiquidityMeta struct {
	ID          string         `json:"id"`
	Address     common.Address `json:"address"`
	GasEstimate Amount         `json:"gasEstimate"`
}

// Meta satisfies Liquidity for every variant that embeds the shared
// fields.
func (m LiquidityMeta) Meta() LiquidityMeta { return m }

func (LiquidityMeta) isLiquidity() {}

// ConstantProductPool is a Uniswap-v2-style pair with exactly two
// reserves.
type ConstantProductPool struct {
	LiquidityMeta
	Tokens map[common.Address]ConstantProductReserve `json:"tokens"`
	Fee    Decimal                                   `json:"fee"`
	Router common.Address                            `json:"router"`
}

// ConstantProductReserve is one side's balance in a constant product
// pool.
type ConstantProductReserve struct {
	Balance Amount `json:"balance"`
}

func (ConstantProductPool) Kind() LiquidityKind { return LiquidityConstantProduct }

func (p ConstantProductPool) MarshalJSON() ([]byte, error) {
	type alias ConstantProductPool
	return json.Marshal(struct {
		Kind LiquidityKind `json:"kind"`
		alias
	}{LiquidityConstantProduct, alias(p)})
}

// WeightedPoolVersion distinguishes Balancer weighted math revisions.
type WeightedPoolVersion string

const (
	WeightedPoolV0     WeightedPoolVersion = "v0"
	WeightedPoolV3Plus WeightedPoolVersion = "v3Plus"
)

// WeightedProductPool is a Balancer-style pool with per-token weights.
type WeightedProductPool struct {
	LiquidityMeta
	Tokens         map[common.Address]WeightedReserve `json:"tokens"`
	Fee            Decimal                            `json:"fee"`
	Version        WeightedPoolVersion                `json:"version"`
	BalancerPoolID hexutil.Bytes                      `json:"balancerPoolId,omitempty"`
}

// WeightedReserve is one side's balance and normalized weight.
type WeightedReserve struct {
	Balance       Amount   `json:"balance"`
	Weight        Decimal  `json:"weight"`
	ScalingFactor *Decimal `json:"scalingFactor,omitempty"`
}

func (WeightedProductPool) Kind() LiquidityKind { return LiquidityWeightedProduct }

func (p WeightedProductPool) MarshalJSON() ([]byte, error) {
	type alias WeightedProductPool
	return json.Marshal(struct {
		Kind LiquidityKind `json:"kind"`
		alias
	}{LiquidityWeightedProduct, alias(p)})
}

// StablePool is a Curve-style pool for pegged assets.
type StablePool struct {
	LiquidityMeta
	Tokens                 map[common.Address]StableReserve `json:"tokens"`
	AmplificationParameter Decimal                          `json:"amplificationParameter"`
	Fee                    Decimal                          `json:"fee"`
	BalancerPoolID         hexutil.Bytes                    `json:"balancerPoolId,omitempty"`
}

// StableReserve is one side's balance and decimal scaling factor.
type StableReserve struct {
	Balance       Amount  `json:"balance"`
	ScalingFactor Decimal `json:"scalingFactor"`
}

func (StablePool) Kind() LiquidityKind { return LiquidityStable }

func (p StablePool) MarshalJSON() ([]byte, error) {
	type alias StablePool
	return json.Marshal(struct {
		Kind LiquidityKind `json:"kind"`
		alias
	}{LiquidityStable, alias(p)})
}

// ConcentratedPool is a Uniswap-v3-style pool with tick-indexed
// liquidity.
type ConcentratedPool struct {
	LiquidityMeta
	Tokens       []common.Address `json:"tokens"`
	SqrtPrice    Amount           `json:"sqrtPrice"`
	Liquidity    Amount           `json:"liquidity"`
	Tick         int32            `json:"tick"`
	LiquidityNet map[int32]BigInt `json:"liquidityNet"`
	Fee          Decimal          `json:"fee"`
	Router       common.Address   `json:"router"`
}

func (ConcentratedPool) Kind() LiquidityKind { return LiquidityConcentrated }

func (p ConcentratedPool) MarshalJSON() ([]byte, error) {
	type alias ConcentratedPool
	return json.Marshal(struct {
		Kind LiquidityKind `json:"kind"`
		alias
	}{LiquidityConcentrated, alias(p)})
}

// ForeignLimitOrder is a fillable order resting on an external venue.
type ForeignLimitOrder struct {
	LiquidityMeta
	Hash                hexutil.Bytes  `json:"hash,omitempty"`
	MakerToken          common.Address `json:"makerToken"`
	TakerToken          common.Address `json:"takerToken"`
	MakerAmount         Amount         `json:"makerAmount"`
	TakerAmount         Amount         `json:"takerAmount"`
	TakerTokenFeeAmount Amount         `json:"takerTokenFeeAmount"`
}

func (ForeignLimitOrder) Kind() LiquidityKind { return LiquidityLimitOrder }

func (p ForeignLimitOrder) MarshalJSON() ([]byte, error) {
	type alias ForeignLimitOrder
	return json.Marshal(struct {
		Kind LiquidityKind `json:"kind"`
		alias
	}{LiquidityLimitOrder, alias(p)})
}

type wireReserve struct {
	Balance       *string `json:"balance"`
	Weight        *string `json:"weight"`
	ScalingFactor *string `json:"scalingFactor"`
}

type wireLiquidity struct {
	Kind                   *string            `json:"kind"`
	ID                     *string            `json:"id"`
	Address                *string            `json:"address"`
	GasEstimate            *string            `json:"gasEstimate"`
	Tokens                 json.RawMessage    `json:"tokens"`
	Fee                    *string            `json:"fee"`
	Router                 *string            `json:"router"`
	Version                *string            `json:"version"`
	BalancerPoolID         *string            `json:"balancerPoolId"`
	AmplificationParameter *string            `json:"amplificationParameter"`
	SqrtPrice              *string            `json:"sqrtPrice"`
	Liquidity              *string            `json:"liquidity"`
	Tick                   *json.Number       `json:"tick"`
	LiquidityNet           map[string]*string `json:"liquidityNet"`
	Hash                   *string            `json:"hash"`
	MakerToken             *string            `json:"makerToken"`
	TakerToken             *string            `json:"takerToken"`
	MakerAmount            *string            `json:"makerAmount"`
	TakerAmount            *string            `json:"takerAmount"`
	TakerTokenFeeAmount    *string            `json:"takerTokenFeeAmount"`
}

// parseLiquidity probes the kind tag and dispatches to the matching
// variant decoder. Unknown kinds are a hard parse error.
func parseLiquidity(data []byte) (Liquidity, error) {
	var w wireLiquidity
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.Kind == nil {
		return nil, fmt.Errorf("kind: %w", errRequired)
	}
	meta, err := parseLiquidityMeta(w)
	if err != nil {
		return nil, err
	}
	switch LiquidityKind(*w.Kind) {
	case LiquidityConstantProduct:
		return parseConstantProduct(meta, w)
	case LiquidityWeightedProduct:
		return parseWeightedProduct(meta, w)
	case LiquidityStable:
		return parseStable(meta, w)
	case LiquidityConcentrated:
		return parseConcentrated(meta, w)
	case LiquidityLimitOrder:
		return parseLimitOrder(meta, w)
	}
	return nil, fmt.Errorf("unknown liquidity kind %q", *w.Kind)
}

func parseLiquidityMeta(w wireLiquidity) (LiquidityMeta, error) {
	var m LiquidityMeta
	var err error
	if m.ID, err = reqString(w.ID); err != nil {
		return m, fmt.Errorf("id: %w", err)
	}
	if m.Address, err = reqAddr(w.Address); err != nil {
		return m, fmt.Errorf("address: %w", err)
	}
	if m.GasEstimate, err = reqAmount(w.GasEstimate); err != nil {
		return m, fmt.Errorf("gasEstimate: %w", err)
	}
	return m, nil
}

// parseReserves decodes the address-keyed token map shared by the pool
// kinds, enforcing the minimum entry count.
func parseReserves(raw json.RawMessage, min int) (map[string]wireReserve, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("tokens: %w", errRequired)
	}
	var m map[string]wireReserve
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("tokens: %w", err)
	}
	if len(m) < min {
		return nil, fmt.Errorf("tokens: want at least %d entries, got %d", min, len(m))
	}
	return m, nil
}

func parseConstantProduct(meta LiquidityMeta, w wireLiquidity) (Liquidity, error) {
	reserves, err := parseReserves(w.Tokens, 2)
	if err != nil {
		return nil, err
	}
	if len(reserves) != 2 {
		return nil, fmt.Errorf("tokens: want exactly 2 entries, got %d", len(reserves))
	}
	p := ConstantProductPool{
		LiquidityMeta: meta,
		Tokens:        make(map[common.Address]ConstantProductReserve, len(reserves)),
	}
	for key, wr := range reserves {
		addr, err := ParseAddress(key)
		if err != nil {
			return nil, fmt.Errorf("tokens[%q]: %w", key, err)
		}
		balance, err := reqAmount(wr.Balance)
		if err != nil {
			return nil, fmt.Errorf("tokens[%q]: balance: %w", key, err)
		}
		p.Tokens[addr] = ConstantProductReserve{Balance: balance}
	}
	if p.Fee, err = reqDecimal(w.Fee); err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}
	if p.Router, err = reqAddr(w.Router); err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	return p, nil
}

func parseWeightedProduct(meta LiquidityMeta, w wireLiquidity) (Liquidity, error) {
	reserves, err := parseReserves(w.Tokens, 2)
	if err != nil {
		return nil, err
	}
	p := WeightedProductPool{
		LiquidityMeta: meta,
		Tokens:        make(map[common.Address]WeightedReserve, len(reserves)),
		Version:       WeightedPoolV0,
	}
	for key, wr := range reserves {
		addr, err := ParseAddress(key)
		if err != nil {
			return nil, fmt.Errorf("tokens[%q]: %w", key, err)
		}
		var r WeightedReserve
		if r.Balance, err = reqAmount(wr.Balance); err != nil {
			return nil, fmt.Errorf("tokens[%q]: balance: %w", key, err)
		}
		if r.Weight, err = reqDecimal(wr.Weight); err != nil {
			return nil, fmt.Errorf("tokens[%q]: weight: %w", key, err)
		}
		if r.ScalingFactor, err = optDecimalPtr(wr.ScalingFactor); err != nil {
			return nil, fmt.Errorf("tokens[%q]: scalingFactor: %w", key, err)
		}
		p.Tokens[addr] = r
	}
	if p.Fee, err = reqDecimal(w.Fee); err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}
	if w.Version != nil {
		switch WeightedPoolVersion(*w.Version) {
		case WeightedPoolV0, WeightedPoolV3Plus:
			p.Version = WeightedPoolVersion(*w.Version)
		default:
			return nil, fmt.Errorf("version: unknown weighted pool version %q", *w.Version)
		}
	}
	if p.BalancerPoolID, err = optBytes(w.BalancerPoolID); err != nil {
		return nil, fmt.Errorf("balancerPoolId: %w", err)
	}
	return p, nil
}

func parseStable(meta LiquidityMeta, w wireLiquidity) (Liquidity, error) {
	reserves, err := parseReserves(w.Tokens, 2)
	if err != nil {
		return nil, err
	}
	p := StablePool{
		LiquidityMeta: meta,
		Tokens:        make(map[common.Address]StableReserve, len(reserves)),
	}
	for key, wr := range reserves {
		addr, err := ParseAddress(key)
		if err != nil {
			return nil, fmt.Errorf("tokens[%q]: %w", key, err)
		}
		var r StableReserve
		if r.Balance, err = reqAmount(wr.Balance); err != nil {
			return nil, fmt.Errorf("tokens[%q]: balance: %w", key, err)
		}
		if r.ScalingFactor, err = reqDecimal(wr.ScalingFactor); err != nil {
			return nil, fmt.Errorf("tokens[%q]: scalingFactor: %w", key, err)
		}
		p.Tokens[addr] = r
	}
	if p.AmplificationParameter, err = reqDecimal(w.AmplificationParameter); err != nil {
		return nil, fmt.Errorf("amplificationParameter: %w", err)
	}
	if p.Fee, err = reqDecimal(w.Fee); err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}
	if p.BalancerPoolID, err = optBytes(w.BalancerPoolID); err != nil {
		return nil, fmt.Errorf("balancerPoolId: %w", err)
	}
	return p, nil
}

func parseConcentrated(meta LiquidityMeta, w wireLiquidity) (Liquidity, error) {
	var keys []string
	if len(w.Tokens) > 0 {
		if err := json.Unmarshal(w.Tokens, &keys); err != nil {
			return nil, fmt.Errorf("tokens: %w", err)
		}
	}
	if len(keys) != 2 {
		return nil, fmt.Errorf("tokens: want exactly 2 entries, got %d", len(keys))
	}
	p := ConcentratedPool{
		LiquidityMeta: meta,
		Tokens:        make([]common.Address, 0, len(keys)),
	}
	var err error
	for i, key := range keys {
		addr, err := ParseAddress(key)
		if err != nil {
			return nil, fmt.Errorf("tokens[%d]: %w", i, err)
		}
		p.Tokens = append(p.Tokens, addr)
	}
	if p.SqrtPrice, err = reqAmount(w.SqrtPrice); err != nil {
		return nil, fmt.Errorf("sqrtPrice: %w", err)
	}
	if p.Liquidity, err = reqAmount(w.Liquidity); err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}
	if p.Tick, err = parseTick(w.Tick); err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}
	if len(w.LiquidityNet) > 0 {
		p.LiquidityNet = make(map[int32]BigInt, len(w.LiquidityNet))
		for key, v := range w.LiquidityNet {
			tick, err := strconv.ParseInt(key, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("liquidityNet[%q]: invalid tick index", key)
			}
			if v == nil {
				return nil, fmt.Errorf("liquidityNet[%q]: %w", key, errRequired)
			}
			net, err := ParseBigInt(*v)
			if err != nil {
				return nil, fmt.Errorf("liquidityNet[%q]: %w", key, err)
			}
			p.LiquidityNet[int32(tick)] = net
		}
	}
	if p.Fee, err = reqDecimal(w.Fee); err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}
	if p.Router, err = reqAddr(w.Router); err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	return p, nil
}

func parseTick(v *json.Number) (int32, error) {
	if v == nil {
		return 0, errRequired
	}
	n, err := strconv.ParseInt(v.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v.String())
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%d out of i32 range", n)
	}
	return int32(n), nil
}

func parseLimitOrder(meta LiquidityMeta, w wireLiquidity) (Liquidity, error) {
	p := ForeignLimitOrder{LiquidityMeta: meta}
	var err error
	if p.Hash, err = optBytes(w.Hash); err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}
	if p.MakerToken, err = reqAddr(w.MakerToken); err != nil {
		return nil, fmt.Errorf("makerToken: %w", err)
	}
	if p.TakerToken, err = reqAddr(w.TakerToken); err != nil {
		return nil, fmt.Errorf("takerToken: %w", err)
	}
	if p.MakerAmount, err = reqAmount(w.MakerAmount); err != nil {
		return nil, fmt.Errorf("makerAmount: %w", err)
	}
	if p.TakerAmount, err = reqAmount(w.TakerAmount); err != nil {
		return nil, fmt.Errorf("takerAmount: %w", err)
	}
	if p.TakerTokenFeeAmount, err = optAmount(w.TakerTokenFeeAmount, Amount{}); err != nil {
		return nil, fmt.Errorf("takerTokenFeeAmount: %w", err)
	}
	return p, nil
}
