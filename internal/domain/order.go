package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// OrderKind indicates which amount is fixed from the owner's perspective.
type OrderKind string

const (
	OrderKindSell OrderKind = "sell"
	OrderKindBuy  OrderKind = "buy"
)

// ParseOrderKind validates a wire order kind.
func ParseOrderKind(s string) (OrderKind, error) {
	switch OrderKind(s) {
	case OrderKindSell, OrderKindBuy:
		return OrderKind(s), nil
	}
	return "", fmt.Errorf("unknown order kind %q", s)
}

// OrderClass indicates how the order was placed.
type OrderClass string

const (
	OrderClassMarket OrderClass = "market"
	OrderClassLimit  OrderClass = "limit"
)

// ParseOrderClass validates a wire order class.
func ParseOrderClass(s string) (OrderClass, error) {
	switch OrderClass(s) {
	case OrderClassMarket, OrderClassLimit:
		return OrderClass(s), nil
	}
	return "", fmt.Errorf("unknown order class %q", s)
}

// SigningScheme identifies how the order signature was produced.
type SigningScheme string

const (
	SigningSchemeEIP712  SigningScheme = "eip712"
	SigningSchemeEthSign SigningScheme = "ethSign"
	SigningSchemePreSign SigningScheme = "preSign"
	SigningSchemeEIP1271 SigningScheme = "eip1271"
)

// ParseSigningScheme validates a wire signing scheme.
func ParseSigningScheme(s string) (SigningScheme, error) {
	switch SigningScheme(s) {
	case SigningSchemeEIP712, SigningSchemeEthSign, SigningSchemePreSign, SigningSchemeEIP1271:
		return SigningScheme(s), nil
	}
	return "", fmt.Errorf("unknown signing scheme %q", s)
}

// TokenBalance names where sell funds are drawn from or buy proceeds land.
type TokenBalance string

const (
	TokenBalanceERC20    TokenBalance = "erc20"
	TokenBalanceInternal TokenBalance = "internal"
	TokenBalanceExternal TokenBalance = "external"
)

// ParseTokenBalance validates a wire balance location.
func ParseTokenBalance(s string) (TokenBalance, error) {
	switch TokenBalance(s) {
	case TokenBalanceERC20, TokenBalanceInternal, TokenBalanceExternal:
		return TokenBalance(s), nil
	}
	return "", fmt.Errorf("unknown token balance %q", s)
}

// Order is one limit commitment inside an auction. The driver serializes
// the class under the key "class"; languages where that collides with a
// keyword rename the field, Go keeps the natural name and only the JSON
// key is fixed.
type Order struct {
	UID                 OrderUID        `json:"uid"`
	SellToken           common.Address  `json:"sellToken"`
	BuyToken            common.Address  `json:"buyToken"`
	SellAmount          Amount          `json:"sellAmount"`
	FullSellAmount      Amount          `json:"fullSellAmount"`
	BuyAmount           Amount          `json:"buyAmount"`
	FullBuyAmount       Amount          `json:"fullBuyAmount"`
	ValidTo             int64           `json:"validTo"`
	Kind                OrderKind       `json:"kind"`
	Receiver            *common.Address `json:"receiver,omitempty"`
	Owner               common.Address  `json:"owner"`
	PartiallyFillable   bool            `json:"partiallyFillable"`
	PreInteractions     []Call          `json:"preInteractions,omitempty"`
	PostInteractions    []Call          `json:"postInteractions,omitempty"`
	SellTokenSource     TokenBalance    `json:"sellTokenSource"`
	BuyTokenDestination TokenBalance    `json:"buyTokenDestination"`
	Class               OrderClass      `json:"class"`
	AppData             hexutil.Bytes   `json:"appData,omitempty"`
	FeePolicies         []FeePolicy     `json:"feePolicies,omitempty"`
	SigningScheme       SigningScheme   `json:"signingScheme"`
	Signature           hexutil.Bytes   `json:"signature,omitempty"`
	FlashloanHint       *Flashloan      `json:"flashloanHint,omitempty"`
}

type wireOrder struct {
	UID                 *string           `json:"uid"`
	SellToken           *string           `json:"sellToken"`
	BuyToken            *string           `json:"buyToken"`
	SellAmount          *string           `json:"sellAmount"`
	FullSellAmount      *string           `json:"fullSellAmount"`
	BuyAmount           *string           `json:"buyAmount"`
	FullBuyAmount       *string           `json:"fullBuyAmount"`
	ValidTo             *json.Number      `json:"validTo"`
	Kind                *string           `json:"kind"`
	Receiver            *string           `json:"receiver"`
	Owner               *string           `json:"owner"`
	PartiallyFillable   *bool             `json:"partiallyFillable"`
	PreInteractions     []json.RawMessage `json:"preInteractions"`
	PostInteractions    []json.RawMessage `json:"postInteractions"`
	SellTokenSource     *string           `json:"sellTokenSource"`
	BuyTokenDestination *string           `json:"buyTokenDestination"`
	Class               *string           `json:"class"`
	AppData             *string           `json:"appData"`
	FeePolicies         []json.RawMessage `json:"feePolicies"`
	SigningScheme       *string           `json:"signingScheme"`
	Signature           *string           `json:"signature"`
	FlashloanHint       *wireFlashloan    `json:"flashloanHint"`
}

func parseOrder(data []byte) (Order, error) {
	var w wireOrder
	if err := json.Unmarshal(data, &w); err != nil {
		return Order{}, err
	}

	var o Order
	var err error
	if w.UID == nil {
		return Order{}, fmt.Errorf("uid: %w", errRequired)
	}
	if o.UID, err = ParseOrderUID(*w.UID); err != nil {
		return Order{}, fmt.Errorf("uid: %w", err)
	}
	if o.SellToken, err = reqAddr(w.SellToken); err != nil {
		return Order{}, fmt.Errorf("sellToken: %w", err)
	}
	if o.BuyToken, err = reqAddr(w.BuyToken); err != nil {
		return Order{}, fmt.Errorf("buyToken: %w", err)
	}
	if o.SellAmount, err = reqAmount(w.SellAmount); err != nil {
		return Order{}, fmt.Errorf("sellAmount: %w", err)
	}
	if o.BuyAmount, err = reqAmount(w.BuyAmount); err != nil {
		return Order{}, fmt.Errorf("buyAmount: %w", err)
	}
	// Partially fillable orders settle against the remaining amounts; the
	// full amounts fall back to them when the driver omits the originals.
	if o.FullSellAmount, err = optAmount(w.FullSellAmount, o.SellAmount); err != nil {
		return Order{}, fmt.Errorf("fullSellAmount: %w", err)
	}
	if o.FullBuyAmount, err = optAmount(w.FullBuyAmount, o.BuyAmount); err != nil {
		return Order{}, fmt.Errorf("fullBuyAmount: %w", err)
	}
	if o.ValidTo, err = parseValidTo(w.ValidTo); err != nil {
		return Order{}, fmt.Errorf("validTo: %w", err)
	}
	if w.Kind == nil {
		return Order{}, fmt.Errorf("kind: %w", errRequired)
	}
	if o.Kind, err = ParseOrderKind(*w.Kind); err != nil {
		return Order{}, fmt.Errorf("kind: %w", err)
	}
	if o.Receiver, err = optAddr(w.Receiver); err != nil {
		return Order{}, fmt.Errorf("receiver: %w", err)
	}
	if o.Owner, err = reqAddr(w.Owner); err != nil {
		return Order{}, fmt.Errorf("owner: %w", err)
	}
	if w.PartiallyFillable != nil {
		o.PartiallyFillable = *w.PartiallyFillable
	}
	if o.PreInteractions, err = parseCalls("preInteractions", w.PreInteractions); err != nil {
		return Order{}, err
	}
	if o.PostInteractions, err = parseCalls("postInteractions", w.PostInteractions); err != nil {
		return Order{}, err
	}
	o.SellTokenSource = TokenBalanceERC20
	if w.SellTokenSource != nil {
		if o.SellTokenSource, err = ParseTokenBalance(*w.SellTokenSource); err != nil {
			return Order{}, fmt.Errorf("sellTokenSource: %w", err)
		}
	}
	o.BuyTokenDestination = TokenBalanceERC20
	if w.BuyTokenDestination != nil {
		if o.BuyTokenDestination, err = ParseTokenBalance(*w.BuyTokenDestination); err != nil {
			return Order{}, fmt.Errorf("buyTokenDestination: %w", err)
		}
		if o.BuyTokenDestination == TokenBalanceExternal {
			return Order{}, fmt.Errorf("buyTokenDestination: external balances cannot receive proceeds")
		}
	}
	if w.Class == nil {
		return Order{}, fmt.Errorf("class: %w", errRequired)
	}
	if o.Class, err = ParseOrderClass(*w.Class); err != nil {
		return Order{}, fmt.Errorf("class: %w", err)
	}
	if o.AppData, err = optBytes(w.AppData); err != nil {
		return Order{}, fmt.Errorf("appData: %w", err)
	}
	for i, raw := range w.FeePolicies {
		p, err := parseFeePolicy(raw)
		if err != nil {
			return Order{}, fmt.Errorf("feePolicies[%d]: %w", i, err)
		}
		o.FeePolicies = append(o.FeePolicies, p)
	}
	o.SigningScheme = SigningSchemeEIP712
	if w.SigningScheme != nil {
		if o.SigningScheme, err = ParseSigningScheme(*w.SigningScheme); err != nil {
			return Order{}, fmt.Errorf("signingScheme: %w", err)
		}
	}
	if o.Signature, err = optBytes(w.Signature); err != nil {
		return Order{}, fmt.Errorf("signature: %w", err)
	}
	if w.FlashloanHint != nil {
		hint, err := parseFlashloan(*w.FlashloanHint)
		if err != nil {
			return Order{}, fmt.Errorf("flashloanHint: %w", err)
		}
		o.FlashloanHint = &hint
	}
	return o, nil
}

// parseValidTo bounds the expiry to the u32 range the settlement contract
// uses.
func parseValidTo(v *json.Number) (int64, error) {
	if v == nil {
		return 0, errRequired
	}
	n, err := strconv.ParseInt(v.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v.String())
	}
	if n < 0 || n > math.MaxUint32 {
		return 0, fmt.Errorf("%d out of u32 range", n)
	}
	return n, nil
}

// UnmarshalJSON decodes the driver's order shape, reporting the offending
// field on failure.
func (o *Order) UnmarshalJSON(data []byte) error {
	v, err := parseOrder(data)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Flashloan describes a loan to source before settlement and repay within
// it, keyed by order uid in solutions.
type Flashloan struct {
	Lender   *common.Address `json:"lender,omitempty"`
	Borrower *common.Address `json:"borrower,omitempty"`
	Token    common.Address  `json:"token"`
	Amount   Amount          `json:"amount"`
}

type wireFlashloan struct {
	Lender   *string `json:"lender"`
	Borrower *string `json:"borrower"`
	Token    *string `json:"token"`
	Amount   *string `json:"amount"`
}

func parseFlashloan(w wireFlashloan) (Flashloan, error) {
	var f Flashloan
	var err error
	if f.Lender, err = optAddr(w.Lender); err != nil {
		return Flashloan{}, fmt.Errorf("lender: %w", err)
	}
	if f.Borrower, err = optAddr(w.Borrower); err != nil {
		return Flashloan{}, fmt.Errorf("borrower: %w", err)
	}
	if f.Token, err = reqAddr(w.Token); err != nil {
		return Flashloan{}, fmt.Errorf("token: %w", err)
	}
	if f.Amount, err = reqAmount(w.Amount); err != nil {
		return Flashloan{}, fmt.Errorf("amount: %w", err)
	}
	return f, nil
}

// FeePolicyKind discriminates protocol fee policies.
type FeePolicyKind string

const (
	FeePolicySurplus          FeePolicyKind = "surplus"
	FeePolicyVolume           FeePolicyKind = "volume"
	FeePolicyPriceImprovement FeePolicyKind = "priceImprovement"
)

// FeePolicy is one protocol fee rule attached to an order. The set of
// kinds is closed; parseFeePolicy rejects anything it does not recognize.
type FeePolicy interface {
	Kind() FeePolicyKind
	isFeePolicy()
}

// SurplusFee takes a cut of the surplus the settlement generates for the
// order, capped by a volume factor.
type SurplusFee struct {
	Factor          float64 `json:"factor"`
	MaxVolumeFactor float64 `json:"maxVolumeFactor"`
}

func (SurplusFee) Kind() FeePolicyKind { return FeePolicySurplus }
func (SurplusFee) isFeePolicy()        {}

func (f SurplusFee) MarshalJSON() ([]byte, error) {
	type alias SurplusFee
	return json.Marshal(struct {
		Kind FeePolicyKind `json:"kind"`
		alias
	}{FeePolicySurplus, alias(f)})
}

// VolumeFee takes a flat cut of the executed volume.
type VolumeFee struct {
	Factor float64 `json:"factor"`
}

func (VolumeFee) Kind() FeePolicyKind { return FeePolicyVolume }
func (VolumeFee) isFeePolicy()        {}

func (f VolumeFee) MarshalJSON() ([]byte, error) {
	type alias VolumeFee
	return json.Marshal(struct {
		Kind FeePolicyKind `json:"kind"`
		alias
	}{FeePolicyVolume, alias(f)})
}

// PriceImprovementFee takes a cut of the improvement over a reference
// quote.
type PriceImprovementFee struct {
	Factor          float64  `json:"factor"`
	MaxVolumeFactor float64  `json:"maxVolumeFactor"`
	Quote           FeeQuote `json:"quote"`
}

func (PriceImprovementFee) Kind() FeePolicyKind { return FeePolicyPriceImprovement }
func (PriceImprovementFee) isFeePolicy()        {}

func (f PriceImprovementFee) MarshalJSON() ([]byte, error) {
	type alias PriceImprovementFee
	return json.Marshal(struct {
		Kind FeePolicyKind `json:"kind"`
		alias
	}{FeePolicyPriceImprovement, alias(f)})
}

// FeeQuote is the reference quote a price improvement policy compares
// against.
type FeeQuote struct {
	SellAmount Amount `json:"sellAmount"`
	BuyAmount  Amount `json:"buyAmount"`
	Fee        Amount `json:"fee"`
}

type wireFeePolicy struct {
	Kind            *string       `json:"kind"`
	Factor          *float64      `json:"factor"`
	MaxVolumeFactor *float64      `json:"maxVolumeFactor"`
	Quote           *wireFeeQuote `json:"quote"`
}

type wireFeeQuote struct {
	SellAmount *string `json:"sellAmount"`
	BuyAmount  *string `json:"buyAmount"`
	Fee        *string `json:"fee"`
}

func parseFeePolicy(data []byte) (FeePolicy, error) {
	var w wireFeePolicy
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.Kind == nil {
		return nil, fmt.Errorf("kind: %w", errRequired)
	}
	switch FeePolicyKind(*w.Kind) {
	case FeePolicySurplus:
		if w.Factor == nil {
			return nil, fmt.Errorf("factor: %w", errRequired)
		}
		if w.MaxVolumeFactor == nil {
			return nil, fmt.Errorf("maxVolumeFactor: %w", errRequired)
		}
		return SurplusFee{Factor: *w.Factor, MaxVolumeFactor: *w.MaxVolumeFactor}, nil
	case FeePolicyVolume:
		if w.Factor == nil {
			return nil, fmt.Errorf("factor: %w", errRequired)
		}
		return VolumeFee{Factor: *w.Factor}, nil
	case FeePolicyPriceImprovement:
		if w.Factor == nil {
			return nil, fmt.Errorf("factor: %w", errRequired)
		}
		if w.MaxVolumeFactor == nil {
			return nil, fmt.Errorf("maxVolumeFactor: %w", errRequired)
		}
		if w.Quote == nil {
			return nil, fmt.Errorf("quote: %w", errRequired)
		}
		q, err := parseFeeQuote(*w.Quote)
		if err != nil {
			return nil, fmt.Errorf("quote: %w", err)
		}
		return PriceImprovementFee{Factor: *w.Factor, MaxVolumeFactor: *w.MaxVolumeFactor, Quote: q}, nil
	}
	return nil, fmt.Errorf("unknown fee policy kind %q", *w.Kind)
}

func parseFeeQuote(w wireFeeQuote) (FeeQuote, error) {
	var q FeeQuote
	var err error
	if q.SellAmount, err = reqAmount(w.SellAmount); err != nil {
		return FeeQuote{}, fmt.Errorf("sellAmount: %w", err)
	}
	if q.BuyAmount, err = reqAmount(w.BuyAmount); err != nil {
		return FeeQuote{}, fmt.Errorf("buyAmount: %w", err)
	}
	if q.Fee, err = reqAmount(w.Fee); err != nil {
		return FeeQuote{}, fmt.Errorf("fee: %w", err)
	}
	return q, nil
}
