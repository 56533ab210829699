package domain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// Amount is an unsigned 256-bit token quantity. On the wire it travels as a
// string of decimal digits, never as a JSON number, so magnitudes above 2^53
// survive clients that parse numbers through floats.
type Amount struct {
	u uint256.Int
}

// NewAmount returns the Amount for a machine-sized integer.
func NewAmount(v uint64) Amount {
	var a Amount
	a.u.SetUint64(v)
	return a
}

// ParseAmount parses a base-10 digit string. The empty string, signs,
// decimal points, hex prefixes and values above 2^256-1 are all rejected.
// Leading zeros are accepted and normalized away.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Amount{}, fmt.Errorf("invalid amount %q: want decimal digits", s)
		}
	}
	var a Amount
	if err := a.u.SetFromDecimal(s); err != nil {
		return Amount{}, fmt.Errorf("amount %q exceeds uint256 range", s)
	}
	return a, nil
}

// MustAmount is ParseAmount for literals known to be valid. It panics on
// malformed input and exists for fixtures and tests.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the canonical decimal form without leading zeros.
func (a Amount) String() string { return a.u.Dec() }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.u.IsZero() }

// Cmp compares a and b, returning -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.u.Cmp(&b.u) }

// Add returns a+b, or ErrOverflow when the sum does not fit in 256 bits.
func (a Amount) Add(b Amount) (Amount, error) {
	var sum Amount
	if _, overflow := sum.u.AddOverflow(&a.u, &b.u); overflow {
		return Amount{}, ErrOverflow
	}
	return sum, nil
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.u.Dec())
}

// UnmarshalJSON decodes a quoted decimal digit string. Bare JSON numbers
// are rejected to keep float-rounded values out of settlement math.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount must be a decimal string")
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Decimal is an exact nonnegative decimal fraction carried as text, used for
// pool fees and weights. It is validated on ingress and never converted to
// float.
type Decimal string

// ParseDecimal checks that s is digits with at most one interior decimal
// point, as in "0.003".
func ParseDecimal(s string) (Decimal, error) {
	if s == "" {
		return "", fmt.Errorf("empty decimal")
	}
	dot := -1
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
		case s[i] == '.' && dot < 0 && i > 0 && i < len(s)-1:
			dot = i
		default:
			return "", fmt.Errorf("invalid decimal %q", s)
		}
	}
	return Decimal(s), nil
}

func (d Decimal) String() string { return string(d) }

// BigInt is a signed arbitrary-precision integer carried as a decimal
// string. Tick-indexed liquidity needs it because net liquidity can be
// negative. The stored form is canonical: no sign on zero, no leading
// zeros.
type BigInt string

// ParseBigInt parses an optionally negative base-10 integer string.
func ParseBigInt(s string) (BigInt, error) {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return "", fmt.Errorf("empty integer")
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", fmt.Errorf("invalid integer %q: want decimal digits", s)
		}
	}
	var n big.Int
	if _, ok := n.SetString(s, 10); !ok {
		return "", fmt.Errorf("invalid integer %q", s)
	}
	return BigInt(n.String()), nil
}

func (b BigInt) String() string { return string(b) }
