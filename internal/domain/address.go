package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseAddress parses a 20-byte hex address. The 0x prefix is mandatory;
// go-ethereum alone would also accept bare hex.
func ParseAddress(s string) (common.Address, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return common.Address{}, fmt.Errorf("invalid address %q: missing 0x prefix", s)
	}
	if len(s) != 2+2*common.AddressLength || !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q: want 0x followed by 40 hex digits", s)
	}
	return common.HexToAddress(s), nil
}

// OrderUID is the opaque hex identifier the driver assigns an order.
// Production uids are 56 bytes (owner, order digest, validTo) but any
// even-length 0x payload is accepted; the solver never decomposes them.
// The stored form is canonical lowercase.
type OrderUID string

// ParseOrderUID validates and canonicalizes a 0x-prefixed hex uid.
func ParseOrderUID(s string) (OrderUID, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return "", fmt.Errorf("invalid order uid %q: %v", s, err)
	}
	return OrderUID(hexutil.Encode(b)), nil
}

func (u OrderUID) String() string { return string(u) }

// ParseHexBytes decodes a 0x-prefixed hex payload of any even length.
// Empty payloads decode to nil so "0x" and an absent field compare equal.
func ParseHexBytes(s string) (hexutil.Bytes, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload %q: %v", s, err)
	}
	if len(b) == 0 {
		return nil, nil
	}
	return b, nil
}
