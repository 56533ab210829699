package domain

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// errRequired marks a wire field that must be present. Call sites wrap it
// with the field name.
var errRequired = errors.New("required field missing")

func reqString(v *string) (string, error) {
	if v == nil || *v == "" {
		return "", errRequired
	}
	return *v, nil
}

func reqAddr(v *string) (common.Address, error) {
	if v == nil {
		return common.Address{}, errRequired
	}
	return ParseAddress(*v)
}

func optAddr(v *string) (*common.Address, error) {
	if v == nil {
		return nil, nil
	}
	a, err := ParseAddress(*v)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func reqAmount(v *string) (Amount, error) {
	if v == nil {
		return Amount{}, errRequired
	}
	return ParseAmount(*v)
}

// optAmount falls back to def when the field is absent.
func optAmount(v *string, def Amount) (Amount, error) {
	if v == nil {
		return def, nil
	}
	return ParseAmount(*v)
}

func optAmountPtr(v *string) (*Amount, error) {
	if v == nil {
		return nil, nil
	}
	a, err := ParseAmount(*v)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func reqDecimal(v *string) (Decimal, error) {
	if v == nil {
		return "", errRequired
	}
	return ParseDecimal(*v)
}

func optDecimalPtr(v *string) (*Decimal, error) {
	if v == nil {
		return nil, nil
	}
	d, err := ParseDecimal(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// optBytes treats absent fields and "0x" alike, returning nil.
func optBytes(v *string) (hexutil.Bytes, error) {
	if v == nil {
		return nil, nil
	}
	return ParseHexBytes(*v)
}
