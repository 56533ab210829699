package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOverflow reports an arithmetic result that does not fit in a
	// uint256. It surfaces as an internal fault, never as a client error.
	ErrOverflow = errors.New("uint256 overflow")
)

// ViolationCode identifies one class of hard semantic violation.
type ViolationCode string

const (
	ViolationDuplicateUID ViolationCode = "duplicate-uid"
	ViolationSelfTrade    ViolationCode = "self-trade"
	ViolationZeroAmount   ViolationCode = "zero-amount"
)

// AdvisoryCode identifies one class of suspicious but tolerable finding.
type AdvisoryCode string

const (
	AdvisoryStaleOrder   AdvisoryCode = "stale-order"
	AdvisoryUnknownToken AdvisoryCode = "unknown-token"
)

// Violation is a semantic defect that makes an auction unsolvable even
// though its JSON was well formed.
type Violation struct {
	Code    ViolationCode `json:"code"`
	Order   OrderUID      `json:"order,omitempty"`
	Message string        `json:"message"`
}

// Advisory flags something worth logging that does not block solving,
// such as an order that expires before the auction deadline.
type Advisory struct {
	Code    AdvisoryCode `json:"code"`
	Order   OrderUID     `json:"order,omitempty"`
	Message string       `json:"message"`
}

// SemanticError carries the full set of violations found in an auction.
// Callers distinguish it from parse errors to map it to a distinct
// response status.
type SemanticError struct {
	Violations []Violation
}

func (e *SemanticError) Error() string {
	if len(e.Violations) == 0 {
		return "semantic violation"
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "semantic violation: " + strings.Join(msgs, "; ")
}

// NewViolation builds a violation with a formatted message.
func NewViolation(code ViolationCode, uid OrderUID, format string, args ...any) Violation {
	return Violation{Code: code, Order: uid, Message: fmt.Sprintf(format, args...)}
}

// NewAdvisory builds an advisory with a formatted message.
func NewAdvisory(code AdvisoryCode, uid OrderUID, format string, args ...any) Advisory {
	return Advisory{Code: code, Order: uid, Message: fmt.Sprintf(format, args...)}
}
