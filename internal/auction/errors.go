package auction

import (
	"errors"
	"fmt"
)

// Kind classifies a draft-rule violation. Handlers map kinds to HTTP
// statuses.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidState      Kind = "invalid_state"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindBidTooLow         Kind = "bid_too_low"
	KindCapacityExceeded  Kind = "capacity_exceeded"
	KindInvalidInput      Kind = "invalid_input"
)

// Error is a draft-rule violation with a specific reason. Violations are
// detected before any write, so an Error never means partial state.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Errf builds an Error with a formatted reason.
func Errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from an error chain. Returns "" when the error
// is not a draft-rule violation.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
