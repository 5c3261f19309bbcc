package chain

import (
	"errors"
	"fmt"
	"strings"
)

// Cause tags a chain failure with a known class. SDK and RPC errors carry
// free-text messages; they are classified here, once, at the boundary.
// Everything downstream branches on the tag, never on message text.
type Cause string

const (
	CauseInsufficientFunds Cause = "INSUFFICIENT_FUNDS"
	CauseBlockhashNotFound Cause = "BLOCKHASH_NOT_FOUND"
	CauseRateLimited       Cause = "RATE_LIMITED"
	CauseUnknown           Cause = "UNKNOWN"
)

// Error wraps a failed chain operation with its classified cause.
type Error struct {
	Op    string // failing operation, e.g. "create mint"
	Cause Cause
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify wraps err into an *Error tagged by message inspection.
// This is the only place in the codebase that matches on error text.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	cause := CauseUnknown
	switch {
	case strings.Contains(msg, "insufficient funds"),
		strings.Contains(msg, "insufficient lamports"):
		cause = CauseInsufficientFunds
	case strings.Contains(msg, "blockhash not found"):
		cause = CauseBlockhashNotFound
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "rate limit"):
		cause = CauseRateLimited
	}

	return &Error{Op: op, Cause: cause, Err: err}
}

// CauseOf extracts the classified cause, or CauseUnknown for foreign errors.
func CauseOf(err error) Cause {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Cause
	}
	return CauseUnknown
}

// IsRetryable reports whether a failure is worth another attempt.
// Insufficient funds and stale blockhashes never resolve by retrying.
func IsRetryable(err error) bool {
	switch CauseOf(err) {
	case CauseInsufficientFunds, CauseBlockhashNotFound:
		return false
	default:
		return true
	}
}
