package launch

import (
	"errors"
	"fmt"

	"solana-token-launchpad/internal/chain"
	"solana-token-launchpad/internal/sanitize"
)

// DatabaseError marks a persistence failure after the mint already exists
// on-chain. There is no compensating rollback; the chain and the catalog
// are left inconsistent and the caller is told so.
type DatabaseError struct {
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error: %v", e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// UserMessage maps a creation failure to the string shown to callers.
// The raw error text travels separately for diagnostics.
func UserMessage(err error) string {
	var verr *sanitize.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if errors.Is(err, ErrRateLimited) {
		return ErrRateLimited.Error()
	}
	var derr *DatabaseError
	if errors.As(err, &derr) {
		return "Failed to save the token record. The mint exists on-chain but could not be cataloged."
	}

	switch chain.CauseOf(err) {
	case chain.CauseInsufficientFunds:
		return "Insufficient SOL balance. Please add funds to your wallet and try again."
	case chain.CauseBlockhashNotFound, chain.CauseRateLimited:
		return "Network congestion detected. Please try again in a few moments."
	}
	return "Token creation failed. Please try again."
}
