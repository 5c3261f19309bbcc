// Package sanitize cleans and validates token creation input.
// All functions are pure; sanitization is idempotent.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solana-token-launchpad/internal/domain"
)

// MaxSymbolLen is the maximum ticker length after filtering.
const MaxSymbolLen = 8

// MaxNameLen bounds the display name after tag stripping.
const MaxNameLen = 64

// MaxDecimals is the SPL token precision limit accepted here.
const MaxDecimals = 9

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StripTags removes HTML tag substrings from free text and trims whitespace.
// Runs until stable so nested fragments like "<<b>>" cannot survive a pass.
func StripTags(s string) string {
	for {
		stripped := tagPattern.ReplaceAllString(s, "")
		if stripped == s {
			return strings.TrimSpace(s)
		}
		s = stripped
	}
}

// Symbol restricts a ticker to uppercase alphanumerics.
// "do g3!" becomes "DOG3".
func Symbol(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - ('a' - 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, s)
}

// ValidWalletAddress reports whether s is a base58-encoded 32-byte
// ed25519 public key. Wallet keys are curve points; program-derived
// addresses are deliberately rejected.
func ValidWalletAddress(s string) bool {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}

// CleanRequest sanitizes free-text fields and validates the request.
// Returns a cleaned copy, or a *ValidationError describing the first
// rejected field.
func CleanRequest(req domain.CreationRequest) (domain.CreationRequest, error) {
	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	if req.WalletAddress == "" {
		return req, &ValidationError{Field: "walletAddress", Reason: "missing required field"}
	}
	if !ValidWalletAddress(req.WalletAddress) {
		return req, &ValidationError{Field: "walletAddress", Reason: "not a valid base58 ed25519 public key"}
	}

	req.Name = StripTags(req.Name)
	if req.Name == "" {
		return req, &ValidationError{Field: "name", Reason: "missing or empty after sanitization"}
	}
	if len(req.Name) > MaxNameLen {
		return req, &ValidationError{Field: "name", Reason: fmt.Sprintf("longer than %d characters", MaxNameLen)}
	}

	req.Symbol = Symbol(StripTags(req.Symbol))
	if req.Symbol == "" {
		return req, &ValidationError{Field: "symbol", Reason: "missing or empty after sanitization"}
	}
	if len(req.Symbol) > MaxSymbolLen {
		return req, &ValidationError{Field: "symbol", Reason: fmt.Sprintf("longer than %d characters", MaxSymbolLen)}
	}

	req.Description = StripTags(req.Description)
	req.ImageURL = strings.TrimSpace(req.ImageURL)

	if req.Supply == 0 {
		return req, &ValidationError{Field: "supply", Reason: "must be a positive integer"}
	}
	if req.Decimals > MaxDecimals {
		return req, &ValidationError{Field: "decimals", Reason: fmt.Sprintf("must be between 0 and %d", MaxDecimals)}
	}
	if req.Supply > maxUint64/pow10(req.Decimals) {
		return req, &ValidationError{Field: "supply", Reason: "supply times 10^decimals overflows base units"}
	}

	req.PaymentSignature = strings.TrimSpace(req.PaymentSignature)
	if req.PaymentSignature == "" {
		return req, &ValidationError{Field: "transactionSignature", Reason: "missing required field"}
	}

	return req, nil
}

// Comment sanitizes comment content the same way as token free text.
func Comment(content string) string {
	return StripTags(content)
}

const maxUint64 = ^uint64(0)

func pow10(n uint8) uint64 {
	result := uint64(1)
	for i := uint8(0); i < n; i++ {
		result *= 10
	}
	return result
}
