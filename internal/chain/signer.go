package chain

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/blocto/solana-go-sdk/types"
)

// FeePayer is the scoped accessor for the service keypair. It is loaded
// once at startup and passed into the client constructor; nothing in this
// package holds key material in package-level state.
type FeePayer struct {
	account types.Account
}

// Account returns the signing account.
func (f *FeePayer) Account() types.Account {
	return f.account
}

// Address returns the fee payer public key as base58.
func (f *FeePayer) Address() string {
	return f.account.PublicKey.ToBase58()
}

// LoadFeePayer reads a Solana-CLI-style keypair: either a path to a JSON
// byte-array file or the JSON array itself (the form secret managers hand
// out). The array holds the 64-byte ed25519 secret key.
func LoadFeePayer(pathOrJSON string) (*FeePayer, error) {
	s := strings.TrimSpace(pathOrJSON)
	if s == "" {
		return nil, fmt.Errorf("fee payer keypair is not configured")
	}

	raw := []byte(s)
	if !strings.HasPrefix(s, "[") {
		data, err := os.ReadFile(s)
		if err != nil {
			return nil, fmt.Errorf("read keypair file: %w", err)
		}
		raw = data
	}

	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil, fmt.Errorf("keypair is not a json byte array: %w", err)
	}
	if len(ints) != 64 {
		return nil, fmt.Errorf("keypair must be 64 bytes, got %d", len(ints))
	}

	b := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("keypair byte out of range at index %d: %d", i, v)
		}
		b[i] = byte(v)
	}

	account, err := types.AccountFromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("decode keypair: %w", err)
	}

	return &FeePayer{account: account}, nil
}

// NewEphemeralFeePayer generates a throwaway keypair. Useful for tests and
// devnet experiments only; real deployments load a funded key.
func NewEphemeralFeePayer() *FeePayer {
	return &FeePayer{account: types.NewAccount()}
}
