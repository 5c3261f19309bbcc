// Package stub provides an in-memory chain.TokenChain for testing.
package stub

import (
	"context"
	"fmt"
	"sync"

	"solana-token-launchpad/internal/chain"
)

// mintState tracks one simulated mint.
type mintState struct {
	decimals        uint8
	supply          uint64
	mintAuthority   *string
	freezeAuthority *string
	metadata        *chain.Metadata
	metadataAuth    *string
	holderAccounts  map[string]string // owner -> account address
}

// Chain implements chain.TokenChain with in-memory state.
// Failure injection: set FailOn to make the named operation return FailErr
// until FailCount calls have failed (0 = always).
type Chain struct {
	mu     sync.Mutex
	mints  map[string]*mintState
	seq    int
	payer  string
	faults map[string]*fault

	// Payments recognized by VerifyPayment.
	Payments map[string]bool

	// Balances by wallet, in lamports.
	Balances map[string]uint64

	// Calls records operation names in invocation order.
	Calls []string
}

type fault struct {
	err       error
	remaining int // -1 = unlimited
}

// New creates an empty stub chain.
func New() *Chain {
	return &Chain{
		mints:    make(map[string]*mintState),
		payer:    "StubFeePayer1111111111111111111111",
		faults:   make(map[string]*fault),
		Payments: make(map[string]bool),
		Balances: make(map[string]uint64),
	}
}

var _ chain.TokenChain = (*Chain)(nil)

// FailOn makes op fail with err for the next count calls (count < 0 means
// every call). Operation names match the TokenChain method names.
func (c *Chain) FailOn(op string, err error, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults[op] = &fault{err: err, remaining: count}
}

func (c *Chain) failure(op string) error {
	c.Calls = append(c.Calls, op)
	f, ok := c.faults[op]
	if !ok {
		return nil
	}
	if f.remaining == 0 {
		delete(c.faults, op)
		return nil
	}
	if f.remaining > 0 {
		f.remaining--
	}
	return f.err
}

// LatestBlockhash returns a fixed hash.
func (c *Chain) LatestBlockhash(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("LatestBlockhash"); err != nil {
		return "", err
	}
	return "StubBlockhash11111111111111111111111111111111", nil
}

// CreateMint registers a new mint with the service payer as mint authority.
func (c *Chain) CreateMint(ctx context.Context, decimals uint8, freezeAuthority *string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("CreateMint"); err != nil {
		return "", err
	}

	c.seq++
	mint := fmt.Sprintf("StubMint%04d", c.seq)
	payer := c.payer
	c.mints[mint] = &mintState{
		decimals:        decimals,
		mintAuthority:   &payer,
		freezeAuthority: copyAddr(freezeAuthority),
		holderAccounts:  make(map[string]string),
	}
	return mint, nil
}

// CreateHolderAccount derives a deterministic holder account address.
func (c *Chain) CreateHolderAccount(ctx context.Context, mint, owner string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("CreateHolderAccount"); err != nil {
		return "", err
	}

	m, ok := c.mints[mint]
	if !ok {
		return "", fmt.Errorf("mint %s not found", mint)
	}
	if acc, ok := m.holderAccounts[owner]; ok {
		return acc, nil
	}
	acc := fmt.Sprintf("StubATA-%s-%s", mint, owner)
	m.holderAccounts[owner] = acc
	return acc, nil
}

// MintSupply adds baseUnits to the mint supply.
func (c *Chain) MintSupply(ctx context.Context, mint, account string, baseUnits uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("MintSupply"); err != nil {
		return err
	}

	m, ok := c.mints[mint]
	if !ok {
		return fmt.Errorf("mint %s not found", mint)
	}
	if m.mintAuthority == nil {
		return fmt.Errorf("mint %s has no mint authority", mint)
	}
	m.supply += baseUnits
	return nil
}

// FinalizeMintAuthority sets or clears the mint authority.
func (c *Chain) FinalizeMintAuthority(ctx context.Context, mint string, newAuthority *string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("FinalizeMintAuthority"); err != nil {
		return err
	}

	m, ok := c.mints[mint]
	if !ok {
		return fmt.Errorf("mint %s not found", mint)
	}
	m.mintAuthority = copyAddr(newAuthority)
	return nil
}

// AttachMetadata records metadata with the payer as update authority.
func (c *Chain) AttachMetadata(ctx context.Context, mint string, meta chain.Metadata) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("AttachMetadata"); err != nil {
		return "", err
	}

	m, ok := c.mints[mint]
	if !ok {
		return "", fmt.Errorf("mint %s not found", mint)
	}
	metaCopy := meta
	m.metadata = &metaCopy
	payer := c.payer
	m.metadataAuth = &payer
	return "StubMeta-" + mint, nil
}

// FinalizeMetadataAuthority sets or clears the metadata update authority.
func (c *Chain) FinalizeMetadataAuthority(ctx context.Context, mint string, newAuthority *string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("FinalizeMetadataAuthority"); err != nil {
		return err
	}

	m, ok := c.mints[mint]
	if !ok {
		return fmt.Errorf("mint %s not found", mint)
	}
	if m.metadata == nil {
		return fmt.Errorf("mint %s has no metadata", mint)
	}
	m.metadataAuth = copyAddr(newAuthority)
	return nil
}

// ReadMint returns the simulated mint state.
func (c *Chain) ReadMint(ctx context.Context, mint string) (*chain.MintInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("ReadMint"); err != nil {
		return nil, err
	}

	m, ok := c.mints[mint]
	if !ok {
		return nil, fmt.Errorf("mint %s not found", mint)
	}
	return &chain.MintInfo{
		Supply:          m.supply,
		Decimals:        m.decimals,
		MintAuthority:   copyAddr(m.mintAuthority),
		FreezeAuthority: copyAddr(m.freezeAuthority),
	}, nil
}

// VerifyPayment accepts signatures registered in Payments.
func (c *Chain) VerifyPayment(ctx context.Context, signature string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("VerifyPayment"); err != nil {
		return err
	}

	if !c.Payments[signature] {
		return fmt.Errorf("payment transaction %s not found", signature)
	}
	return nil
}

// Balance returns the configured wallet balance.
func (c *Chain) Balance(ctx context.Context, wallet string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("Balance"); err != nil {
		return 0, err
	}
	return c.Balances[wallet], nil
}

// MetadataFor exposes the recorded metadata for assertions.
func (c *Chain) MetadataFor(mint string) (*chain.Metadata, *string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.mints[mint]
	if !ok {
		return nil, nil
	}
	return m.metadata, copyAddr(m.metadataAuth)
}

// CallCount returns the number of recorded calls for op.
func (c *Chain) CallCount(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.Calls {
		if call == op {
			n++
		}
	}
	return n
}

func copyAddr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
