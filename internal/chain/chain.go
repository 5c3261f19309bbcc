// Package chain is the Solana boundary for the launchpad. It exposes the
// narrow interface the creation pipeline needs and hides transaction
// assembly, signing, and confirmation behind it. Failures cross this
// boundary as tagged *Error values.
package chain

import "context"

// TokenChain is the remote-collaborator interface consumed by the
// creation pipeline. Addresses are base58 strings throughout.
type TokenChain interface {
	// LatestBlockhash is the connection liveness probe.
	LatestBlockhash(ctx context.Context) (string, error)

	// CreateMint creates and initializes a new mint. The service key holds
	// mint authority until FinalizeMintAuthority; the freeze authority is
	// fixed here and cannot change later.
	CreateMint(ctx context.Context, decimals uint8, freezeAuthority *string) (mint string, err error)

	// CreateHolderAccount creates (or finds) the owner's associated token
	// account for the mint.
	CreateHolderAccount(ctx context.Context, mint, owner string) (account string, err error)

	// MintSupply mints baseUnits into account, signed by the interim
	// mint authority.
	MintSupply(ctx context.Context, mint, account string, baseUnits uint64) error

	// FinalizeMintAuthority hands mint authority to newAuthority, or
	// revokes it permanently when newAuthority is nil.
	FinalizeMintAuthority(ctx context.Context, mint string, newAuthority *string) error

	// AttachMetadata creates the on-chain metadata record for the mint.
	// Returns the metadata account address.
	AttachMetadata(ctx context.Context, mint string, meta Metadata) (string, error)

	// FinalizeMetadataAuthority hands the metadata update authority to
	// newAuthority, or revokes it when nil. Only valid after AttachMetadata.
	FinalizeMetadataAuthority(ctx context.Context, mint string, newAuthority *string) error

	// ReadMint re-reads the mint account for post-creation verification.
	ReadMint(ctx context.Context, mint string) (*MintInfo, error)

	// VerifyPayment checks that the fee-transfer transaction exists,
	// succeeded, and touched the fee-collection wallet.
	VerifyPayment(ctx context.Context, signature string) error

	// Balance returns the wallet balance in lamports.
	Balance(ctx context.Context, wallet string) (uint64, error)
}

// Metadata is the off-chain-referenced token metadata to attach to a mint.
type Metadata struct {
	Name   string
	Symbol string
	URI    string
}

// MintInfo is the decoded state of a mint account.
type MintInfo struct {
	Supply          uint64
	Decimals        uint8
	MintAuthority   *string // nil when revoked
	FreezeAuthority *string // nil when revoked
}
