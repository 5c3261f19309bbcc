package domain

// Token represents a launched SPL token.
// Corresponds to tokens table in PostgreSQL. Rows are written exactly once
// per successful creation and never mutated afterwards.
type Token struct {
	ID               string  // PRIMARY KEY, UUID
	CreatorWallet    string  // base58 wallet address of the requester
	Name             string  // sanitized display name
	Symbol           string  // sanitized ticker, uppercase alnum, max 8 chars
	Description      *string // nullable free text
	ImageURL         *string // nullable
	Supply           uint64  // whole-token supply as requested
	Decimals         uint8   // 0..9
	MintAddress      string  // base58 mint, unique
	MintAuthority    *string // nil when revoked
	FreezeAuthority  *string // nil when revoked (decided at mint creation)
	MetadataURI      *string // nil when no metadata was attached
	PaymentSignature string  // client-supplied fee transfer signature
	VerifiedMint     bool    // on-chain readback matched requested mint revocation
	VerifiedFreeze   bool    // on-chain readback matched requested freeze revocation
	VerifiedMetadata bool    // metadata authority state matched the request
	CreatedAt        int64   // record creation timestamp (ms)
}

// CreationRequest is a single token creation submission.
// Free-text fields are raw caller input until sanitize.CleanRequest runs.
type CreationRequest struct {
	WalletAddress    string
	Name             string
	Symbol           string
	Description      string // optional
	ImageURL         string // optional, presence triggers metadata attach
	Supply           uint64
	Decimals         uint8
	RevokeMint       bool
	RevokeFreeze     bool
	RevokeMetadata   bool
	PaymentSignature string
}

// VerificationStatus reports the on-chain authority readback after creation.
// A field is true when the revocation succeeded or was not requested.
type VerificationStatus struct {
	Mint     bool
	Freeze   bool
	Metadata bool
}

// LaunchEvent is an analytics record of one successful creation.
// Corresponds to launch_events table in ClickHouse.
type LaunchEvent struct {
	Wallet          string
	Mint            string
	Symbol          string
	Supply          uint64
	Decimals        uint8
	RevokedMint     bool
	RevokedFreeze   bool
	RevokedMetadata bool
	DurationMs      int64 // end-to-end creation duration
	CreatedAt       int64 // Unix timestamp in milliseconds
}
