package domain

// Comment is a social comment attached to a launched token.
// Corresponds to comments table in PostgreSQL.
type Comment struct {
	ID            string // PRIMARY KEY, UUID
	TokenID       string // references tokens.id
	WalletAddress string // commenter wallet, base58
	Content       string // sanitized free text
	CreatedAt     int64  // Unix timestamp in milliseconds
}
