package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/observability"
	"solana-token-launchpad/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

const tokenColumns = `
	id, creator_wallet, name, symbol, description, image_url,
	supply, decimals, mint_address, mint_authority, freeze_authority,
	metadata_uri, payment_signature,
	verified_mint, verified_freeze, verified_metadata, created_at
`

// Insert adds a new token record. Returns ErrDuplicateKey if the id or
// mint address already exists.
func (s *TokenStore) Insert(ctx context.Context, t *domain.Token) error {
	query := `
		INSERT INTO tokens (
			id, creator_wallet, name, symbol, description, image_url,
			supply, decimals, mint_address, mint_authority, freeze_authority,
			metadata_uri, payment_signature,
			verified_mint, verified_freeze, verified_metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query,
		t.ID,
		t.CreatorWallet,
		t.Name,
		t.Symbol,
		t.Description,
		t.ImageURL,
		int64(t.Supply),
		int16(t.Decimals),
		t.MintAddress,
		t.MintAuthority,
		t.FreezeAuthority,
		t.MetadataURI,
		t.PaymentSignature,
		t.VerifiedMint,
		t.VerifiedFreeze,
		t.VerifiedMetadata,
		t.CreatedAt,
	)
	observability.RecordDBQuery("postgres", "insert_token", time.Since(start).Seconds(), err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// GetByID retrieves a token by ID. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, id)
	t, err := scanToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by id: %w", err)
	}
	return t, nil
}

// GetByMint retrieves a token by mint address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByMint(ctx context.Context, mint string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE mint_address = $1`

	row := s.pool.QueryRow(ctx, query, mint)
	t, err := scanToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by mint: %w", err)
	}
	return t, nil
}

// List retrieves up to limit tokens, newest first.
func (s *TokenStore) List(ctx context.Context, limit int) ([]*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens ORDER BY created_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	return collectTokens(rows)
}

// ListByCreator retrieves all tokens created by a wallet, newest first.
func (s *TokenStore) ListByCreator(ctx context.Context, wallet string) ([]*domain.Token, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM tokens
		WHERE creator_wallet = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("list tokens by creator: %w", err)
	}
	defer rows.Close()

	return collectTokens(rows)
}

// CountRecentByCreator counts tokens created by the wallet at or after
// since (inclusive). Used as the rate-limit lookup.
func (s *TokenStore) CountRecentByCreator(ctx context.Context, wallet string, since int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM tokens
		WHERE creator_wallet = $1 AND created_at >= $2
	`

	start := time.Now()
	var count int
	err := s.pool.QueryRow(ctx, query, wallet, since).Scan(&count)
	observability.RecordDBQuery("postgres", "count_recent", time.Since(start).Seconds(), err)
	if err != nil {
		return 0, fmt.Errorf("count recent tokens: %w", err)
	}
	return count, nil
}

// scanToken scans a single row into a Token.
func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	var supply int64
	var decimals int16

	err := row.Scan(
		&t.ID,
		&t.CreatorWallet,
		&t.Name,
		&t.Symbol,
		&t.Description,
		&t.ImageURL,
		&supply,
		&decimals,
		&t.MintAddress,
		&t.MintAuthority,
		&t.FreezeAuthority,
		&t.MetadataURI,
		&t.PaymentSignature,
		&t.VerifiedMint,
		&t.VerifiedFreeze,
		&t.VerifiedMetadata,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Supply = uint64(supply)
	t.Decimals = uint8(decimals)
	return &t, nil
}

func collectTokens(rows pgx.Rows) ([]*domain.Token, error) {
	var result []*domain.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return result, nil
}
