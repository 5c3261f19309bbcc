// Package launch orchestrates token creation end to end: validation,
// rate limiting, chain mutations with retry, on-chain verification, and
// persistence. The pipeline is strictly sequential; the five-step
// progress projection exists only for display.
package launch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"solana-token-launchpad/internal/chain"
	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/observability"
	"solana-token-launchpad/internal/retry"
	"solana-token-launchpad/internal/sanitize"
	"solana-token-launchpad/internal/storage"
)

// StepObserver receives one event per step transition, never per retry
// attempt. Transitions are monotonic.
type StepObserver interface {
	ObserveStep(e domain.StepEvent)
}

// StepObserverFunc adapts a function to StepObserver.
type StepObserverFunc func(e domain.StepEvent)

func (f StepObserverFunc) ObserveStep(e domain.StepEvent) { f(e) }

// Launcher runs the creation pipeline.
type Launcher struct {
	chain         chain.TokenChain
	tokens        storage.TokenStore
	events        storage.LaunchEventStore
	limiter       *RateLimiter
	network       string
	retry         retry.Options
	observer      StepObserver
	verifyPayment bool
	now           func() time.Time
	logger        *log.Logger
}

// Options for creating a Launcher.
type Options struct {
	// Required collaborators
	Chain      chain.TokenChain
	TokenStore storage.TokenStore

	// Optional analytics sink; nil disables launch events.
	LaunchEventStore storage.LaunchEventStore

	// Network label reported in results and responses, e.g. "devnet".
	Network string

	// Retry policy for chain steps. Zero value selects defaults.
	Retry retry.Options

	// Optional progress observer.
	Observer StepObserver

	// VerifyPayment enables on-chain verification of the fee transfer
	// signature. Off by default: the signature is then accepted as a
	// required request field only.
	VerifyPayment bool

	// RateLimitWindow overrides the 60s admission window. Zero keeps it.
	RateLimitWindow time.Duration

	Logger *log.Logger
}

// New creates a Launcher.
func New(opts Options) *Launcher {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[launcher] ", log.LstdFlags|log.Lshortfile)
	}
	return &Launcher{
		chain:         opts.Chain,
		tokens:        opts.TokenStore,
		events:        opts.LaunchEventStore,
		limiter:       NewRateLimiter(opts.TokenStore, opts.RateLimitWindow),
		network:       opts.Network,
		retry:         opts.Retry,
		observer:      opts.Observer,
		verifyPayment: opts.VerifyPayment,
		now:           time.Now,
		logger:        logger,
	}
}

// Result of a successful creation.
type Result struct {
	Token            *domain.Token
	MintAddress      string
	UserTokenAccount string
	MetadataAddress  string // empty when no metadata was attached
	Verification     domain.VerificationStatus
}

// Launch runs one creation. Free-text fields of req are raw caller input.
// On failure the returned error carries the taxonomy: *sanitize.ValidationError,
// ErrRateLimited, a tagged *chain.Error, or *DatabaseError.
func (l *Launcher) Launch(ctx context.Context, req domain.CreationRequest) (*Result, error) {
	started := l.now()

	clean, err := sanitize.CleanRequest(req)
	if err != nil {
		observability.RecordCreation("validation_error", time.Since(started).Seconds())
		return nil, err
	}
	wallet := clean.WalletAddress

	release, err := l.limiter.Acquire(ctx, wallet)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			observability.RecordRateLimited()
			observability.RecordCreation("rate_limited", time.Since(started).Seconds())
		}
		return nil, err
	}
	// Held until the record is inserted so that a concurrent request from
	// the same wallet observes it.
	defer release()

	for _, step := range domain.Steps() {
		l.emit(wallet, step, domain.StepPending)
	}

	// Payment
	if err := l.runPayment(ctx, wallet, clean); err != nil {
		observability.RecordCreation("chain_error", time.Since(started).Seconds())
		return nil, err
	}

	// Mint: liveness probe, create mint, holder account, mint supply.
	mint, account, err := l.runMint(ctx, wallet, clean)
	if err != nil {
		observability.RecordCreation("chain_error", time.Since(started).Seconds())
		return nil, err
	}

	// Metadata: attach only when an image is present; failures are logged
	// and the pipeline continues.
	metadataAddr, metadataAttached := l.runMetadata(ctx, wallet, clean, mint)

	// Revokes
	metadataRevoked, err := l.runRevokes(ctx, wallet, clean, mint, metadataAttached)
	if err != nil {
		observability.RecordCreation("chain_error", time.Since(started).Seconds())
		return nil, err
	}

	// Verification readback and persistence.
	result, err := l.runVerifyAndPersist(ctx, wallet, clean, mint, account, metadataAddr, metadataAttached, metadataRevoked)
	if err != nil {
		observability.RecordCreation(outcomeOf(err), time.Since(started).Seconds())
		return nil, err
	}

	l.recordLaunchEvent(ctx, result.Token, clean, time.Since(started))
	observability.RecordCreation("success", time.Since(started).Seconds())
	observability.DefaultMetrics.LastSuccessfulCreation.SetToCurrentTime()
	l.logger.Printf("created token %s (mint %s) for wallet %s in %s",
		result.Token.Symbol, mint, wallet, time.Since(started).Round(time.Millisecond))
	return result, nil
}

func (l *Launcher) runPayment(ctx context.Context, wallet string, req domain.CreationRequest) error {
	start := time.Now()
	l.emit(wallet, domain.StepPayment, domain.StepLoading)

	var err error
	if l.verifyPayment {
		err = retry.DoVoid(ctx, l.stepRetry(domain.StepPayment), func(ctx context.Context) error {
			return l.chain.VerifyPayment(ctx, req.PaymentSignature)
		})
	}
	observability.RecordStep(string(domain.StepPayment), time.Since(start).Seconds(), err)
	if err != nil {
		l.emit(wallet, domain.StepPayment, domain.StepError)
		return err
	}
	l.emit(wallet, domain.StepPayment, domain.StepCompleted)
	return nil
}

func (l *Launcher) runMint(ctx context.Context, wallet string, req domain.CreationRequest) (mint, account string, err error) {
	start := time.Now()
	l.emit(wallet, domain.StepMint, domain.StepLoading)
	defer func() {
		observability.RecordStep(string(domain.StepMint), time.Since(start).Seconds(), err)
		if err != nil {
			l.emit(wallet, domain.StepMint, domain.StepError)
		} else {
			l.emit(wallet, domain.StepMint, domain.StepCompleted)
		}
	}()

	_, err = retry.Do(ctx, l.stepRetry(domain.StepMint), func(ctx context.Context) (string, error) {
		return l.chain.LatestBlockhash(ctx)
	})
	if err != nil {
		return "", "", err
	}

	// The freeze authority is fixed at mint creation and cannot change
	// later: nil iff the caller asked for it to be revoked.
	var freezeAuthority *string
	if !req.RevokeFreeze {
		freezeAuthority = &wallet
	}
	mint, err = retry.Do(ctx, l.stepRetry(domain.StepMint), func(ctx context.Context) (string, error) {
		return l.chain.CreateMint(ctx, req.Decimals, freezeAuthority)
	})
	if err != nil {
		return "", "", err
	}

	account, err = retry.Do(ctx, l.stepRetry(domain.StepMint), func(ctx context.Context) (string, error) {
		return l.chain.CreateHolderAccount(ctx, mint, wallet)
	})
	if err != nil {
		return "", "", err
	}

	baseUnits := req.Supply * pow10(req.Decimals) // overflow rejected in CleanRequest
	err = retry.DoVoid(ctx, l.stepRetry(domain.StepMint), func(ctx context.Context) error {
		return l.chain.MintSupply(ctx, mint, account, baseUnits)
	})
	if err != nil {
		return "", "", err
	}
	return mint, account, nil
}

func (l *Launcher) runMetadata(ctx context.Context, wallet string, req domain.CreationRequest, mint string) (addr string, attached bool) {
	start := time.Now()
	l.emit(wallet, domain.StepMetadata, domain.StepLoading)

	if req.ImageURL == "" {
		observability.RecordStep(string(domain.StepMetadata), time.Since(start).Seconds(), nil)
		l.emit(wallet, domain.StepMetadata, domain.StepCompleted)
		return "", false
	}

	addr, err := retry.Do(ctx, l.stepRetry(domain.StepMetadata), func(ctx context.Context) (string, error) {
		return l.chain.AttachMetadata(ctx, mint, chain.Metadata{
			Name:   req.Name,
			Symbol: req.Symbol,
			URI:    req.ImageURL,
		})
	})
	observability.RecordStep(string(domain.StepMetadata), time.Since(start).Seconds(), err)
	if err != nil {
		l.logger.Printf("metadata attach failed for mint %s, continuing without metadata: %v", mint, err)
		l.emit(wallet, domain.StepMetadata, domain.StepError)
		return "", false
	}
	l.emit(wallet, domain.StepMetadata, domain.StepCompleted)
	return addr, true
}

func (l *Launcher) runRevokes(ctx context.Context, wallet string, req domain.CreationRequest, mint string, metadataAttached bool) (metadataRevoked bool, err error) {
	start := time.Now()
	l.emit(wallet, domain.StepRevokes, domain.StepLoading)
	defer func() {
		observability.RecordStep(string(domain.StepRevokes), time.Since(start).Seconds(), err)
		if err != nil {
			l.emit(wallet, domain.StepRevokes, domain.StepError)
		} else {
			l.emit(wallet, domain.StepRevokes, domain.StepCompleted)
		}
	}()

	// The service key held interim mint authority for MintSupply; it is
	// always handed off here, to the user or to nobody.
	var mintAuthority *string
	if !req.RevokeMint {
		mintAuthority = &wallet
	}
	err = retry.DoVoid(ctx, l.stepRetry(domain.StepRevokes), func(ctx context.Context) error {
		return l.chain.FinalizeMintAuthority(ctx, mint, mintAuthority)
	})
	if err != nil {
		return false, err
	}

	if metadataAttached {
		var metaAuthority *string
		if !req.RevokeMetadata {
			metaAuthority = &wallet
		}
		metaErr := retry.DoVoid(ctx, l.stepRetry(domain.StepRevokes), func(ctx context.Context) error {
			return l.chain.FinalizeMetadataAuthority(ctx, mint, metaAuthority)
		})
		if metaErr != nil {
			// Metadata authority handoff is non-fatal, same as attach.
			l.logger.Printf("metadata authority handoff failed for mint %s: %v", mint, metaErr)
		} else {
			metadataRevoked = req.RevokeMetadata
		}
	}
	return metadataRevoked, nil
}

func (l *Launcher) runVerifyAndPersist(ctx context.Context, wallet string, req domain.CreationRequest, mint, account, metadataAddr string, metadataAttached, metadataRevoked bool) (result *Result, err error) {
	start := time.Now()
	l.emit(wallet, domain.StepVerification, domain.StepLoading)
	defer func() {
		observability.RecordStep(string(domain.StepVerification), time.Since(start).Seconds(), err)
		if err != nil {
			l.emit(wallet, domain.StepVerification, domain.StepError)
		} else {
			l.emit(wallet, domain.StepVerification, domain.StepCompleted)
		}
	}()

	info, err := retry.Do(ctx, l.stepRetry(domain.StepVerification), func(ctx context.Context) (*chain.MintInfo, error) {
		return l.chain.ReadMint(ctx, mint)
	})
	if err != nil {
		return nil, err
	}

	// A flag is true when the revocation succeeded or was not requested.
	verification := domain.VerificationStatus{
		Mint:     !req.RevokeMint || info.MintAuthority == nil,
		Freeze:   !req.RevokeFreeze || info.FreezeAuthority == nil,
		Metadata: !req.RevokeMetadata || metadataRevoked,
	}

	token := &domain.Token{
		ID:               uuid.NewString(),
		CreatorWallet:    wallet,
		Name:             req.Name,
		Symbol:           req.Symbol,
		Description:      optional(req.Description),
		ImageURL:         optional(req.ImageURL),
		Supply:           req.Supply,
		Decimals:         req.Decimals,
		MintAddress:      mint,
		MintAuthority:    info.MintAuthority,
		FreezeAuthority:  info.FreezeAuthority,
		MetadataURI:      metadataURI(req, metadataAttached),
		PaymentSignature: req.PaymentSignature,
		VerifiedMint:     verification.Mint,
		VerifiedFreeze:   verification.Freeze,
		VerifiedMetadata: verification.Metadata,
		CreatedAt:        l.now().UnixMilli(),
	}

	if err := l.tokens.Insert(ctx, token); err != nil {
		// The mint exists on-chain; nothing is rolled back.
		l.logger.Printf("persistence failed after chain mutation, mint %s is orphaned: %v", mint, err)
		return nil, &DatabaseError{Err: fmt.Errorf("insert token record: %w", err)}
	}

	return &Result{
		Token:            token,
		MintAddress:      mint,
		UserTokenAccount: account,
		MetadataAddress:  metadataAddr,
		Verification:     verification,
	}, nil
}

func (l *Launcher) recordLaunchEvent(ctx context.Context, token *domain.Token, req domain.CreationRequest, elapsed time.Duration) {
	if l.events == nil {
		return
	}
	event := &domain.LaunchEvent{
		Wallet:          token.CreatorWallet,
		Mint:            token.MintAddress,
		Symbol:          token.Symbol,
		Supply:          token.Supply,
		Decimals:        token.Decimals,
		RevokedMint:     req.RevokeMint,
		RevokedFreeze:   req.RevokeFreeze,
		RevokedMetadata: req.RevokeMetadata,
		DurationMs:      elapsed.Milliseconds(),
		CreatedAt:       l.now().UnixMilli(),
	}
	if err := l.events.Insert(ctx, event); err != nil {
		l.logger.Printf("launch event write failed (non-fatal): %v", err)
	}
}

func (l *Launcher) stepRetry(step domain.CreationStep) retry.Options {
	opts := l.retry
	opts.Retryable = chain.IsRetryable
	opts.OnRetry = func(attempt int, err error) {
		observability.RecordRetry(string(step))
		l.logger.Printf("step %s attempt %d after: %v", step, attempt, err)
	}
	return opts
}

func (l *Launcher) emit(wallet string, step domain.CreationStep, status domain.StepStatus) {
	if l.observer == nil {
		return
	}
	l.observer.ObserveStep(domain.StepEvent{
		Wallet: wallet,
		Step:   step,
		Status: status,
		At:     l.now().UnixMilli(),
	})
}

func outcomeOf(err error) string {
	var derr *DatabaseError
	if errors.As(err, &derr) {
		return "database_error"
	}
	return "chain_error"
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func metadataURI(req domain.CreationRequest, attached bool) *string {
	if !attached {
		return nil
	}
	return optional(req.ImageURL)
}

func pow10(n uint8) uint64 {
	result := uint64(1)
	for i := uint8(0); i < n; i++ {
		result *= 10
	}
	return result
}
