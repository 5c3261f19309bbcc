// Package main runs a single token creation from the command line and
// prints the result. Useful for devnet smoke tests without the HTTP layer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"solana-token-launchpad/internal/chain"
	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/launch"
	"solana-token-launchpad/internal/storage"
	"solana-token-launchpad/internal/storage/memory"
	"solana-token-launchpad/internal/storage/migrations"
	pgstore "solana-token-launchpad/internal/storage/postgres"
)

func main() {
	// Token parameters
	wallet := flag.String("wallet", "", "Creator wallet address (required)")
	name := flag.String("name", "", "Token name (required)")
	symbol := flag.String("symbol", "", "Token symbol (required)")
	description := flag.String("description", "", "Token description")
	imageURL := flag.String("image-url", "", "Token image URL; presence triggers metadata attach")
	supply := flag.Uint64("supply", 0, "Whole-token supply (required)")
	decimals := flag.Uint("decimals", 9, "Token decimals (0-9)")
	revokeMint := flag.Bool("revoke-mint", false, "Revoke mint authority after minting")
	revokeFreeze := flag.Bool("revoke-freeze", false, "Create without a freeze authority")
	revokeMetadata := flag.Bool("revoke-metadata", false, "Revoke metadata update authority")
	paymentSig := flag.String("payment-signature", "", "Fee transfer transaction signature (required)")

	// Chain
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint (empty = public devnet)")
	network := flag.String("network", "devnet", "Network label")
	feePayerKey := flag.String("fee-payer", os.Getenv("FEE_PAYER_KEYPAIR"), "Fee payer keypair: path or JSON (required)")

	// Storage
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage (record is discarded on exit)")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	logger := log.New(os.Stderr, "[launch] ", log.LstdFlags)

	if *wallet == "" || *name == "" || *symbol == "" || *supply == 0 || *paymentSig == "" {
		logger.Fatal("--wallet, --name, --symbol, --supply, and --payment-signature are required")
	}
	if *decimals > 9 {
		logger.Fatal("--decimals must be between 0 and 9")
	}
	if *feePayerKey == "" {
		logger.Fatal("--fee-payer is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory to discard the record)")
	}

	feePayer, err := chain.LoadFeePayer(*feePayerKey)
	if err != nil {
		logger.Fatalf("Failed to load fee payer: %v", err)
	}
	logger.Printf("Fee payer: %s", feePayer.Address())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling...", sig)
		cancel()
	}()

	tokens, cleanup, err := createTokenStore(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create store: %v", err)
	}
	defer cleanup()

	launcher := launch.New(launch.Options{
		Chain:      chain.NewClient(*rpcEndpoint, feePayer),
		TokenStore: tokens,
		Network:    *network,
		Observer: launch.StepObserverFunc(func(e domain.StepEvent) {
			logger.Printf("step %s: %s", e.Step, e.Status)
		}),
		Logger: logger,
	})

	result, err := launcher.Launch(ctx, domain.CreationRequest{
		WalletAddress:    *wallet,
		Name:             *name,
		Symbol:           *symbol,
		Description:      *description,
		ImageURL:         *imageURL,
		Supply:           *supply,
		Decimals:         uint8(*decimals),
		RevokeMint:       *revokeMint,
		RevokeFreeze:     *revokeFreeze,
		RevokeMetadata:   *revokeMetadata,
		PaymentSignature: *paymentSig,
	})
	if err != nil {
		logger.Fatalf("Creation failed: %v (%s)", err, launch.UserMessage(err))
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			logger.Fatalf("Failed to encode result: %v", err)
		}
		return
	}

	fmt.Printf("Token created on %s\n", *network)
	fmt.Printf("  Mint:           %s\n", result.MintAddress)
	fmt.Printf("  Holder account: %s\n", result.UserTokenAccount)
	if result.MetadataAddress != "" {
		fmt.Printf("  Metadata:       %s\n", result.MetadataAddress)
	}
	fmt.Printf("  Record ID:      %s\n", result.Token.ID)
	fmt.Printf("  Verified: mint=%t freeze=%t metadata=%t\n",
		result.Verification.Mint, result.Verification.Freeze, result.Verification.Metadata)
}

// createTokenStore builds the token store for the one-shot run.
func createTokenStore(ctx context.Context, postgresDSN string, useMemory bool) (storage.TokenStore, func(), error) {
	if useMemory {
		return memory.NewTokenStore(), func() {}, nil
	}
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return pgstore.NewTokenStore(pool), pool.Close, nil
}
