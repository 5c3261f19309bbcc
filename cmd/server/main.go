// Package main runs the token launchpad HTTP service: the creation
// endpoint, the public catalog, comments, balance and fee lookups, the
// WebSocket progress stream, and health/status/metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-token-launchpad/internal/chain"
	"solana-token-launchpad/internal/httpapi"
	"solana-token-launchpad/internal/launch"
	"solana-token-launchpad/internal/storage"
	chstore "solana-token-launchpad/internal/storage/clickhouse"
	"solana-token-launchpad/internal/storage/memory"
	"solana-token-launchpad/internal/storage/migrations"
	pgstore "solana-token-launchpad/internal/storage/postgres"
)

// stores holds the storage implementations behind the service.
type stores struct {
	tokens   storage.TokenStore
	comments storage.CommentStore
	events   storage.LaunchEventStore // nil when analytics are disabled
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("HTTP_ADDR", ":8080"), "HTTP listen address")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint (empty = public devnet)")
	network := flag.String("network", envOr("SOLANA_NETWORK", "devnet"), "Network label reported in responses")
	feePayerKey := flag.String("fee-payer", os.Getenv("FEE_PAYER_KEYPAIR"), "Fee payer keypair: path to a Solana CLI JSON file or the JSON itself")
	feeWallet := flag.String("fee-wallet", os.Getenv("FEE_WALLET_ADDRESS"), "Fee collection wallet address for payment verification")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (empty disables launch analytics)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	verifyPayment := flag.Bool("verify-payment", false, "Verify the fee transfer transaction on-chain before creating")
	rateLimitWindow := flag.Duration("rate-limit-window", launch.DefaultRateLimitWindow, "Per-wallet creation admission window")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}
	if *verifyPayment && *feeWallet == "" {
		logger.Fatal("--fee-wallet is required with --verify-payment")
	}

	feePayer, err := loadFeePayer(*feePayerKey, logger)
	if err != nil {
		logger.Fatalf("Failed to load fee payer: %v", err)
	}
	logger.Printf("Fee payer: %s", feePayer.Address())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	tokenChain := chain.NewClient(*rpcEndpoint, feePayer, chain.WithFeeWallet(*feeWallet))

	progress := httpapi.NewProgressHub(logger)

	launcher := launch.New(launch.Options{
		Chain:            tokenChain,
		TokenStore:       st.tokens,
		LaunchEventStore: st.events,
		Network:          *network,
		Observer:         progress,
		VerifyPayment:    *verifyPayment,
		RateLimitWindow:  *rateLimitWindow,
	})

	api := httpapi.New(httpapi.Options{
		Launcher:     launcher,
		TokenStore:   st.tokens,
		CommentStore: st.comments,
		Chain:        tokenChain,
		Progress:     progress,
		Network:      *network,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:    *addr,
		Handler: api.Router(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		go func() {
			// Second signal forces immediate exit.
			sig := <-sigCh
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		}()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Graceful shutdown failed: %v", err)
		}
		cancel()
	}()

	logger.Printf("Serving on %s (network %s)", *addr, *network)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// loadFeePayer loads the configured keypair, or generates an ephemeral one
// for local development when none is configured.
func loadFeePayer(pathOrJSON string, logger *log.Logger) (*chain.FeePayer, error) {
	if pathOrJSON == "" {
		logger.Println("WARNING: no --fee-payer configured, using an ephemeral unfunded keypair")
		return chain.NewEphemeralFeePayer(), nil
	}
	return chain.LoadFeePayer(pathOrJSON)
}

// createStores builds the storage layer and applies migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (*stores, func(), error) {
	if useMemory {
		tokens := memory.NewTokenStore()
		return &stores{
			tokens:   tokens,
			comments: memory.NewCommentStore(tokens),
			events:   memory.NewLaunchEventStore(),
		}, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
	}

	st := &stores{
		tokens:   pgstore.NewTokenStore(pool),
		comments: pgstore.NewCommentStore(pool),
	}

	// ClickHouse analytics are optional.
	var chConn *chstore.Conn
	if clickhouseDSN != "" {
		chConn, err = migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("apply clickhouse migrations: %w", err)
		}
		st.events = chstore.NewLaunchEventStore(chConn)
	} else {
		logger.Println("ClickHouse DSN not set, launch analytics disabled")
	}

	cleanup := func() {
		if chConn != nil {
			chConn.Close()
		}
		pool.Close()
	}
	return st, cleanup, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
