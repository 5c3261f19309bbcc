// Package httpapi exposes the launchpad over HTTP: token creation,
// the public catalog, comments, wallet balance, fee quotes, and a
// WebSocket progress stream.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"solana-token-launchpad/internal/chain"
	"solana-token-launchpad/internal/launch"
	"solana-token-launchpad/internal/observability"
	"solana-token-launchpad/internal/storage"
)

// Launch fee schedule in SOL, paid by the caller before invoking
// create-token.
const (
	BaseFeeSOL       = 0.15
	RevocationFeeSOL = 0.05
)

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	launcher *launch.Launcher
	tokens   storage.TokenStore
	comments storage.CommentStore
	chain    chain.TokenChain
	progress *ProgressHub
	network  string
	started  time.Time
	logger   *log.Logger
}

// Options for creating a Server.
type Options struct {
	Launcher     *launch.Launcher
	TokenStore   storage.TokenStore
	CommentStore storage.CommentStore
	Chain        chain.TokenChain

	// Progress is optional; nil disables /ws/progress.
	Progress *ProgressHub

	// Network label echoed in responses, e.g. "devnet".
	Network string

	Logger *log.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[httpapi] ", log.LstdFlags|log.Lshortfile)
	}
	return &Server{
		launcher: opts.Launcher,
		tokens:   opts.TokenStore,
		comments: opts.CommentStore,
		chain:    opts.Chain,
		progress: opts.Progress,
		network:  opts.Network,
		started:  time.Now(),
		logger:   logger,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Use(metricsMiddleware)
		r.Post("/create-token", s.handleCreateToken)
		r.Get("/tokens", s.handleListTokens)
		r.Get("/tokens/{id}", s.handleGetToken)
		r.Get("/tokens/{id}/comments", s.handleListComments)
		r.Post("/tokens/{id}/comments", s.handlePostComment)
		r.Get("/wallet/{address}/balance", s.handleBalance)
		r.Get("/fees", s.handleFees)
	})

	if s.progress != nil {
		r.Get("/ws/progress", s.progress.handleWS)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", observability.Handler())

	return r
}

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	Status  string `json:"status"`
	Network string `json:"network"`
	Uptime  string `json:"uptime"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "running",
		Network: s.network,
		Uptime:  time.Since(s.started).String(),
	})
}

// FeesResponse is the fee quote for a prospective creation.
type FeesResponse struct {
	BaseFee       float64 `json:"baseFee"`
	RevocationFee float64 `json:"revocationFee"`
	Total         float64 `json:"total"`
	Currency      string  `json:"currency"`
}

func (s *Server) handleFees(w http.ResponseWriter, r *http.Request) {
	total := BaseFeeSOL
	if r.URL.Query().Get("revokeMint") == "true" {
		total += RevocationFeeSOL
	}
	if r.URL.Query().Get("revokeFreeze") == "true" {
		total += RevocationFeeSOL
	}
	writeJSON(w, http.StatusOK, FeesResponse{
		BaseFee:       BaseFeeSOL,
		RevocationFee: RevocationFeeSOL,
		Total:         total,
		Currency:      "SOL",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		observability.RecordHTTPRequest(route, strconv.Itoa(rec.status), time.Since(start).Seconds())
	})
}
