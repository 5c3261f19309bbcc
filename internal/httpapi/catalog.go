package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/sanitize"
	"solana-token-launchpad/internal/storage"
)

const lamportsPerSOL = 1_000_000_000

// defaultCatalogLimit bounds unpaginated catalog listings.
const defaultCatalogLimit = 50

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	limit := defaultCatalogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	var (
		tokens []*domain.Token
		err    error
	)
	if creator := r.URL.Query().Get("creator"); creator != "" {
		tokens, err = s.tokens.ListByCreator(r.Context(), creator)
	} else {
		tokens, err = s.tokens.List(r.Context(), limit)
	}
	if err != nil {
		s.logger.Printf("list tokens failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load tokens")
		return
	}

	out := make([]TokenResponse, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, toTokenResponse(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "tokens": out})
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	token, err := s.tokens.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Token not found")
			return
		}
		s.logger.Printf("get token %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to load token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": toTokenResponse(token)})
}

// CommentResponse is a comment in wire form.
type CommentResponse struct {
	ID            string `json:"id"`
	TokenID       string `json:"tokenId"`
	WalletAddress string `json:"walletAddress"`
	Content       string `json:"content"`
	CreatedAt     int64  `json:"createdAt"`
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.tokens.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Token not found")
			return
		}
		s.logger.Printf("get token %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to load token")
		return
	}

	comments, err := s.comments.ListByToken(r.Context(), id)
	if err != nil {
		s.logger.Printf("list comments for %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to load comments")
		return
	}

	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, CommentResponse{
			ID:            c.ID,
			TokenID:       c.TokenID,
			WalletAddress: c.WalletAddress,
			Content:       c.Content,
			CreatedAt:     c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "comments": out})
}

type postCommentRequest struct {
	WalletAddress string `json:"walletAddress"`
	Content       string `json:"content"`
}

func (s *Server) handlePostComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req postCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !sanitize.ValidWalletAddress(req.WalletAddress) {
		writeError(w, http.StatusBadRequest, "invalid walletAddress: not a valid base58 ed25519 public key")
		return
	}
	content := sanitize.Comment(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "invalid content: missing or empty after sanitization")
		return
	}

	comment := &domain.Comment{
		ID:            uuid.NewString(),
		TokenID:       id,
		WalletAddress: req.WalletAddress,
		Content:       content,
		CreatedAt:     time.Now().UnixMilli(),
	}
	if err := s.comments.Insert(r.Context(), comment); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Token not found")
			return
		}
		s.logger.Printf("insert comment for %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to save comment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"comment": CommentResponse{
			ID:            comment.ID,
			TokenID:       comment.TokenID,
			WalletAddress: comment.WalletAddress,
			Content:       comment.Content,
			CreatedAt:     comment.CreatedAt,
		},
	})
}

// BalanceResponse reports a wallet balance in both units.
type BalanceResponse struct {
	Success       bool    `json:"success"`
	WalletAddress string  `json:"walletAddress"`
	Lamports      uint64  `json:"lamports"`
	SOL           float64 `json:"sol"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !sanitize.ValidWalletAddress(address) {
		writeError(w, http.StatusBadRequest, "invalid address: not a valid base58 ed25519 public key")
		return
	}

	lamports, err := s.chain.Balance(r.Context(), address)
	if err != nil {
		s.logger.Printf("balance lookup for %s failed: %v", address, err)
		writeError(w, http.StatusBadGateway, "Failed to fetch balance")
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{
		Success:       true,
		WalletAddress: address,
		Lamports:      lamports,
		SOL:           float64(lamports) / lamportsPerSOL,
	})
}
