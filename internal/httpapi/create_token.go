package httpapi

import (
	"encoding/json"
	"net/http"

	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/launch"
)

// CreateTokenRequest is the POST /api/create-token body.
type CreateTokenRequest struct {
	WalletAddress        string    `json:"walletAddress"`
	TokenData            TokenData `json:"tokenData"`
	TransactionSignature string    `json:"transactionSignature"`
}

// TokenData is the token portion of a creation request.
type TokenData struct {
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	Description    string `json:"description,omitempty"`
	ImageURL       string `json:"imageUrl,omitempty"`
	Supply         uint64 `json:"supply"`
	Decimals       uint8  `json:"decimals"`
	RevokeMint     bool   `json:"revokeMint"`
	RevokeFreeze   bool   `json:"revokeFreeze"`
	RevokeMetadata bool   `json:"revokeMetadata"`
}

// TokenResponse is a catalog record in wire form.
type TokenResponse struct {
	ID               string  `json:"id"`
	CreatorWallet    string  `json:"creatorWallet"`
	Name             string  `json:"name"`
	Symbol           string  `json:"symbol"`
	Description      *string `json:"description"`
	ImageURL         *string `json:"imageUrl"`
	Supply           uint64  `json:"supply"`
	Decimals         uint8   `json:"decimals"`
	MintAddress      string  `json:"mintAddress"`
	MintAuthority    *string `json:"mintAuthority"`
	FreezeAuthority  *string `json:"freezeAuthority"`
	MetadataURI      *string `json:"metadataUri"`
	VerifiedMint     bool    `json:"verifiedMint"`
	VerifiedFreeze   bool    `json:"verifiedFreeze"`
	VerifiedMetadata bool    `json:"verifiedMetadata"`
	CreatedAt        int64   `json:"createdAt"`
}

// CreatedTokenResponse extends TokenResponse with creation-only fields.
type CreatedTokenResponse struct {
	TokenResponse
	UserTokenAccount   string             `json:"userTokenAccount"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
}

// VerificationStatus mirrors domain.VerificationStatus on the wire.
type VerificationStatus struct {
	Mint     bool `json:"mint"`
	Freeze   bool `json:"freeze"`
	Metadata bool `json:"metadata"`
}

// CreateTokenResponse is the create-token envelope. Callers branch on
// Success, not on HTTP status codes.
type CreateTokenResponse struct {
	Success       bool                  `json:"success"`
	Network       string                `json:"network"`
	Token         *CreatedTokenResponse `json:"token,omitempty"`
	Error         string                `json:"error,omitempty"`
	OriginalError string                `json:"originalError,omitempty"`
}

func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var req CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CreateTokenResponse{
			Success:       false,
			Network:       s.network,
			Error:         "Invalid request body",
			OriginalError: err.Error(),
		})
		return
	}

	result, err := s.launcher.Launch(r.Context(), domain.CreationRequest{
		WalletAddress:    req.WalletAddress,
		Name:             req.TokenData.Name,
		Symbol:           req.TokenData.Symbol,
		Description:      req.TokenData.Description,
		ImageURL:         req.TokenData.ImageURL,
		Supply:           req.TokenData.Supply,
		Decimals:         req.TokenData.Decimals,
		RevokeMint:       req.TokenData.RevokeMint,
		RevokeFreeze:     req.TokenData.RevokeFreeze,
		RevokeMetadata:   req.TokenData.RevokeMetadata,
		PaymentSignature: req.TransactionSignature,
	})
	if err != nil {
		s.logger.Printf("token creation failed for wallet %s: %v", req.WalletAddress, err)
		writeJSON(w, http.StatusBadRequest, CreateTokenResponse{
			Success:       false,
			Network:       s.network,
			Error:         launch.UserMessage(err),
			OriginalError: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, CreateTokenResponse{
		Success: true,
		Network: s.network,
		Token: &CreatedTokenResponse{
			TokenResponse:    toTokenResponse(result.Token),
			UserTokenAccount: result.UserTokenAccount,
			VerificationStatus: VerificationStatus{
				Mint:     result.Verification.Mint,
				Freeze:   result.Verification.Freeze,
				Metadata: result.Verification.Metadata,
			},
		},
	})
}

func toTokenResponse(t *domain.Token) TokenResponse {
	return TokenResponse{
		ID:               t.ID,
		CreatorWallet:    t.CreatorWallet,
		Name:             t.Name,
		Symbol:           t.Symbol,
		Description:      t.Description,
		ImageURL:         t.ImageURL,
		Supply:           t.Supply,
		Decimals:         t.Decimals,
		MintAddress:      t.MintAddress,
		MintAuthority:    t.MintAuthority,
		FreezeAuthority:  t.FreezeAuthority,
		MetadataURI:      t.MetadataURI,
		VerifiedMint:     t.VerifiedMint,
		VerifiedFreeze:   t.VerifiedFreeze,
		VerifiedMetadata: t.VerifiedMetadata,
		CreatedAt:        t.CreatedAt,
	}
}
