package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-launchpad/internal/chain/stub"
	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/launch"
	"solana-token-launchpad/internal/retry"
	"solana-token-launchpad/internal/storage/memory"
)

// testWallet is the base58 encoding of 32 zero bytes, a valid curve point.
const testWallet = "11111111111111111111111111111111"

type testEnv struct {
	server *Server
	chain  *stub.Chain
	tokens *memory.TokenStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sc := stub.New()
	tokens := memory.NewTokenStore()
	comments := memory.NewCommentStore(tokens)

	launcher := launch.New(launch.Options{
		Chain:      sc,
		TokenStore: tokens,
		Network:    "devnet",
		Retry: retry.Options{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			BackoffMult:  2.0,
		},
	})

	server := New(Options{
		Launcher:     launcher,
		TokenStore:   tokens,
		CommentStore: comments,
		Chain:        sc,
		Network:      "devnet",
	})
	return &testEnv{server: server, chain: sc, tokens: tokens}
}

func createBody(wallet string) []byte {
	body, _ := json.Marshal(CreateTokenRequest{
		WalletAddress: wallet,
		TokenData: TokenData{
			Name:           "DogeCoin",
			Symbol:         "DOGE",
			Supply:         1_000_000,
			Decimals:       9,
			RevokeMint:     true,
			RevokeFreeze:   true,
			RevokeMetadata: false,
		},
		TransactionSignature: "PaySig001",
	})
	return body
}

func TestCreateToken_Success(t *testing.T) {
	env := newTestEnv(t)
	router := env.server.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/create-token", bytes.NewReader(createBody(testWallet)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp CreateTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "devnet", resp.Network)
	require.NotNil(t, resp.Token)
	assert.NotEmpty(t, resp.Token.MintAddress)
	assert.NotEmpty(t, resp.Token.UserTokenAccount)
	assert.Nil(t, resp.Token.MintAuthority)
	assert.Nil(t, resp.Token.FreezeAuthority)
	assert.True(t, resp.Token.VerificationStatus.Mint)
	assert.True(t, resp.Token.VerificationStatus.Freeze)
	assert.True(t, resp.Token.VerificationStatus.Metadata)
}

func TestCreateToken_ValidationFailure(t *testing.T) {
	env := newTestEnv(t)
	router := env.server.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/create-token", bytes.NewReader(createBody("not-a-wallet")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp CreateTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "devnet", resp.Network)
	assert.Contains(t, resp.Error, "walletAddress")
	assert.NotEmpty(t, resp.OriginalError)
	assert.Nil(t, resp.Token)
}

func TestCreateToken_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	router := env.server.Router()

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/create-token", bytes.NewReader(createBody(testWallet))))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/create-token", bytes.NewReader(createBody(testWallet))))
	require.Equal(t, http.StatusBadRequest, second.Code)

	var resp CreateTokenResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Rate limit exceeded: Only 1 token per wallet per minute allowed", resp.Error)
}

func TestCreateToken_MalformedBody(t *testing.T) {
	env := newTestEnv(t)
	router := env.server.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/create-token", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp CreateTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	router := env.server.Router()

	req := httptest.NewRequest(http.MethodOptions, "/api/create-token", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "content-type")
}

func TestListTokens_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	router := env.server.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/create-token", bytes.NewReader(createBody(testWallet))))
	require.Equal(t, http.StatusOK, rec.Code)

	// An older record seeded directly; the launchpad's own creation must
	// list ahead of it.
	require.NoError(t, env.tokens.Insert(context.Background(), &domain.Token{
		ID:               "older",
		CreatorWallet:    "SomeOtherWallet",
		Name:             "Older",
		Symbol:           "OLD",
		Supply:           1,
		Decimals:         0,
		MintAddress:      "OlderMint",
		PaymentSignature: "OlderSig",
		CreatedAt:        time.Now().Add(-time.Hour).UnixMilli(),
	}))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tokens", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool            `json:"success"`
		Tokens  []TokenResponse `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Tokens, 2)
	assert.GreaterOrEqual(t, resp.Tokens[0].CreatedAt, resp.Tokens[1].CreatedAt)
}

func TestGetToken_NotFound(t *testing.T) {
	env := newTestEnv(t)
	router := env.server.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tokens/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComments_PostAndList(t *testing.T) {
	env := newTestEnv(t)
	router := env.server.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/create-token", bytes.NewReader(createBody(testWallet))))
	require.Equal(t, http.StatusOK, rec.Code)

	var created CreateTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	tokenID := created.Token.ID

	body, _ := json.Marshal(postCommentRequest{
		WalletAddress: testWallet,
		Content:       "  <script>x</script>to the moon  ",
	})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/tokens/%s/comments", tokenID), bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/tokens/%s/comments", tokenID), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success  bool              `json:"success"`
		Comments []CommentResponse `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "xto the moon", resp.Comments[0].Content)
	assert.Equal(t, testWallet, resp.Comments[0].WalletAddress)
}

func TestComments_InvalidWallet(t *testing.T) {
	env := newTestEnv(t)
	router := env.server.Router()

	body, _ := json.Marshal(postCommentRequest{WalletAddress: "bogus", Content: "hi"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tokens/any/comments", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComments_UnknownToken(t *testing.T) {
	env := newTestEnv(t)
	router := env.server.Router()

	body, _ := json.Marshal(postCommentRequest{WalletAddress: testWallet, Content: "hi"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tokens/ghost/comments", bytes.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBalance(t *testing.T) {
	env := newTestEnv(t)
	env.chain.Balances[testWallet] = 2_500_000_000
	router := env.server.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/wallet/"+testWallet+"/balance", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, uint64(2_500_000_000), resp.Lamports)
	assert.InDelta(t, 2.5, resp.SOL, 1e-9)
}

func TestFees(t *testing.T) {
	env := newTestEnv(t)
	router := env.server.Router()

	tests := []struct {
		query string
		total float64
	}{
		{"", 0.15},
		{"?revokeMint=true", 0.20},
		{"?revokeMint=true&revokeFreeze=true", 0.25},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fees"+tt.query, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp FeesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.InDelta(t, tt.total, resp.Total, 1e-9, "query %q", tt.query)
		assert.Equal(t, "SOL", resp.Currency)
	}
}

func TestHealthAndStatus(t *testing.T) {
	env := newTestEnv(t)
	router := env.server.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "running", status.Status)
	assert.Equal(t, "devnet", status.Network)
}
