package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-launchpad/internal/domain"
)

// A real devnet-style wallet address (the system program ID is a valid
// 32-byte base58 string but off-curve keys must be rejected, so tests use
// a known curve point: the all-zeros key decodes to the identity point).
const testWallet = "11111111111111111111111111111111"

func validRequest() domain.CreationRequest {
	return domain.CreationRequest{
		WalletAddress:    testWallet,
		Name:             "DogeCoin",
		Symbol:           "DOGE",
		Supply:           1000000000,
		Decimals:         9,
		PaymentSignature: "sig123",
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"simple tag", "<b>bold</b>", "bold"},
		{"unclosed tag", "a<script src=x", "a<script src=x"},
		{"nested brackets", "<<b>>evil<</b>>", "evil"},
		{"whitespace trimmed", "  spaced  ", "spaced"},
		{"tag only", "<img src=x onerror=alert(1)>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripTags(tt.input)
			assert.Equal(t, tt.want, got)

			// Idempotence: sanitize(sanitize(x)) == sanitize(x)
			assert.Equal(t, got, StripTags(got))
		})
	}
}

func TestStripTags_NoTagSubstrings(t *testing.T) {
	inputs := []string{
		"<a><b><c>",
		"x<<<y>>>z",
		"<div class=\"x\">text</div>",
	}

	for _, in := range inputs {
		out := StripTags(in)
		assert.NotRegexp(t, `<[^>]*>`, out, "input %q", in)
	}
}

func TestSymbol(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"do g3!", "DOG3"},
		{"DOGE", "DOGE"},
		{"$pepe$", "PEPE"},
		{"___", ""},
		{"a b c 1 2 3", "ABC123"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Symbol(tt.input), "input %q", tt.input)
	}
}

func TestValidWalletAddress(t *testing.T) {
	assert.True(t, ValidWalletAddress(testWallet))

	assert.False(t, ValidWalletAddress(""))
	assert.False(t, ValidWalletAddress("not-base58-0OIl"))
	assert.False(t, ValidWalletAddress("abc")) // too short
}

func TestCleanRequest_Valid(t *testing.T) {
	req, err := CleanRequest(validRequest())
	require.NoError(t, err)
	assert.Equal(t, "DogeCoin", req.Name)
	assert.Equal(t, "DOGE", req.Symbol)
}

func TestCleanRequest_SanitizesFields(t *testing.T) {
	in := validRequest()
	in.Name = "<b>Doge</b>Coin"
	in.Symbol = "do ge!"
	in.Description = "<script>alert(1)</script>to the moon"

	req, err := CleanRequest(in)
	require.NoError(t, err)
	assert.Equal(t, "DogeCoin", req.Name)
	assert.Equal(t, "DOGE", req.Symbol)
	assert.Equal(t, "alert(1)to the moon", req.Description)
}

func TestCleanRequest_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.CreationRequest)
		field  string
	}{
		{"missing wallet", func(r *domain.CreationRequest) { r.WalletAddress = "" }, "walletAddress"},
		{"bad wallet", func(r *domain.CreationRequest) { r.WalletAddress = "xyz" }, "walletAddress"},
		{"missing name", func(r *domain.CreationRequest) { r.Name = "" }, "name"},
		{"name empty after strip", func(r *domain.CreationRequest) { r.Name = "<br>" }, "name"},
		{"missing symbol", func(r *domain.CreationRequest) { r.Symbol = "" }, "symbol"},
		{"symbol empty after filter", func(r *domain.CreationRequest) { r.Symbol = "!!!" }, "symbol"},
		{"symbol too long", func(r *domain.CreationRequest) { r.Symbol = "ABCDEFGHI" }, "symbol"},
		{"zero supply", func(r *domain.CreationRequest) { r.Supply = 0 }, "supply"},
		{"decimals too high", func(r *domain.CreationRequest) { r.Decimals = 10 }, "decimals"},
		{"supply overflow", func(r *domain.CreationRequest) { r.Supply = ^uint64(0); r.Decimals = 9 }, "supply"},
		{"missing payment", func(r *domain.CreationRequest) { r.PaymentSignature = " " }, "transactionSignature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRequest()
			tt.mutate(&in)

			_, err := CleanRequest(in)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
