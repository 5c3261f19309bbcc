package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"

	"solana-token-launchpad/internal/observability"
)

// Default confirmation polling values.
const (
	DefaultConfirmTimeout      = 60 * time.Second
	DefaultConfirmPollInterval = 2 * time.Second
)

// Client implements TokenChain against a Solana RPC endpoint.
// One transaction per logical operation; each fetches a fresh blockhash so
// the caller's retry policy can replay a failed step safely.
type Client struct {
	rpc      *client.Client
	feePayer *FeePayer

	// feeWallet is the flat-fee collection address checked by VerifyPayment.
	feeWallet string

	confirmTimeout      time.Duration
	confirmPollInterval time.Duration
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithFeeWallet sets the fee-collection address for payment verification.
func WithFeeWallet(address string) ClientOption {
	return func(c *Client) {
		c.feeWallet = address
	}
}

// WithConfirmTimeout sets how long to wait for transaction confirmation.
func WithConfirmTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.confirmTimeout = d
	}
}

// WithConfirmPollInterval sets the confirmation polling interval.
func WithConfirmPollInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.confirmPollInterval = d
	}
}

// NewClient creates a Solana token chain client. An empty endpoint falls
// back to the public devnet RPC.
func NewClient(endpoint string, feePayer *FeePayer, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = rpc.DevnetRPCEndpoint
	}

	c := &Client{
		rpc:                 client.NewClient(endpoint),
		feePayer:            feePayer,
		confirmTimeout:      DefaultConfirmTimeout,
		confirmPollInterval: DefaultConfirmPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ TokenChain = (*Client)(nil)

// LatestBlockhash fetches the most recent blockhash as a liveness probe.
func (c *Client) LatestBlockhash(ctx context.Context) (string, error) {
	start := time.Now()
	latest, err := c.rpc.GetLatestBlockhash(ctx)
	observability.RecordChainCall("getLatestBlockhash", time.Since(start).Seconds(), err)
	if err != nil {
		return "", classify("get latest blockhash", err)
	}
	return latest.Blockhash, nil
}

// CreateMint creates the mint account and initializes it. Mint authority is
// the service fee payer until FinalizeMintAuthority runs; freeze authority
// is fixed here because the token program cannot set one later.
func (c *Client) CreateMint(ctx context.Context, decimals uint8, freezeAuthority *string) (string, error) {
	mint := types.NewAccount()
	payer := c.feePayer.Account()

	rent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return "", classify("get mint rent", err)
	}

	var freezeAuth *common.PublicKey
	if freezeAuthority != nil {
		pk := common.PublicKeyFromString(*freezeAuthority)
		freezeAuth = &pk
	}

	instructions := []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     payer.PublicKey,
			New:      mint.PublicKey,
			Owner:    common.TokenProgramID,
			Lamports: rent,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   decimals,
			Mint:       mint.PublicKey,
			MintAuth:   payer.PublicKey,
			FreezeAuth: freezeAuth,
		}),
	}

	if err := c.sendAndConfirm(ctx, "create mint", instructions, []types.Account{payer, mint}); err != nil {
		return "", err
	}
	return mint.PublicKey.ToBase58(), nil
}

// CreateHolderAccount derives the owner's associated token account for the
// mint and creates it when missing.
func (c *Client) CreateHolderAccount(ctx context.Context, mint, owner string) (string, error) {
	mintPK := common.PublicKeyFromString(mint)
	ownerPK := common.PublicKeyFromString(owner)

	ata, _, err := common.FindAssociatedTokenAddress(ownerPK, mintPK)
	if err != nil {
		return "", classify("derive holder account", err)
	}

	exists, err := c.accountExists(ctx, ata.ToBase58())
	if err != nil {
		return "", err
	}
	if exists {
		return ata.ToBase58(), nil
	}

	payer := c.feePayer.Account()
	instructions := []types.Instruction{
		associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 payer.PublicKey,
			Owner:                  ownerPK,
			Mint:                   mintPK,
			AssociatedTokenAccount: ata,
		}),
	}

	if err := c.sendAndConfirm(ctx, "create holder account", instructions, []types.Account{payer}); err != nil {
		return "", err
	}
	return ata.ToBase58(), nil
}

// MintSupply mints baseUnits into the holder account.
func (c *Client) MintSupply(ctx context.Context, mint, account string, baseUnits uint64) error {
	payer := c.feePayer.Account()

	instructions := []types.Instruction{
		token.MintTo(token.MintToParam{
			Mint:   common.PublicKeyFromString(mint),
			To:     common.PublicKeyFromString(account),
			Auth:   payer.PublicKey,
			Amount: baseUnits,
		}),
	}

	return c.sendAndConfirm(ctx, "mint supply", instructions, []types.Account{payer})
}

// FinalizeMintAuthority transfers mint authority to newAuthority or revokes
// it permanently when nil.
func (c *Client) FinalizeMintAuthority(ctx context.Context, mint string, newAuthority *string) error {
	payer := c.feePayer.Account()

	var newAuth *common.PublicKey
	if newAuthority != nil {
		pk := common.PublicKeyFromString(*newAuthority)
		newAuth = &pk
	}

	instructions := []types.Instruction{
		token.SetAuthority(token.SetAuthorityParam{
			Account:  common.PublicKeyFromString(mint),
			NewAuth:  newAuth,
			AuthType: token.AuthorityTypeMintTokens,
			Auth:     payer.PublicKey,
		}),
	}

	return c.sendAndConfirm(ctx, "finalize mint authority", instructions, []types.Account{payer})
}

// AttachMetadata creates the Metaplex metadata account for the mint with the
// service key as interim update authority.
func (c *Client) AttachMetadata(ctx context.Context, mint string, meta Metadata) (string, error) {
	payer := c.feePayer.Account()
	mintPK := common.PublicKeyFromString(mint)

	metadataPK, err := token_metadata.GetTokenMetaPubkey(mintPK)
	if err != nil {
		return "", classify("derive metadata account", err)
	}

	instructions := []types.Instruction{
		token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
			Metadata:                metadataPK,
			Mint:                    mintPK,
			MintAuthority:           payer.PublicKey,
			UpdateAuthority:         payer.PublicKey,
			Payer:                   payer.PublicKey,
			UpdateAuthorityIsSigner: true,
			IsMutable:               true,
			Data: token_metadata.DataV2{
				Name:                 meta.Name,
				Symbol:               meta.Symbol,
				Uri:                  meta.URI,
				SellerFeeBasisPoints: 0,
			},
		}),
	}

	if err := c.sendAndConfirm(ctx, "attach metadata", instructions, []types.Account{payer}); err != nil {
		return "", err
	}
	return metadataPK.ToBase58(), nil
}

// FinalizeMetadataAuthority hands the metadata update authority to
// newAuthority, or revokes it when nil.
func (c *Client) FinalizeMetadataAuthority(ctx context.Context, mint string, newAuthority *string) error {
	payer := c.feePayer.Account()
	mintPK := common.PublicKeyFromString(mint)

	metadataPK, err := token_metadata.GetTokenMetaPubkey(mintPK)
	if err != nil {
		return classify("derive metadata account", err)
	}

	var newAuth *common.PublicKey
	if newAuthority != nil {
		pk := common.PublicKeyFromString(*newAuthority)
		newAuth = &pk
	}

	instructions := []types.Instruction{
		token_metadata.UpdateMetadataAccountV2(token_metadata.UpdateMetadataAccountV2Param{
			MetadataAccount:    metadataPK,
			UpdateAuthority:    payer.PublicKey,
			NewUpdateAuthority: newAuth,
		}),
	}

	return c.sendAndConfirm(ctx, "finalize metadata authority", instructions, []types.Account{payer})
}

// ReadMint fetches and decodes the mint account state.
func (c *Client) ReadMint(ctx context.Context, mint string) (*MintInfo, error) {
	start := time.Now()
	info, err := c.rpc.GetAccountInfo(ctx, mint)
	observability.RecordChainCall("getAccountInfo", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, classify("read mint", err)
	}
	if len(info.Data) == 0 {
		return nil, classify("read mint", fmt.Errorf("mint account %s not found", mint))
	}

	account, err := token.MintAccountFromData(info.Data)
	if err != nil {
		return nil, classify("decode mint", err)
	}

	result := &MintInfo{
		Supply:   account.Supply,
		Decimals: account.Decimals,
	}
	if account.MintAuthority != nil {
		addr := account.MintAuthority.ToBase58()
		result.MintAuthority = &addr
	}
	if account.FreezeAuthority != nil {
		addr := account.FreezeAuthority.ToBase58()
		result.FreezeAuthority = &addr
	}
	return result, nil
}

// VerifyPayment checks the fee-transfer transaction: it must exist, have
// succeeded, and reference the fee-collection wallet.
func (c *Client) VerifyPayment(ctx context.Context, signature string) error {
	start := time.Now()
	tx, err := c.rpc.GetTransaction(ctx, signature)
	observability.RecordChainCall("getTransaction", time.Since(start).Seconds(), err)
	if err != nil {
		return classify("verify payment", err)
	}
	if tx == nil || tx.Meta == nil {
		return classify("verify payment", fmt.Errorf("payment transaction %s not found", signature))
	}
	if tx.Meta.Err != nil {
		return classify("verify payment", fmt.Errorf("payment transaction %s failed on chain", signature))
	}

	if c.feeWallet == "" {
		return nil
	}
	feePK := common.PublicKeyFromString(c.feeWallet)
	for _, key := range tx.Transaction.Message.Accounts {
		if key == feePK {
			return nil
		}
	}
	return classify("verify payment", fmt.Errorf("payment transaction %s does not involve the fee wallet", signature))
}

// Balance returns the wallet balance in lamports.
func (c *Client) Balance(ctx context.Context, wallet string) (uint64, error) {
	start := time.Now()
	balance, err := c.rpc.GetBalance(ctx, wallet)
	observability.RecordChainCall("getBalance", time.Since(start).Seconds(), err)
	if err != nil {
		return 0, classify("get balance", err)
	}
	return balance, nil
}

// sendAndConfirm assembles, signs, submits, and waits for one transaction.
func (c *Client) sendAndConfirm(ctx context.Context, op string, instructions []types.Instruction, signers []types.Account) error {
	start := time.Now()
	err := c.doSendAndConfirm(ctx, instructions, signers)
	observability.RecordChainCall("sendTransaction", time.Since(start).Seconds(), err)
	if err != nil {
		return classify(op, err)
	}
	return nil
}

func (c *Client) doSendAndConfirm(ctx context.Context, instructions []types.Instruction, signers []types.Account) error {
	latest, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        c.feePayer.Account().PublicKey,
			RecentBlockhash: latest.Blockhash,
			Instructions:    instructions,
		}),
		Signers: signers,
	})
	if err != nil {
		return fmt.Errorf("build transaction: %w", err)
	}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}

	return c.awaitConfirmation(ctx, sig)
}

// awaitConfirmation polls signature status until the transaction reaches
// confirmed or finalized commitment.
func (c *Client) awaitConfirmation(ctx context.Context, signature string) error {
	deadline := time.Now().Add(c.confirmTimeout)

	for {
		status, err := c.rpc.GetSignatureStatus(ctx, signature)
		if err == nil && status != nil {
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed: %v", signature, status.Err)
			}
			if status.ConfirmationStatus != nil {
				s := *status.ConfirmationStatus
				if s == rpc.CommitmentConfirmed || s == rpc.CommitmentFinalized {
					return nil
				}
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("transaction %s not confirmed within %v", signature, c.confirmTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.confirmPollInterval):
		}
	}
}

func (c *Client) accountExists(ctx context.Context, address string) (bool, error) {
	info, err := c.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		return false, classify("check account", err)
	}
	return len(info.Data) > 0, nil
}
