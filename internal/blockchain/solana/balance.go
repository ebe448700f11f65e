package solana

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// SPL token account layout: the amount field is the little-endian uint64
// at bytes 64..72 (after the 32-byte mint and 32-byte owner).
const (
	tokenAmountOffset  = 64
	tokenAccountMinLen = 72
)

// BalanceReader reads the current balance of one token held by one wallet.
// It is a pure query: no side effects, no state beyond the configured keys.
type BalanceReader struct {
	client   *Client
	owner    solana.PublicKey
	mint     solana.PublicKey
	decimals uint8
	logger   *zap.Logger
}

// NewBalanceReader validates the configured keys and creates a reader.
func NewBalanceReader(client *Client, owner, mint string, decimals uint8, logger *zap.Logger) (*BalanceReader, error) {
	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address %q: %w", owner, err)
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("invalid token mint %q: %w", mint, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BalanceReader{
		client:   client,
		owner:    ownerKey,
		mint:     mintKey,
		decimals: decimals,
		logger:   logger,
	}, nil
}

// TokenBalance returns the wallet's current token balance as a UI amount.
// The query sequence is retried with exponential backoff, bounded by ctx.
// A wallet without a token account for the mint has a zero balance, not an
// error.
func (r *BalanceReader) TokenBalance(ctx context.Context) (float64, error) {
	return backoff.Retry(ctx, func() (float64, error) {
		return r.queryBalance(ctx)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(maxRetries))
}

func (r *BalanceReader) queryBalance(ctx context.Context) (float64, error) {
	accounts, err := r.client.GetTokenAccountsByOwner(ctx, r.owner, r.mint)
	if err != nil {
		return 0, fmt.Errorf("get token accounts: %w", err)
	}
	if accounts == nil || len(accounts.Value) == 0 {
		return 0, nil
	}

	tokenAccount := accounts.Value[0]

	result, err := r.client.GetTokenAccountBalance(ctx, tokenAccount.Pubkey)
	if err == nil && result != nil && result.Value != nil {
		return uiAmount(result.Value.UiAmount, result.Value.Amount, r.decimals)
	}
	r.logger.Debug("Balance RPC failed, decoding raw account data",
		zap.String("token_account", tokenAccount.Pubkey.String()),
		zap.Error(err))

	// Fallback: read the amount field straight out of the account data.
	info, err := r.client.GetAccountInfo(ctx, tokenAccount.Pubkey)
	if err != nil {
		return 0, fmt.Errorf("get account info: %w", err)
	}
	if info == nil || info.Value == nil {
		return 0, fmt.Errorf("empty account info for %s", tokenAccount.Pubkey)
	}

	return decodeRawBalance(info.Value.Data.GetBinary(), r.decimals)
}

// uiAmount converts an RPC token amount into a float balance, preferring
// the node-computed UI amount over parsing the raw integer string.
func uiAmount(ui *float64, raw string, decimals uint8) (float64, error) {
	if ui != nil {
		return *ui, nil
	}
	if raw == "" {
		return 0, nil
	}

	amount, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse token amount %q: %w", raw, err)
	}
	return float64(amount) / math.Pow10(int(decimals)), nil
}

// decodeRawBalance extracts the amount field from raw SPL token account
// data and scales it by the token's decimals.
func decodeRawBalance(data []byte, decimals uint8) (float64, error) {
	if len(data) < tokenAccountMinLen {
		return 0, fmt.Errorf("token account data too short: %d bytes", len(data))
	}

	amount := binary.LittleEndian.Uint64(data[tokenAmountOffset : tokenAmountOffset+8])
	return float64(amount) / math.Pow10(int(decimals)), nil
}
