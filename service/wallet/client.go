package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/sonic-agent/sonicbot/service/metrics"
)

// Client provides balance reads against one network, with an optional
// fallback endpoint tried when the primary fails.
type Client struct {
	rpc      RPCClient
	fallback RPCClient // nil when no fallback endpoint is configured
	endpoint string    // endpoint identifier for metrics ("mainnet", "testnet", host)
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewClient creates a new balance client. fallback may be nil.
// The endpoint parameter is used for metrics labeling.
func NewClient(rpcClient, fallback RPCClient, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		rpc:      rpcClient,
		fallback: fallback,
		endpoint: endpoint,
		logger:   logger,
		metrics:  m,
	}
}

// GetBalance fetches the native and token balances for the given address.
// The native balance is tried on the primary endpoint first, then once on
// the fallback. Token enumeration failures do not fail the call: the native
// balance is always returned when it could be read, with TokensUnavailable
// set so formatters can say so.
func (c *Client) GetBalance(ctx context.Context, address string) (*Balance, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	lamports, err := c.nativeBalance(ctx, c.rpc, owner)
	if err != nil && c.fallback != nil {
		c.logger.WarnContext(ctx, "primary endpoint failed, trying fallback",
			"address", address,
			"error", err,
		)
		c.metrics.RecordRPCFallback("GetBalance")
		lamports, err = c.nativeBalance(ctx, c.fallback, owner)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}

	bal := &Balance{
		Lamports: lamports,
		SOL:      LamportsToSOL(lamports),
	}

	tokens, err := c.tokenBalances(ctx, owner)
	if err != nil {
		// Degrade rather than fail: the native balance is still useful.
		c.logger.WarnContext(ctx, "token balance enumeration failed",
			"address", address,
			"error", err,
		)
		bal.TokensUnavailable = true
		return bal, nil
	}
	bal.Tokens = tokens

	return bal, nil
}

func (c *Client) nativeBalance(ctx context.Context, client RPCClient, owner solana.PublicKey) (uint64, error) {
	start := time.Now()
	out, err := client.GetBalance(ctx, owner, rpc.CommitmentFinalized)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordRPCCall("GetBalance", status, c.endpoint, duration)

	if err != nil {
		return 0, err
	}
	return out.Value, nil
}

// parsedTokenAccount mirrors the jsonParsed account layout returned by
// getTokenAccountsByOwner.
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			TokenAmount struct {
				Amount   string   `json:"amount"`
				Decimals uint8    `json:"decimals"`
				UIAmount *float64 `json:"uiAmount"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

func (c *Client) tokenBalances(ctx context.Context, owner solana.PublicKey) ([]TokenBalance, error) {
	start := time.Now()
	out, err := c.rpc.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{
			ProgramId: solana.TokenProgramID.ToPointer(),
		},
		&rpc.GetTokenAccountsOpts{
			Encoding: solana.EncodingJSONParsed,
		},
	)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordRPCCall("GetTokenAccountsByOwner", status, c.endpoint, duration)

	if err != nil {
		return nil, err
	}

	tokens := make([]TokenBalance, 0, len(out.Value))
	for _, acc := range out.Value {
		raw := acc.Account.Data.GetRawJSON()
		var parsed parsedTokenAccount
		if err := json.Unmarshal(raw, &parsed); err != nil {
			c.logger.DebugContext(ctx, "skipping unparseable token account", "error", err)
			continue
		}

		info := parsed.Parsed.Info
		amount := 0.0
		if info.TokenAmount.UIAmount != nil {
			amount = *info.TokenAmount.UIAmount
		}
		if amount == 0 {
			// Empty accounts are noise in a balance listing.
			continue
		}

		tokens = append(tokens, TokenBalance{
			Mint:     info.Mint,
			Amount:   amount,
			Decimals: info.TokenAmount.Decimals,
		})
	}

	return tokens, nil
}
