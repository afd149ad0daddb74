package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func balanceResult(lamports uint64) *rpc.GetBalanceResult {
	return &rpc.GetBalanceResult{Value: lamports}
}

func emptyTokenAccounts() *rpc.GetTokenAccountsResult {
	return &rpc.GetTokenAccountsResult{}
}

func TestGetBalance_Native(t *testing.T) {
	mock := &MockRPCClient{
		GetBalanceFunc: func(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
			return balanceResult(2_500_000_000), nil
		},
		GetTokenAccountsByOwnerFunc: func(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
			return emptyTokenAccounts(), nil
		},
	}
	client := NewClient(mock, nil, "testnet", nil, testLogger())

	bal, err := client.GetBalance(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500_000_000), bal.Lamports)
	assert.InDelta(t, 2.5, bal.SOL, 1e-9)
	assert.Empty(t, bal.Tokens)
	assert.False(t, bal.TokensUnavailable)
}

func TestGetBalance_InvalidAddress(t *testing.T) {
	mock := &MockRPCClient{}
	client := NewClient(mock, nil, "testnet", nil, testLogger())

	_, err := client.GetBalance(context.Background(), "not-an-address")
	require.Error(t, err)
	assert.Zero(t, mock.BalanceCalls)
}

func TestGetBalance_FallsBackToSecondEndpoint(t *testing.T) {
	primary := &MockRPCClient{
		GetBalanceFunc: func(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
			return nil, errors.New("connection refused")
		},
		GetTokenAccountsByOwnerFunc: func(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
			return emptyTokenAccounts(), nil
		},
	}
	fallback := &MockRPCClient{
		GetBalanceFunc: func(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
			return balanceResult(42), nil
		},
	}
	client := NewClient(primary, fallback, "mainnet", nil, testLogger())

	bal, err := client.GetBalance(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), bal.Lamports)
	assert.Equal(t, 1, primary.BalanceCalls)
	assert.Equal(t, 1, fallback.BalanceCalls)
}

func TestGetBalance_BothEndpointsFail(t *testing.T) {
	failing := func(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
		return nil, errors.New("rpc down")
	}
	primary := &MockRPCClient{GetBalanceFunc: failing}
	fallback := &MockRPCClient{GetBalanceFunc: failing}
	client := NewClient(primary, fallback, "mainnet", nil, testLogger())

	_, err := client.GetBalance(context.Background(), testAddress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch balance")
}

func TestGetBalance_TokenEnumerationFailureDegrades(t *testing.T) {
	mock := &MockRPCClient{
		GetBalanceFunc: func(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
			return balanceResult(1_000_000_000), nil
		},
		GetTokenAccountsByOwnerFunc: func(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
			return nil, errors.New("token program unavailable")
		},
	}
	client := NewClient(mock, nil, "testnet", nil, testLogger())

	bal, err := client.GetBalance(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), bal.Lamports)
	assert.True(t, bal.TokensUnavailable)
}

func TestGetBalance_ParsesTokenAccounts(t *testing.T) {
	accountJSON := `{
		"program": "spl-token",
		"parsed": {
			"type": "account",
			"info": {
				"mint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
				"owner": "` + testAddress + `",
				"tokenAmount": {
					"amount": "1500000",
					"decimals": 6,
					"uiAmount": 1.5,
					"uiAmountString": "1.5"
				}
			}
		}
	}`

	var data rpc.DataBytesOrJSON
	require.NoError(t, json.Unmarshal([]byte(accountJSON), &data))

	mock := &MockRPCClient{
		GetBalanceFunc: func(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
			return balanceResult(1_000_000_000), nil
		},
		GetTokenAccountsByOwnerFunc: func(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
			return &rpc.GetTokenAccountsResult{
				Value: []*rpc.TokenAccount{
					{Account: rpc.Account{Data: &data}},
				},
			}, nil
		},
	}
	client := NewClient(mock, nil, "testnet", nil, testLogger())

	bal, err := client.GetBalance(context.Background(), testAddress)
	require.NoError(t, err)
	require.Len(t, bal.Tokens, 1)
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", bal.Tokens[0].Mint)
	assert.InDelta(t, 1.5, bal.Tokens[0].Amount, 1e-9)
	assert.Equal(t, uint8(6), bal.Tokens[0].Decimals)
}
