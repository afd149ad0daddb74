package wallet

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRecipient = "8xiv9G1gYEXcWcwg9YVgbCUeEPB4XbRSr6WDwJGTXNDU"

func fundedRPC(lamports uint64) *MockRPCClient {
	return &MockRPCClient{
		GetBalanceFunc: func(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
			return balanceResult(lamports), nil
		},
		GetTokenAccountsByOwnerFunc: func(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
			return emptyTokenAccounts(), nil
		},
		GetLatestBlockhashFunc: func(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
			return &rpc.GetLatestBlockhashResult{
				Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{1}},
			}, nil
		},
		SendTransactionFunc: func(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
			return solana.Signature{0xAB}, nil
		},
	}
}

func newTestAgent(t *testing.T, mock *MockRPCClient, testnetPrimary, allowMainnet bool) *Agent {
	t.Helper()

	key := solana.NewWallet().PrivateKey
	params := AgentParams{
		PrivateKey:            key.String(),
		Primary:               NewClient(mock, nil, "primary", nil, testLogger()),
		PrimaryRPC:            mock,
		TestnetPrimary:        testnetPrimary,
		AllowMainnetTransfers: allowMainnet,
		Logger:                testLogger(),
	}
	if testnetPrimary {
		params.Testnet = NewClient(mock, nil, "testnet", nil, testLogger())
		params.TestnetRPC = mock
	}

	agent, err := NewAgent(params)
	require.NoError(t, err)
	return agent
}

func TestNewAgent_InvalidKey(t *testing.T) {
	_, err := NewAgent(AgentParams{PrivateKey: "garbage", Logger: testLogger()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid agent wallet key")
}

func TestAgent_PublicKeyStable(t *testing.T) {
	agent := newTestAgent(t, fundedRPC(LamportsPerSOL), true, false)
	assert.Equal(t, agent.PublicKey(), agent.PublicKey())
	assert.True(t, agent.IsTestnetPrimary())
	assert.Equal(t, "testnet", agent.Network())
}

func TestSend_RefusesMainnetWithoutForce(t *testing.T) {
	mock := fundedRPC(10 * LamportsPerSOL)
	agent := newTestAgent(t, mock, false, false)

	_, err := agent.Send(context.Background(), testRecipient, 100_000_000, false)
	require.ErrorIs(t, err, ErrMainnetDisabled)
	assert.Contains(t, err.Error(), "mainnet")

	// Refusal happens before any RPC traffic.
	assert.Zero(t, mock.BalanceCalls)
	assert.Zero(t, mock.SendCalls)
}

func TestSend_ForceMainnetOverrides(t *testing.T) {
	mock := fundedRPC(10 * LamportsPerSOL)
	agent := newTestAgent(t, mock, false, false)

	sig, err := agent.Send(context.Background(), testRecipient, 100_000_000, true)
	require.NoError(t, err)
	assert.False(t, sig.IsZero())
	assert.Equal(t, 1, mock.SendCalls)
}

func TestSend_TestnetSucceeds(t *testing.T) {
	mock := fundedRPC(10 * LamportsPerSOL)
	agent := newTestAgent(t, mock, true, false)

	sig, err := agent.Send(context.Background(), testRecipient, 100_000_000, false)
	require.NoError(t, err)
	assert.False(t, sig.IsZero())
	assert.Equal(t, 1, mock.SendCalls)
}

func TestSend_InsufficientBalance(t *testing.T) {
	mock := fundedRPC(1_000) // far less than the requested amount plus fees
	agent := newTestAgent(t, mock, true, false)

	_, err := agent.Send(context.Background(), testRecipient, 100_000_000, false)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Zero(t, mock.SendCalls)
}

func TestSend_InvalidRecipient(t *testing.T) {
	mock := fundedRPC(10 * LamportsPerSOL)
	agent := newTestAgent(t, mock, true, false)

	_, err := agent.Send(context.Background(), "bogus", 100_000_000, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
	assert.Zero(t, mock.SendCalls)
}

func TestAgent_Info(t *testing.T) {
	mock := fundedRPC(3 * LamportsPerSOL)
	agent := newTestAgent(t, mock, true, false)

	info, err := agent.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, agent.PublicKey(), info.PublicKey)
	assert.Equal(t, "testnet", info.Network)
	assert.InDelta(t, 3.0, info.Balance, 1e-9)
	require.NotNil(t, info.TestnetBalance)
	assert.InDelta(t, 3.0, *info.TestnetBalance, 1e-9)
}
