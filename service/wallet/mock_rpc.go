package wallet

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// MockRPCClient is a configurable RPCClient for tests. Zero value returns
// "not implemented" for everything; set the function fields you need.
type MockRPCClient struct {
	GetBalanceFunc              func(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetTokenAccountsByOwnerFunc func(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
	GetLatestBlockhashFunc      func(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionFunc         func(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)

	// Call counters for asserting what was (not) hit.
	BalanceCalls int
	TokenCalls   int
	SendCalls    int
}

var errMockNotImplemented = errors.New("mock: not implemented")

func (m *MockRPCClient) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	m.BalanceCalls++
	if m.GetBalanceFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.GetBalanceFunc(ctx, account, commitment)
}

func (m *MockRPCClient) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
	m.TokenCalls++
	if m.GetTokenAccountsByOwnerFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.GetTokenAccountsByOwnerFunc(ctx, owner, conf, opts)
}

func (m *MockRPCClient) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	if m.GetLatestBlockhashFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.GetLatestBlockhashFunc(ctx, commitment)
}

func (m *MockRPCClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	m.SendCalls++
	if m.SendTransactionFunc == nil {
		return solana.Signature{}, errMockNotImplemented
	}
	return m.SendTransactionFunc(ctx, tx)
}
