package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/sonic-agent/sonicbot/service/metrics"
)

var (
	// ErrMainnetDisabled is returned when a transfer targets mainnet and
	// neither the force flag nor the operator config allows it.
	ErrMainnetDisabled = errors.New("transfers on mainnet are disabled; set forceMainnet to override")

	// ErrInsufficientBalance is returned when the agent wallet cannot
	// cover the requested amount plus fees.
	ErrInsufficientBalance = errors.New("insufficient balance for transfer")
)

// feeBuffer is the lamport headroom reserved for the transaction fee when
// checking the balance before a transfer.
const feeBuffer = 5_000

// Agent is the service's own signing wallet. It is constructed once by the
// composition root and injected into everything that needs it; there is no
// package-level singleton. The keypair is immutable after construction.
type Agent struct {
	key            solana.PrivateKey
	primary        *Client
	primaryRPC     RPCClient
	testnet        *Client
	testnetRPC     RPCClient
	testnetPrimary bool
	allowMainnet   bool
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

// AgentParams bundles the dependencies for NewAgent.
type AgentParams struct {
	// PrivateKey is the base58-encoded 64-byte keypair.
	PrivateKey string

	// Primary is the balance client for the network transfers normally go
	// out on when TestnetPrimary is false; PrimaryRPC is its raw client,
	// used for submitting transactions.
	Primary    *Client
	PrimaryRPC RPCClient

	// Testnet is optional. When TestnetPrimary is set, transfers go to the
	// testnet and mainnet requires the force flag.
	Testnet    *Client
	TestnetRPC RPCClient

	TestnetPrimary        bool
	AllowMainnetTransfers bool

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// NewAgent constructs the agent wallet from a base58 private key.
func NewAgent(p AgentParams) (*Agent, error) {
	key, err := solana.PrivateKeyFromBase58(p.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid agent wallet key: %w", err)
	}
	if p.TestnetPrimary && p.TestnetRPC == nil {
		return nil, fmt.Errorf("testnet is primary but no testnet RPC client configured")
	}

	return &Agent{
		key:            key,
		primary:        p.Primary,
		primaryRPC:     p.PrimaryRPC,
		testnet:        p.Testnet,
		testnetRPC:     p.TestnetRPC,
		testnetPrimary: p.TestnetPrimary,
		allowMainnet:   p.AllowMainnetTransfers,
		logger:         p.Logger,
		metrics:        p.Metrics,
	}, nil
}

// PublicKey returns the agent wallet's address. Stable for the process lifetime.
func (a *Agent) PublicKey() string {
	return a.key.PublicKey().String()
}

// IsTestnetPrimary reports whether transfers go out on testnet by default.
func (a *Agent) IsTestnetPrimary() bool {
	return a.testnetPrimary
}

// Network names the network transfers go out on by default.
func (a *Agent) Network() string {
	if a.testnetPrimary {
		return "testnet"
	}
	return "mainnet"
}

// Info fetches the agent wallet's balances across its configured networks.
func (a *Agent) Info(ctx context.Context) (*AgentInfo, error) {
	info := &AgentInfo{
		PublicKey:      a.PublicKey(),
		Network:        a.Network(),
		MainnetEnabled: a.allowMainnet,
		TestnetPrimary: a.testnetPrimary,
	}

	bal, err := a.primary.GetBalance(ctx, a.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agent balance: %w", err)
	}
	info.Balance = bal.SOL

	if a.testnet != nil {
		tbal, err := a.testnet.GetBalance(ctx, a.PublicKey())
		if err != nil {
			// The testnet balance is informational; report what we have.
			a.logger.WarnContext(ctx, "failed to fetch agent testnet balance", "error", err)
		} else {
			sol := tbal.SOL
			info.TestnetBalance = &sol
		}
	}

	return info, nil
}

// Send signs and submits a native transfer of the given lamports to the
// recipient. The transfer goes to the testnet when that is the primary
// network; targeting mainnet requires forceMainnet or operator opt-in.
// Returns the transaction signature on success.
//
// The balance check and the submission are not atomic; callers that share
// one agent wallet across concurrent transfers should serialize dispatch.
func (a *Agent) Send(ctx context.Context, recipient string, lamports uint64, forceMainnet bool) (solana.Signature, error) {
	to, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("invalid recipient address: %w", err)
	}

	client, submitRPC, network := a.primary, a.primaryRPC, "mainnet"
	if a.testnetPrimary {
		client, submitRPC, network = a.testnet, a.testnetRPC, "testnet"
	}

	if network == "mainnet" && !forceMainnet && !a.allowMainnet {
		a.metrics.RecordTransfer(network, "refused_mainnet")
		return solana.Signature{}, ErrMainnetDisabled
	}

	bal, err := client.GetBalance(ctx, a.PublicKey())
	if err != nil {
		a.metrics.RecordTransfer(network, "balance_check_failed")
		return solana.Signature{}, fmt.Errorf("failed to check agent balance: %w", err)
	}
	if bal.Lamports < lamports+feeBuffer {
		a.metrics.RecordTransfer(network, "insufficient_balance")
		return solana.Signature{}, fmt.Errorf("%w: have %d lamports, need %d",
			ErrInsufficientBalance, bal.Lamports, lamports+feeBuffer)
	}

	blockhash, err := submitRPC.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		a.metrics.RecordTransfer(network, "error")
		return solana.Signature{}, fmt.Errorf("failed to fetch blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, a.key.PublicKey(), to).Build(),
		},
		blockhash.Value.Blockhash,
		solana.TransactionPayer(a.key.PublicKey()),
	)
	if err != nil {
		a.metrics.RecordTransfer(network, "error")
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(a.key.PublicKey()) {
			return &a.key
		}
		return nil
	})
	if err != nil {
		a.metrics.RecordTransfer(network, "error")
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	start := time.Now()
	sig, err := submitRPC.SendTransaction(ctx, tx)
	a.metrics.RecordRPCCall("SendTransaction", rpcStatus(err), network, time.Since(start).Seconds())
	if err != nil {
		a.metrics.RecordTransfer(network, "error")
		return solana.Signature{}, fmt.Errorf("failed to submit transaction: %w", err)
	}

	a.metrics.RecordTransfer(network, "success")
	a.logger.InfoContext(ctx, "transfer submitted",
		"recipient", recipient,
		"lamports", lamports,
		"network", network,
		"signature", sig.String(),
	)

	return sig, nil
}

func rpcStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
