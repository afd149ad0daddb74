// Package agent routes classified intents to the adapters that serve them
// and turns the results into conversational replies. It is the shared core
// behind every chat surface.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/sonic-agent/sonicbot/service/dex"
	"github.com/sonic-agent/sonicbot/service/events"
	"github.com/sonic-agent/sonicbot/service/format"
	"github.com/sonic-agent/sonicbot/service/intent"
	"github.com/sonic-agent/sonicbot/service/llm"
	"github.com/sonic-agent/sonicbot/service/metrics"
	"github.com/sonic-agent/sonicbot/service/session"
	"github.com/sonic-agent/sonicbot/service/wallet"
)

// Surfaces a dispatcher serves; used for metrics and to pick the renderer.
const (
	SurfaceHTTP     = "http"
	SurfaceTelegram = "telegram"
)

// BalanceService reads wallet balances.
type BalanceService interface {
	GetBalance(ctx context.Context, address string) (*wallet.Balance, error)
}

// AgentWallet is the service's own signing wallet.
type AgentWallet interface {
	PublicKey() string
	IsTestnetPrimary() bool
	Network() string
	Info(ctx context.Context) (*wallet.AgentInfo, error)
	Send(ctx context.Context, recipient string, lamports uint64, forceMainnet bool) (solana.Signature, error)
}

// DexService is the slice of the DEX client the dispatcher needs.
type DexService interface {
	GetTokenPrices(ctx context.Context, mints []string) (map[string]float64, error)
	GetTokenDetails(ctx context.Context, mint string) ([]dex.TokenMetadata, error)
	GetPoolByID(ctx context.Context, poolID string) (*dex.PoolSnapshot, error)
	ListPools(ctx context.Context, page, pageSize int) (*dex.PoolPage, error)
	GetStats(ctx context.Context) (*dex.Stats, error)
	RequestFaucet(ctx context.Context, address string) (*dex.FaucetResult, error)
}

// Dispatcher owns the classify-dispatch-format pipeline. One instance is
// shared by all surfaces; all state it mutates lives in the session store.
type Dispatcher struct {
	balances  BalanceService
	agent     AgentWallet // nil when no wallet key is configured
	dex       DexService
	completer llm.Completer
	sessions  *session.Store
	publisher events.Publisher // nil disables transfer events
	metrics   *metrics.Metrics
	logger    *slog.Logger

	// Serializes the balance-check-then-send sequence so two concurrent
	// transfer requests cannot both pass the check against the same funds.
	transferMu sync.Mutex
}

// DispatcherParams collects the dispatcher's dependencies.
type DispatcherParams struct {
	Balances  BalanceService
	Agent     AgentWallet
	Dex       DexService
	Completer llm.Completer
	Sessions  *session.Store
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

func NewDispatcher(p DispatcherParams) *Dispatcher {
	sessions := p.Sessions
	if sessions == nil {
		sessions = session.NewStore()
	}
	return &Dispatcher{
		balances:  p.Balances,
		agent:     p.Agent,
		dex:       p.Dex,
		completer: p.Completer,
		sessions:  sessions,
		publisher: p.Publisher,
		metrics:   p.Metrics,
		logger:    p.Logger,
	}
}

// Sessions exposes the store so front-ends can implement history reset.
func (d *Dispatcher) Sessions() *session.Store {
	return d.sessions
}

func rendererFor(surface string) *format.Renderer {
	if surface == SurfaceTelegram {
		return format.NewRenderer(format.Markdown)
	}
	return format.NewRenderer(format.Plain)
}

// Handle processes one message to completion and returns the reply text.
// All failures come back as readable replies; the error return is reserved
// for context cancellation.
func (d *Dispatcher) Handle(ctx context.Context, conversationID, text, surface string) (string, error) {
	return d.dispatch(ctx, conversationID, text, surface, nil)
}

// HandleStream behaves like Handle but forwards completion chunks to
// onChunk for intents that stream (general chat). Non-chat intents deliver
// their whole reply as a single chunk.
func (d *Dispatcher) HandleStream(ctx context.Context, conversationID, text, surface string, onChunk func(string) error) (string, error) {
	return d.dispatch(ctx, conversationID, text, surface, onChunk)
}

func (d *Dispatcher) dispatch(ctx context.Context, conversationID, text, surface string, onChunk func(string) error) (string, error) {
	it := intent.Classify(text)
	d.metrics.RecordIntent(string(it.Kind), surface)
	d.logger.DebugContext(ctx, "classified message",
		"intent", string(it.Kind), "surface", surface, "conversation", conversationID)

	r := rendererFor(surface)

	var reply string
	switch it.Kind {
	case intent.KindDirectAddress, intent.KindBalanceQuery:
		reply = d.handleBalance(ctx, r, it.Address)
	case intent.KindDirectMint:
		reply = d.handlePrice(ctx, r, it.Mint)
	case intent.KindDirectPool, intent.KindPoolQuery:
		reply = d.handlePool(ctx, r, it.PoolID)
	case intent.KindDetailsQuery:
		reply = d.handleDetails(ctx, r, it.Mint)
	case intent.KindPriceQuery:
		reply = d.handlePrice(ctx, r, it.Mint)
	case intent.KindStatsQuery:
		reply = d.handleStats(ctx, r)
	case intent.KindAgentWallet:
		reply = d.handleAgentWallet(ctx, r, it.Scope)
	case intent.KindFaucetRequest:
		reply = d.handleFaucet(ctx, r, it.Address)
	case intent.KindTransfer:
		reply = d.handleTransfer(ctx, r, it.Amount, it.Address)
	case intent.KindTransferHint:
		reply = "To send SOL, tell me the amount and the recipient, like: send 0.5 sol to <address>"
	case intent.KindPoolList:
		reply = d.handlePoolList(ctx, r)
	default:
		return d.handleChat(ctx, conversationID, it.Text, onChunk)
	}

	if onChunk != nil {
		if err := onChunk(reply); err != nil {
			return reply, err
		}
	}
	return reply, ctx.Err()
}

func (d *Dispatcher) handleBalance(ctx context.Context, r *format.Renderer, address string) string {
	balance, err := d.balances.GetBalance(ctx, address)
	if err != nil {
		return r.Error("balance", err)
	}
	return r.Balance(address, balance)
}

func (d *Dispatcher) handlePrice(ctx context.Context, r *format.Renderer, mint string) string {
	prices, err := d.dex.GetTokenPrices(ctx, []string{mint})
	if err != nil {
		return r.Error("price", err)
	}
	return r.Prices(prices)
}

func (d *Dispatcher) handleDetails(ctx context.Context, r *format.Renderer, mint string) string {
	details, err := d.dex.GetTokenDetails(ctx, mint)
	if err != nil {
		return r.Error("token details", err)
	}
	return r.TokenDetails(details)
}

func (d *Dispatcher) handleStats(ctx context.Context, r *format.Renderer) string {
	stats, err := d.dex.GetStats(ctx)
	if err != nil {
		return r.Error("stats", err)
	}
	return r.Stats(stats)
}

func (d *Dispatcher) handlePool(ctx context.Context, r *format.Renderer, poolID string) string {
	pool, err := d.dex.GetPoolByID(ctx, poolID)
	if err != nil {
		return r.Error("pool", err)
	}
	return r.Pool(pool)
}

func (d *Dispatcher) handlePoolList(ctx context.Context, r *format.Renderer) string {
	page, err := d.dex.ListPools(ctx, 1, 10)
	if err != nil {
		return r.Error("pool list", err)
	}
	return r.PoolList(page)
}

func (d *Dispatcher) handleAgentWallet(ctx context.Context, r *format.Renderer, scope intent.Scope) string {
	if d.agent == nil {
		return "I don't have a wallet configured."
	}
	info, err := d.agent.Info(ctx)
	if err != nil {
		return r.Error("agent wallet", err)
	}
	return r.AgentWallet(info, string(scope))
}

func (d *Dispatcher) handleFaucet(ctx context.Context, r *format.Renderer, address string) string {
	if address == "" {
		if d.agent == nil {
			return "Tell me which address should receive the faucet tokens."
		}
		address = d.agent.PublicKey()
	}

	res, err := d.dex.RequestFaucet(ctx, address)
	if err != nil {
		return r.Error("faucet", err)
	}
	return r.Faucet(res)
}

// handleTransfer applies the transfer business rules before the wallet is
// ever touched: wallet presence, then mainnet policy. Balance sufficiency
// is checked by Send against the network the transfer actually goes out
// on. Conversational transfers never force mainnet.
func (d *Dispatcher) handleTransfer(ctx context.Context, r *format.Renderer, amount float64, recipient string) string {
	if d.agent == nil {
		return "I don't have a wallet configured, so I can't send SOL."
	}
	if !d.agent.IsTestnetPrimary() {
		d.metrics.RecordTransfer(d.agent.Network(), "refused_mainnet")
		return "Transfers on mainnet are disabled for chat requests. I only send SOL on testnet."
	}

	lamports := wallet.NormalizeLamports(amount)

	d.transferMu.Lock()
	defer d.transferMu.Unlock()

	sig, err := d.agent.Send(ctx, recipient, lamports, false)
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientBalance) {
			return "I don't have enough SOL for that transfer."
		}
		return r.Error("transfer", err)
	}

	d.publishTransfer(ctx, recipient, lamports, sig.String())
	return r.Transfer(recipient, lamports, sig.String())
}

func (d *Dispatcher) publishTransfer(ctx context.Context, recipient string, lamports uint64, signature string) {
	if d.publisher == nil {
		return
	}
	err := d.publisher.PublishTransfer(ctx, events.TransferEvent{
		Wallet:    d.agent.PublicKey(),
		Recipient: recipient,
		Lamports:  lamports,
		Signature: signature,
		Network:   d.agent.Network(),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		// The transfer already happened; a lost event is log-worthy only.
		d.logger.WarnContext(ctx, "failed to publish transfer event", "error", err)
	}
}

// handleChat runs a completion over the conversation history. The user turn
// is appended before the call and the assistant turn after it completes, so
// a failed completion never leaves a dangling assistant entry.
func (d *Dispatcher) handleChat(ctx context.Context, conversationID, text string, onChunk func(string) error) (string, error) {
	if d.completer == nil {
		return "Chat is not available right now.", nil
	}

	d.sessions.Append(conversationID, llm.Message{Role: llm.RoleUser, Content: text})
	history := d.sessions.History(conversationID)

	var reply string
	var err error
	if onChunk != nil {
		reply, err = d.completer.StreamComplete(ctx, history, onChunk)
	} else {
		reply, err = d.completer.Complete(ctx, history)
	}
	if err != nil {
		d.logger.ErrorContext(ctx, "completion failed", "error", err, "conversation", conversationID)
		if reply == "" {
			return "Sorry, I couldn't come up with a reply. Please try again.", nil
		}
	}

	d.sessions.Append(conversationID, llm.Message{Role: llm.RoleAssistant, Content: reply})
	return reply, nil
}
