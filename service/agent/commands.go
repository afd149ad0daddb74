package agent

import (
	"context"

	"github.com/sonic-agent/sonicbot/service/intent"
	"github.com/sonic-agent/sonicbot/service/validate"
)

// Command entry points for surfaces that take explicit arguments (bot
// commands, HTTP handlers). Unlike Handle, the argument here is raw user
// input, so each entry validates before touching an adapter.

const (
	msgInvalidAddress = "Invalid address format."
	msgInvalidMint    = "Invalid token mint address format."
	msgInvalidPoolID  = "Invalid pool id format."
	msgInvalidAmount  = "The amount must be a positive number."
)

func (d *Dispatcher) Balance(ctx context.Context, surface, address string) string {
	if !validate.IsWellFormedAddress(address) {
		return msgInvalidAddress
	}
	return d.handleBalance(ctx, rendererFor(surface), address)
}

func (d *Dispatcher) Price(ctx context.Context, surface, mint string) string {
	if !validate.IsWellFormedMint(mint) {
		return msgInvalidMint
	}
	return d.handlePrice(ctx, rendererFor(surface), mint)
}

func (d *Dispatcher) TokenDetails(ctx context.Context, surface, mint string) string {
	if !validate.IsWellFormedMint(mint) {
		return msgInvalidMint
	}
	return d.handleDetails(ctx, rendererFor(surface), mint)
}

func (d *Dispatcher) Stats(ctx context.Context, surface string) string {
	return d.handleStats(ctx, rendererFor(surface))
}

func (d *Dispatcher) Pool(ctx context.Context, surface, poolID string) string {
	if !validate.IsWellFormedPoolID(poolID) {
		return msgInvalidPoolID
	}
	return d.handlePool(ctx, rendererFor(surface), poolID)
}

func (d *Dispatcher) Pools(ctx context.Context, surface string) string {
	return d.handlePoolList(ctx, rendererFor(surface))
}

// Faucet accepts an empty address; the agent wallet is the default target.
func (d *Dispatcher) Faucet(ctx context.Context, surface, address string) string {
	if address != "" && !validate.IsWellFormedAddress(address) {
		return msgInvalidAddress
	}
	return d.handleFaucet(ctx, rendererFor(surface), address)
}

func (d *Dispatcher) SendSOL(ctx context.Context, surface string, amount float64, recipient string) string {
	if !validate.IsPositiveAmount(amount) {
		return msgInvalidAmount
	}
	if !validate.IsWellFormedAddress(recipient) {
		return msgInvalidAddress
	}
	return d.handleTransfer(ctx, rendererFor(surface), amount, recipient)
}

func (d *Dispatcher) AgentInfo(ctx context.Context, surface string, scope intent.Scope) string {
	return d.handleAgentWallet(ctx, rendererFor(surface), scope)
}

// SolSonic answers the named-pool shortcut.
func (d *Dispatcher) SolSonic(ctx context.Context, surface string) string {
	return d.handlePool(ctx, rendererFor(surface), intent.SolSonicPoolID)
}
