// Package format renders structured results as conversational text. All
// renderers are pure functions; a renderer never fails the request, it
// degrades to a minimal message instead.
package format

import (
	"fmt"
	"strings"

	"github.com/sonic-agent/sonicbot/service/dex"
	"github.com/sonic-agent/sonicbot/service/wallet"
)

// Mode selects the output flavor per surface.
type Mode int

const (
	// Plain is unadorned text for the HTTP chat stream.
	Plain Mode = iota
	// Markdown is light markup for Telegram.
	Markdown
)

// Degraded is the last-resort message when a result cannot be rendered.
const Degraded = "could not format result"

// ShortAddress abbreviates a long address as first6...last4. Short strings
// come back unchanged.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// Renderer renders result types in one output mode.
type Renderer struct {
	mode Mode
}

func NewRenderer(mode Mode) *Renderer {
	return &Renderer{mode: mode}
}

func (r *Renderer) bold(s string) string {
	if r.mode == Markdown {
		return "*" + s + "*"
	}
	return s
}

func (r *Renderer) code(s string) string {
	if r.mode == Markdown {
		return "`" + s + "`"
	}
	return s
}

// Balance renders a wallet balance block.
func (r *Renderer) Balance(address string, b *wallet.Balance) string {
	if b == nil {
		return Degraded
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", r.bold("Wallet:"), r.code(ShortAddress(address)))
	fmt.Fprintf(&sb, "%s %.9g SOL\n", r.bold("SOL Balance:"), b.SOL)

	switch {
	case b.TokensUnavailable:
		sb.WriteString("Token balances are temporarily unavailable.\n")
	case len(b.Tokens) == 0:
		sb.WriteString("No token holdings found.\n")
	default:
		fmt.Fprintf(&sb, "%s\n", r.bold("Tokens:"))
		for _, tok := range b.Tokens {
			fmt.Fprintf(&sb, "  %s: %.9g\n", r.code(ShortAddress(tok.Mint)), tok.Amount)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// AgentWallet renders the agent's own wallet per the requested scope.
func (r *Renderer) AgentWallet(info *wallet.AgentInfo, scope string) string {
	if info == nil {
		return Degraded
	}

	switch scope {
	case "address":
		return fmt.Sprintf("%s %s", r.bold("My wallet address:"), r.code(info.PublicKey))
	case "testnet":
		if info.TestnetBalance == nil {
			return "No testnet endpoint is configured for my wallet."
		}
		return fmt.Sprintf("%s %.9g SOL", r.bold("My testnet balance:"), *info.TestnetBalance)
	case "mainnet":
		if info.TestnetPrimary {
			return "My wallet is running against testnet; no mainnet balance to report."
		}
		return fmt.Sprintf("%s %.9g SOL", r.bold("My mainnet balance:"), info.Balance)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", r.bold("My wallet:"), r.code(ShortAddress(info.PublicKey)))
	fmt.Fprintf(&sb, "%s %s\n", r.bold("Network:"), info.Network)
	fmt.Fprintf(&sb, "%s %.9g SOL\n", r.bold("Balance:"), info.Balance)
	if info.TestnetBalance != nil && !info.TestnetPrimary {
		fmt.Fprintf(&sb, "%s %.9g SOL\n", r.bold("Testnet balance:"), *info.TestnetBalance)
	}
	if !info.MainnetEnabled {
		sb.WriteString("Mainnet transfers are disabled.\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Transfer renders a transfer receipt.
func (r *Renderer) Transfer(recipient string, lamports uint64, signature string) string {
	return fmt.Sprintf("%s Sent %.9g SOL to %s.\nSignature: %s",
		r.bold("Transfer complete."),
		wallet.LamportsToSOL(lamports),
		r.code(ShortAddress(recipient)),
		r.code(signature))
}

// Prices renders a price map. Mints with no price are simply absent.
func (r *Renderer) Prices(prices map[string]float64) string {
	if len(prices) == 0 {
		return "No prices found for the requested tokens."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", r.bold("Token prices:"))
	for mint, price := range prices {
		fmt.Fprintf(&sb, "  %s: $%.6g\n", r.code(ShortAddress(mint)), price)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// TokenDetails renders token metadata.
func (r *Renderer) TokenDetails(details []dex.TokenMetadata) string {
	if len(details) == 0 {
		return Degraded
	}

	var sb strings.Builder
	for _, md := range details {
		fmt.Fprintf(&sb, "%s (%s)\n", r.bold(md.Name), md.Symbol)
		fmt.Fprintf(&sb, "  Mint: %s\n", r.code(ShortAddress(md.Address)))
		fmt.Fprintf(&sb, "  Decimals: %d\n", md.Decimals)
		if len(md.Tags) > 0 {
			fmt.Fprintf(&sb, "  Tags: %s\n", strings.Join(md.Tags, ", "))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Pool renders one pool snapshot.
func (r *Renderer) Pool(pool *dex.PoolSnapshot) string {
	if pool == nil {
		return Degraded
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", r.bold("Pool:"), r.code(ShortAddress(pool.ID)))
	fmt.Fprintf(&sb, "  Pair: %s / %s\n", poolSymbol(pool.MintA), poolSymbol(pool.MintB))
	fmt.Fprintf(&sb, "  Price: %.6g\n", pool.Price)
	fmt.Fprintf(&sb, "  TVL: $%.6g\n", pool.TVL)
	fmt.Fprintf(&sb, "  24h Volume: $%.6g\n", pool.Volume24h)
	if pool.FeeRate > 0 {
		fmt.Fprintf(&sb, "  Fee: %.4g%%\n", pool.FeeRate*100)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// PoolList renders one page of pools.
func (r *Renderer) PoolList(page *dex.PoolPage) string {
	if page == nil || len(page.Pools) == 0 {
		return "No liquidity pools found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d total)\n", r.bold("Liquidity pools"), page.Count)
	for _, pool := range page.Pools {
		fmt.Fprintf(&sb, "  %s / %s  TVL $%.6g  24h $%.6g\n",
			poolSymbol(pool.MintA), poolSymbol(pool.MintB), pool.TVL, pool.Volume24h)
	}
	if page.Fallback {
		sb.WriteString("(live pool data is unavailable right now; showing a recent snapshot)\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Stats renders the chain-wide summary.
func (r *Renderer) Stats(stats *dex.Stats) string {
	if stats == nil {
		return Degraded
	}

	s := fmt.Sprintf("%s\n  TVL: $%.6g\n  24h Volume: $%.6g",
		r.bold("Sonic DEX stats"), stats.TVL, stats.Volume24)
	if stats.Fallback {
		s += "\n(live stats are unavailable right now; showing a recent snapshot)"
	}
	return s
}

// Faucet renders a faucet outcome; refusals carry the upstream message.
func (r *Renderer) Faucet(res *dex.FaucetResult) string {
	if res == nil {
		return Degraded
	}
	if res.Success {
		return res.Message
	}
	if res.Message != "" {
		return res.Message
	}
	return "The faucet request failed. Please try again later."
}

// Error renders a failure. The adapter's message is shown verbatim when
// present; otherwise a generic per-operation sentence.
func (r *Renderer) Error(operation string, err error) string {
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fmt.Sprintf("Sorry, the %s request failed. Please try again later.", operation)
}

func poolSymbol(ref dex.TokenRef) string {
	if ref.Symbol != "" {
		return ref.Symbol
	}
	if ref.Address != "" {
		return ShortAddress(ref.Address)
	}
	return "?"
}
