// Package intent classifies free-text chat messages into the fixed set of
// actions the dispatcher knows how to perform. Classification is an
// explicit ordered rule list evaluated first-match-wins; the order is part
// of the contract because several patterns can structurally match the same
// message.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sonic-agent/sonicbot/service/validate"
)

// Kind identifies which action a message asks for.
type Kind string

const (
	KindDirectAddress Kind = "direct_address"
	KindDirectMint    Kind = "direct_mint"
	KindDirectPool    Kind = "direct_pool"
	KindBalanceQuery  Kind = "balance_query"
	KindDetailsQuery  Kind = "details_query"
	KindPriceQuery    Kind = "price_query"
	KindStatsQuery    Kind = "stats_query"
	KindAgentWallet   Kind = "agent_wallet_query"
	KindFaucetRequest Kind = "faucet_request"
	KindTransfer      Kind = "transfer_request"
	KindTransferHint  Kind = "transfer_hint"
	KindPoolQuery     Kind = "pool_query"
	KindPoolList      Kind = "pool_list_query"
	KindGeneralChat   Kind = "general_chat"
)

// Scope narrows an agent-wallet query.
type Scope string

const (
	ScopeAll     Scope = "all"
	ScopeMainnet Scope = "mainnet"
	ScopeTestnet Scope = "testnet"
	ScopeAddress Scope = "address"
)

// Intent is the classified purpose of one message plus whatever parameter
// the matching rule extracted. Unused fields are zero.
type Intent struct {
	Kind    Kind
	Address string
	Mint    string
	PoolID  string
	Amount  float64
	Scope   Scope
	Text    string
}

// SolSonicPoolID is the SOL-SONIC pool resolved by name-based queries.
const SolSonicPoolID = "4pMpYS3iEyR3tn8BeqvqxB7QCULegaiUC6puppPaaE8q"

var (
	base58Token = `[1-9A-HJ-NP-Za-km-z]{32,44}`

	reBase58    = regexp.MustCompile(base58Token)
	reDetails   = regexp.MustCompile(`(?i)\b(details|info|information|data)\b`)
	reBalance   = regexp.MustCompile(`(?i)\b(check|view|show|what'?s|whats|get)\b.*\b(wallet|balance|account)\b`)
	reTokenWord = regexp.MustCompile(`(?i)\b(token|mint|coin)\b`)
	rePrice     = regexp.MustCompile(`(?i)\b(price|worth|cost|value)\b`)
	reStats     = regexp.MustCompile(`(?i)\b(tvl|volume|stats|statistics|total value locked)\b`)
	reAgent     = regexp.MustCompile(`(?i)\b(your|agent'?s?|bot'?s?)\b.*\b(wallet|address|balance|key)\b`)
	reFaucet    = regexp.MustCompile(`(?i)\bfaucet\b|\btest(net)? tokens?\b`)
	reSendSol   = regexp.MustCompile(`(?i)\bsend\s+(\d+(?:\.\d+)?)\s*sol\s+to\s+(` + base58Token + `)`)
	reTransfer  = regexp.MustCompile(`(?i)\b(send|transfer)\b`)
	rePoolWord  = regexp.MustCompile(`(?i)\bpool\b`)
	reSolSonic  = regexp.MustCompile(`(?i)\bsol[\s/-]?sonic\b`)
	rePoolList  = regexp.MustCompile(`(?i)\b(pools|liquidity)\b`)
)

// rule is one classification step: name for tests and logs, match returns
// the intent when the rule fires.
type rule struct {
	name  string
	match func(text, trimmed string) (Intent, bool)
}

// rules is evaluated in order; the first rule that fires wins. Reordering
// entries changes observable behavior.
var rules = []rule{
	{"bare-address", matchBareAddress},
	{"bare-mint", matchBareMint},
	{"bare-pool", matchBarePool},
	{"balance-phrase", matchBalancePhrase},
	{"details-phrase", matchDetailsPhrase},
	{"price-phrase", matchPricePhrase},
	{"stats-keywords", matchStats},
	{"agent-wallet", matchAgentWallet},
	{"faucet", matchFaucet},
	{"explicit-transfer", matchExplicitTransfer},
	{"transfer-hint", matchTransferHint},
	{"pool-info", matchPoolInfo},
	{"solsonic", matchSolSonic},
	{"pool-list", matchPoolList},
}

// Classify maps a raw message to exactly one Intent. It never fails; text
// matching nothing is GeneralChat.
func Classify(text string) Intent {
	trimmed := strings.TrimSpace(text)
	for _, r := range rules {
		if it, ok := r.match(text, trimmed); ok {
			return it
		}
	}
	return Intent{Kind: KindGeneralChat, Text: trimmed}
}

func matchBareAddress(_, trimmed string) (Intent, bool) {
	if validate.IsWellFormedAddress(trimmed) {
		return Intent{Kind: KindDirectAddress, Address: trimmed}, true
	}
	return Intent{}, false
}

// A bare mint is structurally identical to a bare address, so this rule is
// only reachable when the address rule is removed or tightened. It stays in
// the list so the address-then-mint-then-pool precedence is explicit.
func matchBareMint(_, trimmed string) (Intent, bool) {
	if validate.IsWellFormedMint(trimmed) {
		return Intent{Kind: KindDirectMint, Mint: trimmed}, true
	}
	return Intent{}, false
}

func matchBarePool(_, trimmed string) (Intent, bool) {
	if validate.IsWellFormedPoolID(trimmed) {
		return Intent{Kind: KindDirectPool, PoolID: trimmed}, true
	}
	return Intent{}, false
}

func matchBalancePhrase(text, _ string) (Intent, bool) {
	if !reBalance.MatchString(text) {
		return Intent{}, false
	}
	addr := firstValidBase58(text)
	if addr == "" {
		return Intent{}, false
	}
	return Intent{Kind: KindBalanceQuery, Address: addr}, true
}

func matchDetailsPhrase(text, _ string) (Intent, bool) {
	if !reDetails.MatchString(text) || !reTokenWord.MatchString(text) {
		return Intent{}, false
	}
	mint := firstValidBase58(text)
	if mint == "" {
		return Intent{}, false
	}
	return Intent{Kind: KindDetailsQuery, Mint: mint}, true
}

func matchPricePhrase(text, _ string) (Intent, bool) {
	if !rePrice.MatchString(text) {
		return Intent{}, false
	}
	mint := firstValidBase58(text)
	if mint == "" {
		return Intent{}, false
	}
	return Intent{Kind: KindPriceQuery, Mint: mint}, true
}

func matchStats(text, _ string) (Intent, bool) {
	if reStats.MatchString(text) {
		return Intent{Kind: KindStatsQuery}, true
	}
	return Intent{}, false
}

func matchAgentWallet(text, _ string) (Intent, bool) {
	if !reAgent.MatchString(text) {
		return Intent{}, false
	}
	lower := strings.ToLower(text)
	scope := ScopeAll
	switch {
	case strings.Contains(lower, "testnet"):
		scope = ScopeTestnet
	case strings.Contains(lower, "mainnet"):
		scope = ScopeMainnet
	case (strings.Contains(lower, "address") || strings.Contains(lower, "public key")) &&
		!strings.Contains(lower, "balance"):
		scope = ScopeAddress
	}
	return Intent{Kind: KindAgentWallet, Scope: scope}, true
}

func matchFaucet(text, _ string) (Intent, bool) {
	if !reFaucet.MatchString(text) {
		return Intent{}, false
	}
	// Address is optional; the dispatcher defaults to the agent wallet.
	return Intent{Kind: KindFaucetRequest, Address: firstValidBase58(text)}, true
}

func matchExplicitTransfer(text, _ string) (Intent, bool) {
	m := reSendSol.FindStringSubmatch(text)
	if m == nil {
		return Intent{}, false
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil || !validate.IsPositiveAmount(amount) || !validate.IsWellFormedAddress(m[2]) {
		return Intent{}, false
	}
	return Intent{Kind: KindTransfer, Amount: amount, Address: m[2]}, true
}

func matchTransferHint(text, _ string) (Intent, bool) {
	if reTransfer.MatchString(text) {
		return Intent{Kind: KindTransferHint}, true
	}
	return Intent{}, false
}

func matchPoolInfo(text, _ string) (Intent, bool) {
	if !rePoolWord.MatchString(text) {
		return Intent{}, false
	}
	id := firstValidBase58(text)
	if id == "" {
		return Intent{}, false
	}
	return Intent{Kind: KindPoolQuery, PoolID: id}, true
}

func matchSolSonic(text, _ string) (Intent, bool) {
	if reSolSonic.MatchString(text) {
		return Intent{Kind: KindPoolQuery, PoolID: SolSonicPoolID}, true
	}
	return Intent{}, false
}

func matchPoolList(text, _ string) (Intent, bool) {
	if rePoolList.MatchString(text) {
		return Intent{Kind: KindPoolList}, true
	}
	return Intent{}, false
}

// firstValidBase58 returns the first base58 token in text that passes the
// structural key check, or "".
func firstValidBase58(text string) string {
	for _, candidate := range reBase58.FindAllString(text, -1) {
		if validate.IsWellFormedAddress(candidate) {
			return candidate
		}
	}
	return ""
}
