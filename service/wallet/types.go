package wallet

// TokenBalance is one SPL token holding owned by a wallet.
type TokenBalance struct {
	Mint     string  `json:"mint"`
	Amount   float64 `json:"amount"` // human units (uiAmount)
	Decimals uint8   `json:"decimals"`
}

// Balance is a point-in-time snapshot of a wallet's holdings. It is always
// fetched fresh, never cached.
type Balance struct {
	Lamports uint64         `json:"lamports"`
	SOL      float64        `json:"sol"`
	Tokens   []TokenBalance `json:"tokens"`

	// TokensUnavailable is set when the native balance was readable but
	// token enumeration failed; callers still get a usable result.
	TokensUnavailable bool `json:"tokens_unavailable,omitempty"`
}

// AgentInfo describes the agent's own wallet across its configured networks.
type AgentInfo struct {
	PublicKey      string   `json:"public_key"`
	Network        string   `json:"network"` // network transfers go out on
	Balance        float64  `json:"balance"` // SOL on the primary endpoint
	TestnetBalance *float64 `json:"testnet_balance,omitempty"`
	MainnetEnabled bool     `json:"mainnet_enabled"`
	TestnetPrimary bool     `json:"testnet_primary"`
}
