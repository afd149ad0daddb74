package dex

// TokenMetadata describes a token as reported by the DEX token list.
type TokenMetadata struct {
	Address  string   `json:"address"`
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	Decimals uint8    `json:"decimals"`
	LogoURI  string   `json:"logoURI,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// TokenRef is the minimal identity of one side of a pool.
type TokenRef struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
}

// PoolSnapshot is the normalized view of a liquidity pool. The upstream API
// has served two shapes over time; both are mapped into this one before
// anything downstream sees them.
type PoolSnapshot struct {
	ID        string   `json:"id"`
	MintA     TokenRef `json:"mint_a"`
	MintB     TokenRef `json:"mint_b"`
	Price     float64  `json:"price"`
	TVL       float64  `json:"tvl"`
	Volume24h float64  `json:"volume_24h"`
	FeeRate   float64  `json:"fee_rate,omitempty"`
}

// PoolPage is one page of the pool listing.
type PoolPage struct {
	Count       int            `json:"count"`
	Pools       []PoolSnapshot `json:"pools"`
	HasNextPage bool           `json:"has_next_page"`

	// Fallback is set when the page is the built-in snapshot served after
	// the upstream call ultimately failed.
	Fallback bool `json:"fallback,omitempty"`
}

// Stats is the chain-wide DEX summary.
type Stats struct {
	TVL      float64 `json:"tvl"`
	Volume24 float64 `json:"volume24"`
	Fallback bool    `json:"fallback,omitempty"`
}

// FaucetResult is the outcome of a faucet request. Semantic refusals (like
// the 24-hour cooldown) come back as a result, not an error; errors are
// reserved for transport failures.
type FaucetResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	AlreadyClaimed bool   `json:"already_claimed,omitempty"`
}

// SwapQuote is a computed swap estimate from the DEX quoting endpoint.
type SwapQuote struct {
	InputMint   string  `json:"input_mint"`
	OutputMint  string  `json:"output_mint"`
	InAmount    string  `json:"in_amount"`
	OutAmount   string  `json:"out_amount"`
	PriceImpact float64 `json:"price_impact"`
	SlippageBps int     `json:"slippage_bps"`
}
