package dex

// Well-known addresses on the Sonic chain, used by the classifier and the
// built-in fallback data.
const (
	// WSOLMint is the wrapped native asset mint.
	WSOLMint = "So11111111111111111111111111111111111111112"

	// SonicMint is the SONIC token mint.
	SonicMint = "SonicxvLud67EceaEzCLRnMTBqzYUUYNr93DBkBdDES"

	// SolSonicPoolID is the canonical SOL-SONIC pool.
	SolSonicPoolID = "4pMpYS3iEyR3tn8BeqvqxB7QCULegaiUC6puppPaaE8q"
)

// fallbackStats is served when the stats upstream stays down. The numbers
// are a recent snapshot, good enough for a degraded conversational answer.
var fallbackStats = Stats{
	TVL:      2_850_000,
	Volume24: 445_000,
	Fallback: true,
}

// fallbackPools is served when the pool listing upstream stays down.
var fallbackPools = []PoolSnapshot{
	{
		ID:        SolSonicPoolID,
		MintA:     TokenRef{Address: WSOLMint, Symbol: "SOL"},
		MintB:     TokenRef{Address: SonicMint, Symbol: "SONIC"},
		Price:     472.15,
		TVL:       1_240_000,
		Volume24h: 310_000,
		FeeRate:   0.0025,
	},
	{
		ID:        "FZQLwc6tHtnYm5C13yuLezTpP7Dn2Srrh8JimtcocpqS",
		MintA:     TokenRef{Address: SonicMint, Symbol: "SONIC"},
		MintB:     TokenRef{Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Symbol: "USDC"},
		Price:     0.3118,
		TVL:       860_000,
		Volume24h: 95_000,
		FeeRate:   0.0025,
	},
}

func fallbackPoolPage() *PoolPage {
	pools := make([]PoolSnapshot, len(fallbackPools))
	copy(pools, fallbackPools)
	return &PoolPage{
		Count:       len(pools),
		Pools:       pools,
		HasNextPage: false,
		Fallback:    true,
	}
}
