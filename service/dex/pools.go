package dex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/sonic-agent/sonicbot/service/retry"
)

// rawPool covers both shapes the pool endpoints have served: the current
// one (id/price/tvl/day.volume/mintA/mintB) and the legacy one
// (ammId/lpPrice/liquidity/volume24h/baseMint/quoteMint). Exactly one set
// of fields is populated per record; normalizePool maps either into
// PoolSnapshot so nothing downstream ever probes shapes.
type rawPool struct {
	// current shape
	ID      string   `json:"id"`
	Price   float64  `json:"price"`
	TVL     float64  `json:"tvl"`
	FeeRate float64  `json:"feeRate"`
	MintA   *rawMint `json:"mintA"`
	MintB   *rawMint `json:"mintB"`
	Day     struct {
		Volume float64 `json:"volume"`
	} `json:"day"`

	// legacy shape
	AmmID     string  `json:"ammId"`
	LpPrice   float64 `json:"lpPrice"`
	Liquidity float64 `json:"liquidity"`
	Volume24h float64 `json:"volume24h"`
	BaseMint  string  `json:"baseMint"`
	QuoteMint string  `json:"quoteMint"`
	BaseSym   string  `json:"baseSymbol"`
	QuoteSym  string  `json:"quoteSymbol"`
}

type rawMint struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
}

func normalizePool(raw rawPool) PoolSnapshot {
	if raw.ID != "" {
		snap := PoolSnapshot{
			ID:        raw.ID,
			Price:     raw.Price,
			TVL:       raw.TVL,
			Volume24h: raw.Day.Volume,
			FeeRate:   raw.FeeRate,
		}
		if raw.MintA != nil {
			snap.MintA = TokenRef{Address: raw.MintA.Address, Symbol: raw.MintA.Symbol}
		}
		if raw.MintB != nil {
			snap.MintB = TokenRef{Address: raw.MintB.Address, Symbol: raw.MintB.Symbol}
		}
		return snap
	}

	return PoolSnapshot{
		ID:        raw.AmmID,
		MintA:     TokenRef{Address: raw.BaseMint, Symbol: raw.BaseSym},
		MintB:     TokenRef{Address: raw.QuoteMint, Symbol: raw.QuoteSym},
		Price:     raw.LpPrice,
		TVL:       raw.Liquidity,
		Volume24h: raw.Volume24h,
	}
}

// GetPoolByID fetches a single pool snapshot. Every call sends a unique
// cache-busting parameter so intermediaries never serve a stale snapshot.
func (c *Client) GetPoolByID(ctx context.Context, poolID string) (*PoolSnapshot, error) {
	path := fmt.Sprintf("/api/pools/info/ids?ids=%s&_=%d",
		url.QueryEscape(poolID), time.Now().UnixNano())

	var data []rawPool
	if err := c.getJSON(ctx, "GetPoolByID", path, &data); err != nil {
		return nil, err
	}

	for _, raw := range data {
		snap := normalizePool(raw)
		if snap.ID != "" {
			return &snap, nil
		}
	}
	return nil, fmt.Errorf("pool %s: %w", poolID, ErrNotFound)
}

// listPoolsPolicy retries rate-limited or failing list calls a few times
// before the built-in fallback takes over.
var listPoolsPolicy = retry.Policy{
	MaxAttempts: 3,
	Backoff:     retry.ExponentialBackoff(500 * time.Millisecond),
}

// poolListData is the paged payload inside the envelope.
type poolListData struct {
	Count       int               `json:"count"`
	Data        []json.RawMessage `json:"data"`
	HasNextPage bool              `json:"hasNextPage"`
}

// ListPools fetches one page of the pool listing, retrying with backoff on
// rate limits and network errors. If the upstream ultimately fails, the
// built-in pool snapshot is returned so the caller always gets some list.
func (c *Client) ListPools(ctx context.Context, page, pageSize int) (*PoolPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	path := fmt.Sprintf("/api/pools/info/list?page=%d&pageSize=%d&poolSortField=default&sortType=desc",
		page, pageSize)

	var data poolListData
	err := listPoolsPolicy.Do(ctx, func(ctx context.Context) error {
		err := c.getJSON(ctx, "ListPools", path, &data)
		if err != nil {
			c.metrics.RecordDexRetry("ListPools", retryReason(err))
		}
		return err
	})
	if err != nil {
		c.logger.WarnContext(ctx, "pool list upstream exhausted, serving built-in fallback", "error", err)
		c.metrics.RecordDexFallback("ListPools")
		return fallbackPoolPage(), nil
	}

	pools := make([]PoolSnapshot, 0, len(data.Data))
	for _, rawMsg := range data.Data {
		var raw rawPool
		if err := json.Unmarshal(rawMsg, &raw); err != nil {
			c.logger.DebugContext(ctx, "skipping unparseable pool record", "error", err)
			continue
		}
		if snap := normalizePool(raw); snap.ID != "" {
			pools = append(pools, snap)
		}
	}

	return &PoolPage{
		Count:       data.Count,
		Pools:       pools,
		HasNextPage: data.HasNextPage,
	}, nil
}

func retryReason(err error) string {
	if retry.IsRateLimited(err) {
		return "rate_limit"
	}
	return "error"
}
