package dex

import (
	"context"
	"time"

	"github.com/sonic-agent/sonicbot/service/retry"
)

// statsTimeout bounds each stats attempt; the endpoint should be fast and
// a chat turn is waiting on it.
const statsTimeout = 5 * time.Second

var statsPolicy = retry.Policy{
	MaxAttempts: 3,
	Backoff:     retry.ExponentialBackoff(500 * time.Millisecond),
}

// GetStats fetches the chain-wide TVL and 24h volume, retrying with backoff.
// On persistent failure a fixed built-in snapshot is returned so stats
// queries degrade instead of erroring.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var data struct {
		TVL      float64 `json:"tvl"`
		Volume24 float64 `json:"volume24"`
	}

	err := statsPolicy.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, statsTimeout)
		defer cancel()

		err := c.getJSON(attemptCtx, "GetStats", "/api/main/info", &data)
		if err != nil {
			c.metrics.RecordDexRetry("GetStats", retryReason(err))
		}
		return err
	})
	if err != nil {
		c.logger.WarnContext(ctx, "stats upstream exhausted, serving built-in fallback", "error", err)
		c.metrics.RecordDexFallback("GetStats")
		fb := fallbackStats
		return &fb, nil
	}

	return &Stats{TVL: data.TVL, Volume24: data.Volume24}, nil
}
