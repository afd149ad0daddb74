package dex

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sonic-agent/sonicbot/service/validate"
)

// ErrNoValidMints is returned when none of the supplied mint addresses pass
// structural validation; no network call is made in that case.
var ErrNoValidMints = errors.New("No valid token mint addresses provided")

// maxPriceFanout caps how many price lookups run concurrently.
const maxPriceFanout = 8

// GetTokenPrices fetches current prices for the given mints, one upstream
// call per mint in parallel. Mints that fail validation are dropped up
// front. A mint whose lookup fails or that the DEX has no price for is
// simply absent from the result; the call errors only when every lookup
// failed.
func (c *Client) GetTokenPrices(ctx context.Context, mints []string) (map[string]float64, error) {
	valid := validate.FilterValidMints(mints)
	if len(valid) == 0 {
		return nil, ErrNoValidMints
	}

	var mu sync.Mutex
	prices := make(map[string]float64)
	failures := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPriceFanout)

	for _, mint := range valid {
		mint := mint
		g.Go(func() error {
			price, err := c.fetchPrice(gctx, mint)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Partial failures are tolerated; the mint is just
				// absent from the map.
				c.logger.DebugContext(gctx, "price lookup failed", "mint", mint, "error", err)
				failures++
				return nil
			}
			if price != nil {
				prices[mint] = *price
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(prices) == 0 && failures == len(valid) {
		return nil, errors.New("failed to fetch prices for all requested mints")
	}

	return prices, nil
}

// fetchPrice returns nil (no error) when the DEX has no price for the mint.
func (c *Client) fetchPrice(ctx context.Context, mint string) (*float64, error) {
	var data map[string]string
	path := "/api/mint/price?mints=" + url.QueryEscape(mint)
	if err := c.getJSON(ctx, "GetTokenPrices", path, &data); err != nil {
		return nil, err
	}

	raw, ok := data[mint]
	if !ok || raw == "" {
		return nil, nil
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, nil
	}
	return &price, nil
}
