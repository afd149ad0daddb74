package dex

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// detailsTimeout bounds the token metadata lookup; the upstream token list
// endpoint is occasionally very slow and the caller is a chat turn.
const detailsTimeout = 15 * time.Second

// GetTokenDetails fetches metadata for a token mint. An empty upstream
// result is ErrNotFound, which is distinct from a transport failure.
func (c *Client) GetTokenDetails(ctx context.Context, mint string) ([]TokenMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, detailsTimeout)
	defer cancel()

	var data []TokenMetadata
	path := "/api/mint/ids?mints=" + url.QueryEscape(mint)
	if err := c.getJSON(ctx, "GetTokenDetails", path, &data); err != nil {
		return nil, err
	}

	// The endpoint returns an array with null entries for unknown mints.
	found := data[:0]
	for _, md := range data {
		if md.Address != "" {
			found = append(found, md)
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("token %s: %w", mint, ErrNotFound)
	}

	return found, nil
}
