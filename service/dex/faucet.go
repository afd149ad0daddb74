package dex

import (
	"context"
	"strings"
)

// RequestFaucet asks the faucet to send test tokens to the address. A
// cooldown refusal (one claim per 24 hours) is a semantic outcome reported
// in the result, not an error; errors mean the request itself failed.
func (c *Client) RequestFaucet(ctx context.Context, address string) (*FaucetResult, error) {
	body := map[string]string{"address": address}

	err := c.postJSON(ctx, "RequestFaucet", "/api/faucet", body, nil)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "24 hour") {
			return &FaucetResult{
				Success:        false,
				Message:        msg,
				AlreadyClaimed: true,
			}, nil
		}
		return nil, err
	}

	return &FaucetResult{
		Success: true,
		Message: "Faucet tokens sent. They should arrive within a minute.",
	}, nil
}
