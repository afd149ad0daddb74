package dex

import (
	"context"
	"fmt"
	"net/url"
)

// ComputeSwap asks the DEX quoting endpoint for a swap estimate. amount is
// in the input token's base units; slippageBps is basis points.
func (c *Client) ComputeSwap(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*SwapQuote, error) {
	if slippageBps <= 0 {
		slippageBps = 50
	}

	path := fmt.Sprintf("/api/swap/compute/swap-base-in?inputMint=%s&outputMint=%s&amount=%d&slippageBps=%d",
		url.QueryEscape(inputMint), url.QueryEscape(outputMint), amount, slippageBps)

	var data struct {
		InputMint    string  `json:"inputMint"`
		OutputMint   string  `json:"outputMint"`
		InputAmount  string  `json:"inputAmount"`
		OutputAmount string  `json:"outputAmount"`
		PriceImpact  float64 `json:"priceImpactPct"`
	}
	if err := c.getJSON(ctx, "ComputeSwap", path, &data); err != nil {
		return nil, err
	}

	return &SwapQuote{
		InputMint:   data.InputMint,
		OutputMint:  data.OutputMint,
		InAmount:    data.InputAmount,
		OutAmount:   data.OutputAmount,
		PriceImpact: data.PriceImpact,
		SlippageBps: slippageBps,
	}, nil
}
