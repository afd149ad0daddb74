// Package client is the Go HTTP client for the sonicbot API.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WalletBalance is the response of GET /wallet.
type WalletBalance struct {
	Address           string         `json:"address"`
	SOL               float64        `json:"sol"`
	Lamports          uint64         `json:"lamports"`
	Tokens            []TokenBalance `json:"tokens"`
	TokensUnavailable bool           `json:"tokensUnavailable"`
}

// TokenBalance is one token holding in a wallet balance.
type TokenBalance struct {
	Mint     string  `json:"mint"`
	Amount   float64 `json:"amount"`
	Decimals uint8   `json:"decimals"`
}

// NetworkInfo describes which network the agent wallet operates on.
type NetworkInfo struct {
	Network        string `json:"network"`
	TestnetPrimary bool   `json:"testnetPrimary"`
	MainnetEnabled bool   `json:"mainnetEnabled"`
}

// AgentWallet is the response of GET /agent-wallet.
type AgentWallet struct {
	PublicKey      string      `json:"publicKey"`
	Balance        float64     `json:"balance"`
	TestnetBalance *float64    `json:"testnetBalance,omitempty"`
	NetworkInfo    NetworkInfo `json:"networkInfo"`
}

// TransferReceipt is the response of POST /transaction.
type TransferReceipt struct {
	Signature   string      `json:"signature"`
	Lamports    uint64      `json:"lamports"`
	NetworkInfo NetworkInfo `json:"networkInfo"`
}

// TokenMetadata mirrors the token details payload.
type TokenMetadata struct {
	Address  string   `json:"address"`
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	Decimals uint8    `json:"decimals"`
	LogoURI  string   `json:"logoURI,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Pool mirrors the pool snapshot payload.
type Pool struct {
	ID        string   `json:"id"`
	MintA     TokenRef `json:"mint_a"`
	MintB     TokenRef `json:"mint_b"`
	Price     float64  `json:"price"`
	TVL       float64  `json:"tvl"`
	Volume24h float64  `json:"volume_24h"`
	FeeRate   float64  `json:"fee_rate,omitempty"`
}

// TokenRef identifies one side of a pool.
type TokenRef struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
}

// PoolPage is the response of GET /liquidity-pools.
type PoolPage struct {
	Count       int    `json:"count"`
	Pools       []Pool `json:"pools"`
	HasNextPage bool   `json:"hasNextPage"`
	Fallback    bool   `json:"fallback"`
}

// Stats is the response of GET /stats.
type Stats struct {
	TVL      float64 `json:"tvl"`
	Volume24 float64 `json:"volume24"`
	Fallback bool    `json:"fallback"`
}

// FaucetResult is the response of POST /faucet.
type FaucetResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	AlreadyClaimed bool   `json:"alreadyClaimed"`
}

// Message is one chat turn for POST /chat.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the HTTP client for the sonicbot service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new sonicbot API client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseErrorResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) parseErrorResponse(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}

// WalletBalance fetches the balance of an arbitrary wallet.
func (c *Client) WalletBalance(ctx context.Context, address string) (*WalletBalance, error) {
	var out WalletBalance
	if err := c.get(ctx, "/wallet?address="+url.QueryEscape(address), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AgentWallet fetches the service's own wallet info.
func (c *Client) AgentWallet(ctx context.Context) (*AgentWallet, error) {
	var out AgentWallet
	if err := c.get(ctx, "/agent-wallet", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transfer sends SOL from the agent wallet. amount follows the server's
// unit heuristic: values below one million are SOL, larger ones lamports.
func (c *Client) Transfer(ctx context.Context, recipient string, amount float64, forceMainnet bool) (*TransferReceipt, error) {
	var out TransferReceipt
	body := map[string]interface{}{
		"recipient":    recipient,
		"amount":       amount,
		"forceMainnet": forceMainnet,
	}
	if err := c.post(ctx, "/transaction", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TokenPrices fetches prices for one or more mints.
func (c *Client) TokenPrices(ctx context.Context, mints []string) (map[string]float64, error) {
	var out struct {
		Data map[string]float64 `json:"data"`
	}
	body := map[string]interface{}{"mintAddress": strings.Join(mints, ",")}
	if err := c.post(ctx, "/token-price", body, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// TokenDetails fetches metadata for a mint.
func (c *Client) TokenDetails(ctx context.Context, mint string) ([]TokenMetadata, error) {
	var out struct {
		Data []TokenMetadata `json:"data"`
	}
	if err := c.get(ctx, "/token-details?mintAddress="+url.QueryEscape(mint), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Pool fetches one liquidity pool.
func (c *Client) Pool(ctx context.Context, poolID string) (*Pool, error) {
	var out struct {
		Data *Pool `json:"data"`
	}
	if err := c.get(ctx, "/liquidity-pool?poolId="+url.QueryEscape(poolID), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Pools fetches one page of the pool listing.
func (c *Client) Pools(ctx context.Context, page, pageSize int) (*PoolPage, error) {
	var out PoolPage
	path := fmt.Sprintf("/liquidity-pools?page=%d&pageSize=%d", page, pageSize)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats fetches chain-wide TVL and volume.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.get(ctx, "/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Faucet requests test tokens for an address.
func (c *Client) Faucet(ctx context.Context, address string) (*FaucetResult, error) {
	var out FaucetResult
	if err := c.post(ctx, "/faucet", map[string]string{"address": address}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat streams a completion and invokes onChunk for each received piece.
// It returns the full reply.
func (c *Client) Chat(ctx context.Context, messages []Message, onChunk func(string)) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{"messages": messages})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.parseErrorResponse(resp)
	}

	var full bytes.Buffer
	reader := bufio.NewReader(resp.Body)
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			full.WriteString(chunk)
			if onChunk != nil {
				onChunk(chunk)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return full.String(), fmt.Errorf("stream interrupted: %w", err)
		}
	}
	return full.String(), nil
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
