package dex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sonic-agent/sonicbot/service/metrics"
)

// ErrNotFound indicates the upstream answered cleanly but had no record of
// the requested entity. Callers distinguish this from transport failures.
var ErrNotFound = errors.New("not found")

// maxResponseSize bounds how much of an upstream body we read.
const maxResponseSize = 4 << 20 // 4MB

// Client talks to the DEX HTTP API. One instance is shared by all adapters;
// it holds no per-request state.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewClient creates a DEX API client. If httpClient is nil a default with a
// 30 second timeout is used; individual operations apply stricter deadlines
// via context where their contracts require it.
func NewClient(baseURL string, httpClient *http.Client, m *metrics.Metrics, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
		metrics: m,
	}
}

// apiEnvelope is the common response wrapper used by the DEX API.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Msg     string          `json:"msg"`
}

// getJSON performs a GET against path (already including query params),
// unwraps the API envelope, and unmarshals data into out.
func (c *Client) getJSON(ctx context.Context, operation, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(operation, req, out)
}

// postJSON performs a POST with a JSON body, unwraps the envelope, and
// unmarshals data into out. out may be nil when only success matters.
func (c *Client) postJSON(ctx context.Context, operation, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(operation, req, out)
}

func (c *Client) do(operation string, req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start).Seconds()

	if err != nil {
		c.metrics.RecordDexCall(operation, "error", duration)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.metrics.RecordDexCall(operation, "error", duration)
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordDexCall(operation, statusLabel(resp.StatusCode), duration)
		return fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.metrics.RecordDexCall(operation, "error", duration)
		return fmt.Errorf("malformed response body: %w", err)
	}
	if !envelope.Success {
		c.metrics.RecordDexCall(operation, "upstream_error", duration)
		msg := envelope.Msg
		if msg == "" {
			msg = "upstream reported failure"
		}
		return errors.New(msg)
	}

	c.metrics.RecordDexCall(operation, "success", duration)

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("unexpected data shape: %w", err)
	}
	return nil
}

func statusLabel(code int) string {
	if code == http.StatusTooManyRequests {
		return "rate_limited"
	}
	return fmt.Sprintf("http_%d", code)
}

func truncateBody(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
