package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonic-agent/sonicbot/service/dex"
	"github.com/sonic-agent/sonicbot/service/llm"
	"github.com/sonic-agent/sonicbot/service/wallet"
)

const (
	testAddress   = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	testRecipient = "8xiv9G1gYEXcWcwg9YVgbCUeEPB4XbRSr6WDwJGTXNDU"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type stubBalances struct {
	balance *wallet.Balance
	err     error
	calls   int
}

func (s *stubBalances) GetBalance(_ context.Context, _ string) (*wallet.Balance, error) {
	s.calls++
	return s.balance, s.err
}

type stubWallet struct {
	info    *wallet.AgentInfo
	sendErr error

	sendCalls int
	lastForce bool
}

func (s *stubWallet) PublicKey() string { return testAddress }

func (s *stubWallet) IsTestnetPrimary() bool { return true }

func (s *stubWallet) Network() string { return "testnet" }

func (s *stubWallet) Info(_ context.Context) (*wallet.AgentInfo, error) {
	return s.info, nil
}

func (s *stubWallet) Send(_ context.Context, _ string, _ uint64, force bool) (solana.Signature, error) {
	s.sendCalls++
	s.lastForce = force
	if s.sendErr != nil {
		return solana.Signature{}, s.sendErr
	}
	return solana.Signature{0xAB}, nil
}

type stubDex struct {
	prices  map[string]float64
	details []dex.TokenMetadata
	pool    *dex.PoolSnapshot
	page    *dex.PoolPage
	stats   *dex.Stats
	faucet  *dex.FaucetResult
	quote   *dex.SwapQuote
	err     error
}

func (s *stubDex) GetTokenPrices(_ context.Context, mints []string) (map[string]float64, error) {
	if len(validMints(mints)) == 0 {
		return nil, dex.ErrNoValidMints
	}
	return s.prices, s.err
}

func validMints(mints []string) []string {
	var out []string
	for _, m := range mints {
		if len(m) >= 32 {
			out = append(out, m)
		}
	}
	return out
}

func (s *stubDex) GetTokenDetails(_ context.Context, _ string) ([]dex.TokenMetadata, error) {
	if s.details == nil {
		return nil, dex.ErrNotFound
	}
	return s.details, s.err
}

func (s *stubDex) GetPoolByID(_ context.Context, _ string) (*dex.PoolSnapshot, error) {
	if s.pool == nil {
		return nil, dex.ErrNotFound
	}
	return s.pool, s.err
}

func (s *stubDex) ListPools(_ context.Context, _, _ int) (*dex.PoolPage, error) {
	return s.page, s.err
}

func (s *stubDex) GetStats(_ context.Context) (*dex.Stats, error) {
	return s.stats, s.err
}

func (s *stubDex) RequestFaucet(_ context.Context, _ string) (*dex.FaucetResult, error) {
	return s.faucet, s.err
}

func (s *stubDex) ComputeSwap(_ context.Context, _, _ string, _ uint64, slippageBps int) (*dex.SwapQuote, error) {
	if s.quote != nil && slippageBps > 0 {
		s.quote.SlippageBps = slippageBps
	}
	return s.quote, s.err
}

func newTestServer(t *testing.T, p Params) *httptest.Server {
	t.Helper()
	p.Logger = testLogger()
	srv := httptest.NewServer(New(p).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestWalletEndpoint(t *testing.T) {
	balances := &stubBalances{balance: &wallet.Balance{Lamports: 1_500_000_000, SOL: 1.5}}
	srv := newTestServer(t, Params{Balances: balances})

	resp, err := http.Get(srv.URL + "/wallet?address=" + testAddress)
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 1.5, body["sol"])
}

func TestWalletEndpoint_InvalidAddress(t *testing.T) {
	balances := &stubBalances{}
	srv := newTestServer(t, Params{Balances: balances})

	resp, err := http.Get(srv.URL + "/wallet?address=short")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Zero(t, balances.calls)
}

func TestAgentWalletEndpoint_NotConfigured(t *testing.T) {
	srv := newTestServer(t, Params{})

	resp, err := http.Get(srv.URL + "/agent-wallet")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestTransferEndpoint(t *testing.T) {
	aw := &stubWallet{info: &wallet.AgentInfo{PublicKey: testAddress, Network: "testnet", TestnetPrimary: true}}
	srv := newTestServer(t, Params{Wallet: aw})

	resp, err := http.Post(srv.URL+"/transaction", "application/json",
		strings.NewReader(`{"recipient":"`+testRecipient+`","amount":0.5}`))
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["signature"])
	assert.Equal(t, float64(500_000_000), body["lamports"])
	assert.Equal(t, 1, aw.sendCalls)
	assert.False(t, aw.lastForce)
}

func TestTransferEndpoint_MainnetRefusal(t *testing.T) {
	aw := &stubWallet{sendErr: wallet.ErrMainnetDisabled}
	srv := newTestServer(t, Params{Wallet: aw})

	resp, err := http.Post(srv.URL+"/transaction", "application/json",
		strings.NewReader(`{"recipient":"`+testRecipient+`","amount":1}`))
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body["error"], "mainnet")
}

func TestTransferEndpoint_ValidatesInput(t *testing.T) {
	aw := &stubWallet{}
	srv := newTestServer(t, Params{Wallet: aw})

	tests := []struct {
		name string
		body string
	}{
		{"bad recipient", `{"recipient":"nope","amount":1}`},
		{"zero amount", `{"recipient":"` + testRecipient + `","amount":0}`},
		{"missing amount", `{"recipient":"` + testRecipient + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/transaction", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	assert.Zero(t, aw.sendCalls)
}

func TestTokenPriceEndpoint(t *testing.T) {
	dx := &stubDex{prices: map[string]float64{dex.SonicMint: 0.245}}
	srv := newTestServer(t, Params{Dex: dx})

	resp, err := http.Get(srv.URL + "/token-price?mintAddress=" + dex.SonicMint)
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 0.245, data[dex.SonicMint])
}

func TestTokenPriceEndpoint_NoValidMints(t *testing.T) {
	srv := newTestServer(t, Params{Dex: &stubDex{}})

	resp, err := http.Get(srv.URL + "/token-price?mintAddress=badmint!")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No valid token mint addresses provided", body["error"])
}

func TestTokenDetailsEndpoint_NotFound(t *testing.T) {
	srv := newTestServer(t, Params{Dex: &stubDex{}})

	resp, err := http.Get(srv.URL + "/token-details?mintAddress=" + dex.SonicMint)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLiquidityPoolsEndpoint_FallbackStillSucceeds(t *testing.T) {
	dx := &stubDex{page: &dex.PoolPage{
		Count:    2,
		Pools:    []dex.PoolSnapshot{{ID: dex.SolSonicPoolID}},
		Fallback: true,
	}}
	srv := newTestServer(t, Params{Dex: dx})

	resp, err := http.Get(srv.URL + "/liquidity-pools")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["fallback"])
}

func TestStatsEndpoint(t *testing.T) {
	dx := &stubDex{stats: &dex.Stats{TVL: 3_100_000, Volume24: 510_000}}
	srv := newTestServer(t, Params{Dex: dx})

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3_100_000), body["tvl"])
}

func TestFaucetEndpoint_AlreadyClaimed(t *testing.T) {
	dx := &stubDex{faucet: &dex.FaucetResult{
		Success:        false,
		Message:        "This wallet already claimed in the last 24 hours",
		AlreadyClaimed: true,
	}}
	srv := newTestServer(t, Params{Dex: dx})

	resp, err := http.Post(srv.URL+"/faucet", "application/json",
		strings.NewReader(`{"address":"`+testAddress+`"}`))
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, true, body["alreadyClaimed"])
	assert.Contains(t, body["message"], "24 hours")
}

func TestChatEndpoint_StreamsPlainText(t *testing.T) {
	completer := &llm.MockCompleter{}
	srv := newTestServer(t, Params{Completer: completer})

	resp, err := http.Post(srv.URL+"/chat", "application/json",
		strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "mock reply", string(body))
	assert.Equal(t, 1, completer.StreamCalls)
}

func TestChatEndpoint_RequiresMessages(t *testing.T) {
	srv := newTestServer(t, Params{Completer: &llm.MockCompleter{}})

	resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{"messages":[]}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSwapCheckBalanceEndpoint(t *testing.T) {
	balances := &stubBalances{balance: &wallet.Balance{Lamports: 2_000_000_000, SOL: 2}}
	srv := newTestServer(t, Params{Balances: balances})

	resp, err := http.Post(srv.URL+"/swap/check-balance", "application/json",
		strings.NewReader(`{"address":"`+testAddress+`","amount":1.5}`))
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["sufficient"])
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, Params{Dex: &stubDex{stats: &dex.Stats{}}})

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/stats", nil)
	require.NoError(t, err)
	preflight, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	preflight.Body.Close()
	assert.Equal(t, http.StatusNoContent, preflight.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, Params{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
