// Package server exposes the HTTP surface: wallet reads, transfers, DEX
// proxies, and the streaming chat endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sonic-agent/sonicbot/service/agent"
	"github.com/sonic-agent/sonicbot/service/dex"
	"github.com/sonic-agent/sonicbot/service/llm"
	"github.com/sonic-agent/sonicbot/service/metrics"
)

// DexAPI is the DEX surface the HTTP handlers need; dex.Client implements
// it.
type DexAPI interface {
	agent.DexService
	ComputeSwap(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*dex.SwapQuote, error)
}

// Server is the HTTP front-end. The agent wallet and completer are
// optional; their endpoints answer with a clear error when absent.
type Server struct {
	addr      string
	balances  agent.BalanceService
	wallet    agent.AgentWallet
	dex       DexAPI
	completer llm.Completer
	metrics   *metrics.Metrics
	logger    *slog.Logger
	server    *http.Server
}

// Params collects the server's dependencies.
type Params struct {
	Addr      string
	Balances  agent.BalanceService
	Wallet    agent.AgentWallet
	Dex       DexAPI
	Completer llm.Completer
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

func New(p Params) *Server {
	return &Server{
		addr:      p.Addr,
		balances:  p.Balances,
		wallet:    p.Wallet,
		dex:       p.Dex,
		completer: p.Completer,
		metrics:   p.Metrics,
		logger:    p.Logger,
	}
}

// Handler builds the full route tree. Exposed separately from Start so
// tests can drive it through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	route := func(pattern, name string, h http.Handler) {
		mux.Handle(pattern, metrics.HTTPMetricsMiddleware(s.metrics, name)(h))
	}

	route("GET /wallet", "wallet", handleGetWallet(s.balances, s.logger))
	route("POST /wallet", "wallet", handleGetWallet(s.balances, s.logger))

	route("GET /agent-wallet", "agent_wallet", handleAgentWallet(s.wallet, s.logger))
	route("POST /agent-wallet", "agent_wallet", handleAgentWallet(s.wallet, s.logger))

	route("GET /transaction", "transaction", handleAgentWallet(s.wallet, s.logger))
	route("POST /transaction", "transaction", handleTransfer(s.wallet, s.logger))

	route("POST /faucet", "faucet", handleFaucet(s.dex, s.logger))

	route("GET /token-price", "token_price", handleTokenPrice(s.dex, s.logger))
	route("POST /token-price", "token_price", handleTokenPrice(s.dex, s.logger))

	route("GET /token-details", "token_details", handleTokenDetails(s.dex, s.logger))
	route("POST /token-details", "token_details", handleTokenDetails(s.dex, s.logger))

	route("GET /liquidity-pool", "liquidity_pool", handleLiquidityPool(s.dex, s.logger))
	route("POST /liquidity-pool", "liquidity_pool", handleLiquidityPool(s.dex, s.logger))
	route("GET /liquidity-pools", "liquidity_pools", handleLiquidityPools(s.dex, s.logger))
	route("POST /liquidity-pools", "liquidity_pools", handleLiquidityPools(s.dex, s.logger))

	route("GET /stats", "stats", handleStats(s.dex, s.logger))

	route("POST /chat", "chat", handleChat(s.completer, s.logger))

	route("POST /swap/compute", "swap_compute", handleSwapCompute(s.dex, s.logger))
	route("POST /swap/check-balance", "swap_check_balance", handleSwapCheckBalance(s.balances, s.logger))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	return corsMiddleware(mux)
}

// Start runs the server until ListenAndServe returns.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:        s.addr,
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: /chat streams completions of unbounded duration.
		IdleTimeout: 60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
