package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sonic-agent/sonicbot/service/agent"
	"github.com/sonic-agent/sonicbot/service/dex"
	"github.com/sonic-agent/sonicbot/service/llm"
	"github.com/sonic-agent/sonicbot/service/validate"
	"github.com/sonic-agent/sonicbot/service/wallet"
)

const maxRequestBodySize = 1 << 20 // 1MB

// params reads request inputs uniformly from the JSON body (POST) or the
// query string (GET), so every endpoint can serve both.
type params struct {
	body map[string]json.RawMessage
	r    *http.Request
}

func readParams(r *http.Request) params {
	p := params{r: r}
	if r.Method == http.MethodPost && r.Body != nil {
		var body map[string]json.RawMessage
		dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBodySize))
		if err := dec.Decode(&body); err == nil {
			p.body = body
		}
	}
	return p
}

func (p params) str(key string) string {
	if raw, ok := p.body[key]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return p.r.URL.Query().Get(key)
}

func (p params) num(key string) (float64, bool) {
	if raw, ok := p.body[key]; ok {
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return n, true
		}
	}
	if s := p.r.URL.Query().Get(key); s != "" {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func (p params) boolean(key string) bool {
	if raw, ok := p.body[key]; ok {
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return b
		}
	}
	return p.r.URL.Query().Get(key) == "true"
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response with success=false.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, map[string]interface{}{
		"success": false,
		"error":   message,
	}, statusCode)
}

// handleGetWallet returns the balance of an arbitrary wallet.
// GET/POST /wallet with {address}.
func handleGetWallet(balances agent.BalanceService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := readParams(r).str("address")
		if !validate.IsWellFormedAddress(address) {
			writeError(w, "invalid address format", http.StatusBadRequest)
			return
		}

		balance, err := balances.GetBalance(r.Context(), address)
		if err != nil {
			logger.Error("balance lookup failed", "address", address, "error", err)
			writeError(w, "failed to fetch balance", http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]interface{}{
			"success":           true,
			"address":           address,
			"sol":               balance.SOL,
			"lamports":          balance.Lamports,
			"tokens":            balance.Tokens,
			"tokensUnavailable": balance.TokensUnavailable,
		}, http.StatusOK)
	})
}

func networkInfo(info *wallet.AgentInfo) map[string]interface{} {
	return map[string]interface{}{
		"network":        info.Network,
		"testnetPrimary": info.TestnetPrimary,
		"mainnetEnabled": info.MainnetEnabled,
	}
}

// handleAgentWallet reports the service's own wallet.
// GET/POST /agent-wallet and GET /transaction.
func handleAgentWallet(aw agent.AgentWallet, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if aw == nil {
			writeError(w, "agent wallet is not configured", http.StatusServiceUnavailable)
			return
		}

		info, err := aw.Info(r.Context())
		if err != nil {
			logger.Error("agent wallet info failed", "error", err)
			writeError(w, "failed to fetch agent wallet info", http.StatusBadGateway)
			return
		}

		resp := map[string]interface{}{
			"success":     true,
			"publicKey":   info.PublicKey,
			"balance":     info.Balance,
			"networkInfo": networkInfo(info),
		}
		if info.TestnetBalance != nil {
			resp["testnetBalance"] = *info.TestnetBalance
		}
		writeJSON(w, resp, http.StatusOK)
	})
}

// handleTransfer sends SOL from the agent wallet.
// POST /transaction with {recipient, amount, forceMainnet?}.
func handleTransfer(aw agent.AgentWallet, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if aw == nil {
			writeError(w, "agent wallet is not configured", http.StatusServiceUnavailable)
			return
		}

		p := readParams(r)
		recipient := p.str("recipient")
		amount, ok := p.num("amount")
		forceMainnet := p.boolean("forceMainnet")

		if !validate.IsWellFormedAddress(recipient) {
			writeError(w, "invalid recipient address format", http.StatusBadRequest)
			return
		}
		if !ok || !validate.IsPositiveAmount(amount) {
			writeError(w, "amount must be a positive number", http.StatusBadRequest)
			return
		}

		lamports := wallet.NormalizeLamports(amount)
		sig, err := aw.Send(r.Context(), recipient, lamports, forceMainnet)
		if err != nil {
			status := http.StatusBadGateway
			switch {
			case errors.Is(err, wallet.ErrMainnetDisabled):
				status = http.StatusForbidden
			case errors.Is(err, wallet.ErrInsufficientBalance):
				status = http.StatusBadRequest
			}
			logger.Error("transfer failed", "recipient", recipient, "error", err)
			writeError(w, err.Error(), status)
			return
		}

		info, infoErr := aw.Info(r.Context())
		resp := map[string]interface{}{
			"success":   true,
			"signature": sig.String(),
			"lamports":  lamports,
		}
		if infoErr == nil {
			resp["networkInfo"] = networkInfo(info)
		}
		writeJSON(w, resp, http.StatusOK)
	})
}

// handleFaucet requests test tokens for an address.
// POST /faucet with {address}.
func handleFaucet(dexAPI agent.DexService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := readParams(r).str("address")
		if !validate.IsWellFormedAddress(address) {
			writeError(w, "invalid address format", http.StatusBadRequest)
			return
		}

		res, err := dexAPI.RequestFaucet(r.Context(), address)
		if err != nil {
			logger.Error("faucet request failed", "address", address, "error", err)
			writeError(w, "faucet request failed", http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]interface{}{
			"success":        res.Success,
			"message":        res.Message,
			"alreadyClaimed": res.AlreadyClaimed,
		}, http.StatusOK)
	})
}

// handleTokenPrice fetches prices for one or more mints.
// GET/POST /token-price with {mintAddress}, comma-separated for several.
func handleTokenPrice(dexAPI agent.DexService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := readParams(r).str("mintAddress")
		mints := strings.Split(raw, ",")
		for i := range mints {
			mints[i] = strings.TrimSpace(mints[i])
		}

		prices, err := dexAPI.GetTokenPrices(r.Context(), mints)
		if err != nil {
			if errors.Is(err, dex.ErrNoValidMints) {
				writeError(w, err.Error(), http.StatusBadRequest)
				return
			}
			logger.Error("price lookup failed", "mints", raw, "error", err)
			writeError(w, "failed to fetch prices", http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]interface{}{
			"success": true,
			"data":    prices,
		}, http.StatusOK)
	})
}

// handleTokenDetails fetches metadata for a mint.
// GET/POST /token-details with {mintAddress}.
func handleTokenDetails(dexAPI agent.DexService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mint := readParams(r).str("mintAddress")
		if !validate.IsWellFormedMint(mint) {
			writeError(w, "invalid token mint address format", http.StatusBadRequest)
			return
		}

		details, err := dexAPI.GetTokenDetails(r.Context(), mint)
		if err != nil {
			if errors.Is(err, dex.ErrNotFound) {
				writeError(w, "token not found", http.StatusNotFound)
				return
			}
			logger.Error("token details lookup failed", "mint", mint, "error", err)
			writeError(w, "failed to fetch token details", http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]interface{}{
			"success": true,
			"data":    details,
		}, http.StatusOK)
	})
}

// handleLiquidityPool fetches one pool.
// GET/POST /liquidity-pool with {poolId}.
func handleLiquidityPool(dexAPI agent.DexService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		poolID := readParams(r).str("poolId")
		if !validate.IsWellFormedPoolID(poolID) {
			writeError(w, "invalid pool id format", http.StatusBadRequest)
			return
		}

		pool, err := dexAPI.GetPoolByID(r.Context(), poolID)
		if err != nil {
			if errors.Is(err, dex.ErrNotFound) {
				writeError(w, "pool not found", http.StatusNotFound)
				return
			}
			logger.Error("pool lookup failed", "pool_id", poolID, "error", err)
			writeError(w, "failed to fetch pool", http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]interface{}{
			"success": true,
			"data":    pool,
		}, http.StatusOK)
	})
}

// handleLiquidityPools lists pools; the adapter serves a built-in fallback
// page when the upstream is down, so this endpoint only fails on bad input.
// GET/POST /liquidity-pools with optional {page, pageSize}.
func handleLiquidityPools(dexAPI agent.DexService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := readParams(r)
		page, _ := p.num("page")
		pageSize, _ := p.num("pageSize")

		result, err := dexAPI.ListPools(r.Context(), int(page), int(pageSize))
		if err != nil {
			logger.Error("pool list failed", "error", err)
			writeError(w, "failed to fetch pools", http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]interface{}{
			"success":     true,
			"count":       result.Count,
			"pools":       result.Pools,
			"hasNextPage": result.HasNextPage,
			"fallback":    result.Fallback,
		}, http.StatusOK)
	})
}

// handleStats reports chain-wide TVL and volume.
// GET /stats.
func handleStats(dexAPI agent.DexService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats, err := dexAPI.GetStats(r.Context())
		if err != nil {
			logger.Error("stats lookup failed", "error", err)
			writeError(w, "failed to fetch stats", http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]interface{}{
			"success":  true,
			"tvl":      stats.TVL,
			"volume24": stats.Volume24,
			"fallback": stats.Fallback,
		}, http.StatusOK)
	})
}

// chatRequest is the body of POST /chat.
type chatRequest struct {
	Messages []llm.Message `json:"messages"`
}

// handleChat streams completion tokens as a chunked plain-text body.
// POST /chat with {messages: [{role, content}]}.
func handleChat(completer llm.Completer, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if completer == nil {
			writeError(w, "chat is not configured", http.StatusServiceUnavailable)
			return
		}

		var req chatRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
		if err := dec.Decode(&req); err != nil {
			writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if len(req.Messages) == 0 {
			writeError(w, "messages are required", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, "streaming is not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)

		_, err := completer.StreamComplete(r.Context(), req.Messages, func(chunk string) error {
			if _, err := fmt.Fprint(w, chunk); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		})
		if err != nil {
			// Headers are already out; all we can do is log and stop.
			logger.Error("chat stream failed", "error", err)
		}
	})
}

// handleSwapCompute quotes a swap.
// POST /swap/compute with {inputMint, outputMint, amount, slippageBps?}.
func handleSwapCompute(dexAPI DexAPI, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := readParams(r)
		inputMint := p.str("inputMint")
		outputMint := p.str("outputMint")
		amount, ok := p.num("amount")
		slippage, _ := p.num("slippageBps")

		if !validate.IsWellFormedMint(inputMint) || !validate.IsWellFormedMint(outputMint) {
			writeError(w, "invalid token mint address format", http.StatusBadRequest)
			return
		}
		if !ok || !validate.IsPositiveAmount(amount) {
			writeError(w, "amount must be a positive number", http.StatusBadRequest)
			return
		}

		quote, err := dexAPI.ComputeSwap(r.Context(), inputMint, outputMint, uint64(amount), int(slippage))
		if err != nil {
			logger.Error("swap compute failed", "error", err)
			writeError(w, "failed to compute swap", http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]interface{}{
			"success": true,
			"data":    quote,
		}, http.StatusOK)
	})
}

// handleSwapCheckBalance reports whether a wallet can cover an amount of
// SOL.
// POST /swap/check-balance with {address, amount}.
func handleSwapCheckBalance(balances agent.BalanceService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := readParams(r)
		address := p.str("address")
		amount, ok := p.num("amount")

		if !validate.IsWellFormedAddress(address) {
			writeError(w, "invalid address format", http.StatusBadRequest)
			return
		}
		if !ok || !validate.IsPositiveAmount(amount) {
			writeError(w, "amount must be a positive number", http.StatusBadRequest)
			return
		}

		balance, err := balances.GetBalance(r.Context(), address)
		if err != nil {
			logger.Error("balance lookup failed", "address", address, "error", err)
			writeError(w, "failed to fetch balance", http.StatusBadGateway)
			return
		}

		needed := wallet.NormalizeLamports(amount)
		writeJSON(w, map[string]interface{}{
			"success":    true,
			"sufficient": balance.Lamports >= needed,
			"balance":    balance.SOL,
			"required":   wallet.LamportsToSOL(needed),
		}, http.StatusOK)
	})
}
