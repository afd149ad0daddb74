package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/sonic-agent/sonicbot/service/agent"
	"github.com/sonic-agent/sonicbot/service/config"
	"github.com/sonic-agent/sonicbot/service/dex"
	"github.com/sonic-agent/sonicbot/service/events"
	"github.com/sonic-agent/sonicbot/service/llm"
	"github.com/sonic-agent/sonicbot/service/metrics"
	"github.com/sonic-agent/sonicbot/service/server"
	"github.com/sonic-agent/sonicbot/service/session"
	"github.com/sonic-agent/sonicbot/service/telegram"
	"github.com/sonic-agent/sonicbot/service/wallet"
)

func main() {
	// .env is best-effort for local dev; production uses real env vars.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting sonicbot",
		"addr", cfg.ServerAddr,
		"log_level", cfg.LogLevel,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	// Wallet balance reads: primary RPC with one fallback endpoint.
	primaryRPC := wallet.NewRPCClient(cfg.SonicRPCURL)
	var fallbackRPC wallet.RPCClient
	if cfg.SonicFallbackRPCURL != "" {
		fallbackRPC = wallet.NewRPCClient(cfg.SonicFallbackRPCURL)
	}
	balances := wallet.NewClient(primaryRPC, fallbackRPC, cfg.SonicRPCURL, m, logger)

	// The agent wallet is optional; without a key the service still
	// answers read-only queries.
	var agentWallet *wallet.Agent
	if cfg.HasAgentWallet() {
		params := wallet.AgentParams{
			PrivateKey:            cfg.AgentWalletKey,
			Primary:               balances,
			PrimaryRPC:            primaryRPC,
			TestnetPrimary:        cfg.AgentUseTestnet,
			AllowMainnetTransfers: cfg.AllowMainnetTransfers,
			Metrics:               m,
			Logger:                logger,
		}
		if cfg.SonicTestnetRPCURL != "" {
			testnetRPC := wallet.NewRPCClient(cfg.SonicTestnetRPCURL)
			params.Testnet = wallet.NewClient(testnetRPC, nil, cfg.SonicTestnetRPCURL, m, logger)
			params.TestnetRPC = testnetRPC
		}

		var err error
		agentWallet, err = wallet.NewAgent(params)
		if err != nil {
			logger.Error("failed to initialize agent wallet", "error", err)
			os.Exit(1)
		}
		logger.Info("agent wallet ready",
			"public_key", agentWallet.PublicKey(),
			"network", agentWallet.Network(),
		)
	} else {
		logger.Warn("no agent wallet key configured, transfers disabled")
	}

	dexClient := dex.NewClient(cfg.DexAPIBaseURL, &http.Client{Timeout: 30 * time.Second}, m, logger)

	var completer llm.Completer
	if cfg.OpenAIAPIKey != "" {
		c, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, m, logger)
		if err != nil {
			logger.Error("failed to initialize completion client", "error", err)
			os.Exit(1)
		}
		completer = c
	} else {
		logger.Warn("no completion API key configured, chat disabled")
	}

	var publisher events.Publisher
	if cfg.NATSURL != "" {
		p, err := events.NewNATSPublisher(cfg.NATSURL, m, logger)
		if err != nil {
			logger.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
		logger.Info("transfer event publishing enabled", "nats_url", cfg.NATSURL)
	}

	dispatcherParams := agent.DispatcherParams{
		Balances:  balances,
		Dex:       dexClient,
		Completer: completer,
		Sessions:  session.NewStore(),
		Publisher: publisher,
		Metrics:   m,
		Logger:    logger,
	}
	if agentWallet != nil {
		dispatcherParams.Agent = agentWallet
	}
	dispatcher := agent.NewDispatcher(dispatcherParams)

	serverParams := server.Params{
		Addr:      cfg.ServerAddr,
		Balances:  balances,
		Dex:       dexClient,
		Completer: completer,
		Metrics:   m,
		Logger:    logger,
	}
	if agentWallet != nil {
		serverParams.Wallet = agentWallet
	}
	httpServer := server.New(serverParams)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start()
	})

	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramBotToken, dispatcher, logger)
		if err != nil {
			logger.Error("failed to initialize telegram bot", "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			return bot.Run(gctx)
		})
	} else {
		logger.Info("no telegram token configured, bot disabled")
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- g.Wait()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != context.Canceled {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server gracefully", "error", err)
			os.Exit(1)
		}

		logger.Info("shutdown complete")
	}
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
