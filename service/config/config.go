package config

import (
	"fmt"
	"os"

	"github.com/mr-tron/base58"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// Sonic RPC configuration
	SonicRPCURL         string
	SonicFallbackRPCURL string
	SonicTestnetRPCURL  string

	// Agent wallet configuration
	AgentWalletKey        string // base58-encoded 64-byte private key, optional
	AgentUseTestnet       bool
	AllowMainnetTransfers bool

	// LLM configuration
	OpenAIAPIKey string
	OpenAIModel  string

	// DEX API configuration
	DexAPIBaseURL string

	// Telegram bot configuration (optional; empty disables the bot)
	TelegramBotToken string

	// NATS configuration (optional; empty disables transfer event publishing)
	NATSURL string
}

// Load reads configuration from environment variables and validates all required fields.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	// Server configuration
	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Sonic RPC configuration
	cfg.SonicRPCURL = os.Getenv("SONIC_RPC_URL")
	if cfg.SonicRPCURL == "" {
		errs = append(errs, fmt.Errorf("SONIC_RPC_URL is required"))
	}
	cfg.SonicFallbackRPCURL = os.Getenv("SONIC_FALLBACK_RPC_URL")
	cfg.SonicTestnetRPCURL = os.Getenv("SONIC_TESTNET_RPC_URL")

	// Agent wallet configuration. The key is optional: without it the
	// service still answers balance/price/pool queries but refuses
	// transfers and agent-wallet queries.
	cfg.AgentWalletKey = os.Getenv("AGENT_WALLET_KEY")
	if cfg.AgentWalletKey != "" {
		if err := validateWalletKey(cfg.AgentWalletKey); err != nil {
			errs = append(errs, err)
		}
	}
	cfg.AgentUseTestnet = getEnvBool("AGENT_USE_TESTNET", true)
	cfg.AllowMainnetTransfers = getEnvBool("ALLOW_MAINNET_TRANSFERS", false)

	if cfg.AgentUseTestnet && cfg.SonicTestnetRPCURL == "" {
		errs = append(errs, fmt.Errorf("SONIC_TESTNET_RPC_URL is required when AGENT_USE_TESTNET is set"))
	}

	// LLM configuration
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		errs = append(errs, fmt.Errorf("OPENAI_API_KEY is required"))
	}
	cfg.OpenAIModel = getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini")

	// DEX API configuration
	cfg.DexAPIBaseURL = getEnvOrDefault("DEX_API_BASE_URL", "https://api.sega.so")

	// Optional integrations
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.NATSURL = os.Getenv("NATS_URL")

	// Validate RPC URLs are different when a fallback is configured
	if cfg.SonicFallbackRPCURL != "" && cfg.SonicFallbackRPCURL == cfg.SonicRPCURL {
		errs = append(errs, fmt.Errorf("SONIC_FALLBACK_RPC_URL must differ from SONIC_RPC_URL"))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.SonicRPCURL == "" {
		errs = append(errs, fmt.Errorf("SonicRPCURL is required"))
	}

	if c.OpenAIAPIKey == "" {
		errs = append(errs, fmt.Errorf("OpenAIAPIKey is required"))
	}

	if c.DexAPIBaseURL == "" {
		errs = append(errs, fmt.Errorf("DexAPIBaseURL is required"))
	}

	if c.AgentUseTestnet && c.SonicTestnetRPCURL == "" {
		errs = append(errs, fmt.Errorf("SonicTestnetRPCURL is required when AgentUseTestnet is set"))
	}

	if c.AgentWalletKey != "" {
		if err := validateWalletKey(c.AgentWalletKey); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// HasAgentWallet reports whether an agent wallet key is configured.
func (c *Config) HasAgentWallet() bool {
	return c.AgentWalletKey != ""
}

// validateWalletKey checks that the key is base58 and decodes to a 64-byte
// ed25519 private key.
func validateWalletKey(key string) error {
	raw, err := base58.Decode(key)
	if err != nil {
		return fmt.Errorf("AGENT_WALLET_KEY is not valid base58: %w", err)
	}
	if len(raw) != 64 {
		return fmt.Errorf("AGENT_WALLET_KEY must decode to 64 bytes, got %d", len(raw))
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool parses a boolean environment variable, falling back to a default.
func getEnvBool(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes":
		return true
	case "0", "false", "FALSE", "False", "no":
		return false
	default:
		return defaultValue
	}
}
