package config

import "time"

// WalletConfig is the top-level configuration for a wallet instance,
// grounded on original_source/src/config.rs's Config/
// RemoteServicesConfig/MaxRoutingFeeConfig/BreezSdkConfig/
// ReceiveLimitsConfig, laid out with the teacher's toml+env tag
// conventions (the original `ApiConfig` this replaced).
type WalletConfig struct {
	Environment string `toml:"environment" env:"LLL_ENVIRONMENT" env-default:"development"`
	Network     string `toml:"network" env:"LLL_NETWORK" env-default:"mainnet"`

	Store struct {
		Path string `toml:"path" env:"LLL_STORE_PATH" env-default:"./wallet.sqlite3"`
	} `toml:"store"`

	Redis struct {
		Host     string `toml:"host" env:"LLL_REDIS_HOST"`
		Port     string `toml:"port" env:"LLL_REDIS_PORT" env-default:"6379"`
		Password string `toml:"password" env:"LLL_REDIS_PASSWORD"`
		DB       int    `toml:"db" env:"LLL_REDIS_DB" env-default:"0"`
	} `toml:"redis"`

	RemoteServices struct {
		LspGRPCAddress   string `toml:"lsp_grpc_address" env:"LLL_LSP_GRPC_ADDRESS"`
		PocketBaseURL    string `toml:"pocket_base_url" env:"LLL_POCKET_BASE_URL"`
		BackendHealthURL string `toml:"backend_health_url" env:"LLL_BACKEND_HEALTH_URL"`
		// BackendURL is the base URL for the wallet's own backend
		// (honey_badger's auth challenge/token endpoints and pigeon's
		// lightning-address assignment), consumed by internal/auth and
		// internal/lightningaddress.
		BackendURL string `toml:"backend_url" env:"LLL_BACKEND_URL"`
	} `toml:"remote_services"`

	MaxRoutingFee struct {
		Mode          string `toml:"mode" env:"LLL_MAX_ROUTING_FEE_MODE" env-default:"relative"` // "relative" or "absolute"
		Permyriad     uint32 `toml:"permyriad" env:"LLL_MAX_ROUTING_FEE_PERMYRIAD" env-default:"50"`
		ExemptFeeSats uint64 `toml:"exempt_fee_sats" env:"LLL_MAX_ROUTING_FEE_EXEMPT_SATS" env-default:"21"`
	} `toml:"max_routing_fee"`

	ReceiveLimits struct {
		MinReceiveSats uint64 `toml:"min_receive_sats" env:"LLL_MIN_RECEIVE_SATS" env-default:"1"`
		MaxReceiveSats uint64 `toml:"max_receive_sats" env:"LLL_MAX_RECEIVE_SATS" env-default:"4000000"`
	} `toml:"receive_limits"`

	Timezone struct {
		OffsetSeconds int32  `toml:"offset_seconds" env:"LLL_TZ_OFFSET_SECONDS"`
		ID            string `toml:"id" env:"LLL_TZ_ID" env-default:"UTC"`
	} `toml:"timezone"`

	AnalyticsEnabled bool `toml:"analytics_enabled" env:"LLL_ANALYTICS_ENABLED" env-default:"true"`

	ExchangeRates struct {
		Provider     string        `toml:"provider" env:"LLL_EXCHANGE_RATE_PROVIDER" env-default:"coinbase"`
		Currencies   []string      `toml:"currencies" env:"LLL_EXCHANGE_RATE_CURRENCIES" env-default:"USD,EUR,CHF,GBP"`
		PollInterval time.Duration `toml:"poll_interval" env:"LLL_EXCHANGE_RATE_POLL_INTERVAL" env-default:"5m"`
	} `toml:"exchange_rates"`

	TaskManager struct {
		ForegroundPollInterval time.Duration `toml:"foreground_poll_interval" env:"LLL_FOREGROUND_POLL_INTERVAL" env-default:"2s"`
		BackgroundPollInterval time.Duration `toml:"background_poll_interval" env:"LLL_BACKGROUND_POLL_INTERVAL" env-default:"1m"`
	} `toml:"task_manager"`
}
