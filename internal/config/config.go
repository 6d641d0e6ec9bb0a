// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fd1az/aurora-staking/internal/network"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig                `mapstructure:"app"`
	Network   NetworkSelection         `mapstructure:"network"`
	Networks  map[string]NetworkConfig `mapstructure:"networks"`
	Account   AccountConfig            `mapstructure:"account"`
	Sync      SyncConfig               `mapstructure:"sync"`
	Oracle    OracleConfig             `mapstructure:"oracle"`
	Telemetry TelemetryConfig          `mapstructure:"telemetry"`

	params *network.Config
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// NetworkSelection picks the active network.
type NetworkSelection struct {
	Selected string `mapstructure:"selected"`
}

// NetworkConfig overrides or defines a network deployment.
// Empty fields fall back to the built-in defaults for mainnet and testnet.
type NetworkConfig struct {
	RPCURL         string         `mapstructure:"rpc_url"`
	WSURL          string         `mapstructure:"ws_url"`
	ChainID        uint64         `mapstructure:"chain_id"`
	TokenAddress   string         `mapstructure:"token_address"`
	StakingAddress string         `mapstructure:"staking_address"`
	Streams        []StreamConfig `mapstructure:"streams"`
}

// StreamConfig describes a reward stream.
type StreamConfig struct {
	ID           uint64 `mapstructure:"id"`
	Symbol       string `mapstructure:"symbol"`
	Name         string `mapstructure:"name"`
	Decimals     uint8  `mapstructure:"decimals"`
	Address      string `mapstructure:"address"`
	CoingeckoKey string `mapstructure:"coingecko_key"`
}

// AccountConfig holds the account to synchronize and the optional signer.
type AccountConfig struct {
	Address    string `mapstructure:"address"`
	PrivateKey string `mapstructure:"private_key"`
}

// SyncConfig holds synchronizer and action runner settings.
type SyncConfig struct {
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	SettleDelay     time.Duration `mapstructure:"settle_delay"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	WaitForBlock    bool          `mapstructure:"wait_for_block"`
	HeadPollEvery   time.Duration `mapstructure:"head_poll_interval"`
	MetricsCacheTTL time.Duration `mapstructure:"metrics_cache_ttl"`
}

// OracleConfig holds price oracle settings.
type OracleConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RetryMax          int           `mapstructure:"retry_max"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	BaseKey           string        `mapstructure:"base_key"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	Tracer         string `mapstructure:"tracer"` // zipkin, otlp-grpc, otlp-http, console
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
}

// Headers parses OTLPHeaders ("k1=v1,k2=v2"). Malformed pairs are skipped.
func (t TelemetryConfig) Headers() map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(t.OTLPHeaders, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" {
			continue
		}
		headers[k] = v
	}
	return headers
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("STK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "STK_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "STK_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "STK_LOG_LEVEL", "LOG_LEVEL")

	// Network
	v.BindEnv("network.selected", "STK_NETWORK")

	// Account
	v.BindEnv("account.address", "STK_ACCOUNT")
	v.BindEnv("account.private_key", "STK_PRIVATE_KEY")

	// Oracle
	v.BindEnv("oracle.base_url", "STK_ORACLE_URL", "COINGECKO_URL")
	v.BindEnv("oracle.api_key", "STK_ORACLE_API_KEY", "COINGECKO_API_KEY")

	// Telemetry
	v.BindEnv("telemetry.enabled", "STK_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "STK_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.tracer", "STK_OTEL_TRACER")
	v.BindEnv("telemetry.otlp_endpoint", "STK_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "STK_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "aurora-staking")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("network.selected", network.Mainnet)

	// Sync defaults
	v.SetDefault("sync.read_timeout", "10s")
	v.SetDefault("sync.settle_delay", "2s")
	v.SetDefault("sync.refresh_interval", "30s")
	v.SetDefault("sync.wait_for_block", false)
	v.SetDefault("sync.head_poll_interval", "2s")
	v.SetDefault("sync.metrics_cache_ttl", "30s")

	// Oracle defaults
	v.SetDefault("oracle.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("oracle.requests_per_minute", 30)
	v.SetDefault("oracle.timeout", "10s")
	v.SetDefault("oracle.retry_max", 3)
	v.SetDefault("oracle.cache_ttl", "60s")
	v.SetDefault("oracle.base_key", network.DefaultBaseOracleKey)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "aurora-staking")
	v.SetDefault("telemetry.tracer", "zipkin")
	v.SetDefault("telemetry.otlp_endpoint", "http://localhost:9411/api/v2/spans")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8080)
}

// Validate validates the configuration and builds the network parameters.
func (c *Config) Validate() error {
	if c.Sync.ReadTimeout <= 0 {
		return fmt.Errorf("sync.read_timeout must be positive")
	}
	if c.Sync.SettleDelay < 0 {
		return fmt.Errorf("sync.settle_delay cannot be negative")
	}
	if c.Oracle.BaseURL == "" {
		return fmt.Errorf("oracle.base_url is required")
	}
	if c.Oracle.RequestsPerMinute <= 0 {
		return fmt.Errorf("oracle.requests_per_minute must be positive")
	}

	params, err := network.New(c.networkParams())
	if err != nil {
		return err
	}
	c.params = params
	return nil
}

// NetworkParams returns the validated network configuration.
// It is nil until Validate succeeds.
func (c *Config) NetworkParams() *network.Config {
	return c.params
}

// networkParams merges the built-in defaults for the selected network with
// any overrides from networks.<name>.
func (c *Config) networkParams() network.Params {
	name := strings.ToLower(c.Network.Selected)

	p, err := network.KnownParams(name)
	if err != nil {
		p = network.Params{Name: name}
	}

	if c.Oracle.BaseKey != "" {
		p.BaseOracleKey = c.Oracle.BaseKey
	}

	override, ok := c.Networks[name]
	if !ok {
		return p
	}

	if override.RPCURL != "" {
		p.RPCURL = override.RPCURL
	}
	if override.WSURL != "" {
		p.WSURL = override.WSURL
	}
	if override.ChainID != 0 {
		p.ChainID = override.ChainID
	}
	if override.TokenAddress != "" {
		p.TokenAddress = override.TokenAddress
	}
	if override.StakingAddress != "" {
		p.StakingAddress = override.StakingAddress
	}
	if len(override.Streams) > 0 {
		p.Streams = make([]network.StreamParams, len(override.Streams))
		for i, s := range override.Streams {
			p.Streams[i] = network.StreamParams{
				ID:           s.ID,
				Symbol:       s.Symbol,
				Name:         s.Name,
				Decimals:     s.Decimals,
				Address:      s.Address,
				CoingeckoKey: s.CoingeckoKey,
			}
		}
	}

	return p
}
