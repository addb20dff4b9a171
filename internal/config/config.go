// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	EBay      EBayConfig      `mapstructure:"ebay"`
	Chrono24  Chrono24Config  `mapstructure:"chrono24"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// DatabaseConfig holds listing store configuration.
type DatabaseConfig struct {
	// Store selects the backing store: "postgres" or "memory".
	Store    string `mapstructure:"store"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int    `mapstructure:"max_conns"`
	MinConns int    `mapstructure:"min_conns"`
}

// EBayConfig holds eBay Browse API configuration.
type EBayConfig struct {
	ClientID          string        `mapstructure:"client_id"`
	ClientSecret      string        `mapstructure:"client_secret"`
	BaseURL           string        `mapstructure:"base_url"`
	MarketplaceID     string        `mapstructure:"marketplace_id"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// Chrono24Config holds Chrono24 scraping configuration.
type Chrono24Config struct {
	Enabled           bool          `mapstructure:"enabled"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// ScanConfig holds scan scheduling configuration.
type ScanConfig struct {
	IntervalHours   int `mapstructure:"interval_hours"`
	MinPriceUSD     int `mapstructure:"min_price_usd"`
	ListingLimit    int `mapstructure:"listing_limit"`
	StaleAfterHours int `mapstructure:"stale_after_hours"`
}

// StaleWindow returns the staleness window as a duration.
func (c *ScanConfig) StaleWindow() time.Duration {
	return time.Duration(c.StaleAfterHours) * time.Hour
}

// ArbitrageConfig holds arbitrage detection thresholds and the fee table.
type ArbitrageConfig struct {
	// Fees maps platform name to a sell-side fee fraction.
	Fees                map[string]float64 `mapstructure:"fees"`
	DefaultFeeRate      float64            `mapstructure:"default_fee_rate"`
	ShippingCost        float64            `mapstructure:"shipping_cost"`
	MinProfitUSD        float64            `mapstructure:"min_profit_usd"`
	MinROI              float64            `mapstructure:"min_roi"`
	MinDiscount         float64            `mapstructure:"min_discount"`
	CrossPlatformMargin float64            `mapstructure:"cross_platform_margin"`
}

// FeesDecimal returns the fee table as decimals.
func (c *ArbitrageConfig) FeesDecimal() map[string]decimal.Decimal {
	result := make(map[string]decimal.Decimal, len(c.Fees))
	for platform, rate := range c.Fees {
		result[platform] = decimal.NewFromFloat(rate)
	}
	return result
}

// DefaultFeeRateDecimal returns the fallback fee rate as decimal.
func (c *ArbitrageConfig) DefaultFeeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.DefaultFeeRate)
}

// ShippingCostDecimal returns the flat shipping estimate as decimal.
func (c *ArbitrageConfig) ShippingCostDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.ShippingCost)
}

// MinProfitUSDDecimal returns the profit threshold as decimal.
func (c *ArbitrageConfig) MinProfitUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitUSD)
}

// MinROIDecimal returns the ROI threshold fraction as decimal.
func (c *ArbitrageConfig) MinROIDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinROI)
}

// MinDiscountDecimal returns the discount threshold fraction as decimal.
func (c *ArbitrageConfig) MinDiscountDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinDiscount)
}

// CrossPlatformMarginDecimal returns the cross-platform margin fraction as decimal.
func (c *ArbitrageConfig) CrossPlatformMarginDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.CrossPlatformMargin)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"` // otlp-grpc, otlp-http, zipkin, console, empty
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
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
	v.SetEnvPrefix("WATCH")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
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
	v.BindEnv("app.name", "WATCH_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "WATCH_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "WATCH_LOG_LEVEL", "LOG_LEVEL")

	// Database
	v.BindEnv("database.store", "WATCH_DB_STORE")
	v.BindEnv("database.dsn", "WATCH_DB_DSN", "DATABASE_URL")

	// eBay
	v.BindEnv("ebay.client_id", "WATCH_EBAY_CLIENT_ID", "EBAY_CLIENT_ID")
	v.BindEnv("ebay.client_secret", "WATCH_EBAY_CLIENT_SECRET", "EBAY_CLIENT_SECRET")
	v.BindEnv("ebay.base_url", "WATCH_EBAY_BASE_URL")

	// Chrono24
	v.BindEnv("chrono24.enabled", "WATCH_CHRONO24_ENABLED")
	v.BindEnv("chrono24.base_url", "WATCH_CHRONO24_BASE_URL")

	// Scan
	v.BindEnv("scan.interval_hours", "WATCH_SCAN_INTERVAL_HOURS", "SCAN_INTERVAL_HOURS")
	v.BindEnv("scan.min_price_usd", "WATCH_MIN_PRICE_USD")

	// Arbitrage
	v.BindEnv("arbitrage.min_profit_usd", "WATCH_MIN_PROFIT_USD")
	v.BindEnv("arbitrage.min_roi", "WATCH_MIN_ROI")
	v.BindEnv("arbitrage.min_discount", "WATCH_MIN_DISCOUNT")

	// Telemetry
	v.BindEnv("telemetry.enabled", "WATCH_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "WATCH_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "WATCH_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.trace_provider", "WATCH_TRACE_PROVIDER")
	v.BindEnv("telemetry.otlp_headers", "WATCH_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "watcharb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Database defaults
	v.SetDefault("database.store", "memory")
	v.SetDefault("database.max_conns", 8)
	v.SetDefault("database.min_conns", 2)

	// eBay defaults
	v.SetDefault("ebay.base_url", "https://api.ebay.com")
	v.SetDefault("ebay.marketplace_id", "EBAY_US")
	v.SetDefault("ebay.timeout", "10s")
	v.SetDefault("ebay.requests_per_minute", 60)

	// Chrono24 defaults
	v.SetDefault("chrono24.enabled", false)
	v.SetDefault("chrono24.base_url", "https://www.chrono24.com")
	v.SetDefault("chrono24.timeout", "15s")
	v.SetDefault("chrono24.requests_per_minute", 12)

	// Scan defaults
	v.SetDefault("scan.interval_hours", 6)
	v.SetDefault("scan.min_price_usd", 3000)
	v.SetDefault("scan.listing_limit", 25)
	v.SetDefault("scan.stale_after_hours", 24)

	// Arbitrage defaults
	v.SetDefault("arbitrage.fees", map[string]float64{
		"ebay":     0.13,  // final value fee
		"chrono24": 0.065, // buyer premium
		"private":  0.0,
	})
	v.SetDefault("arbitrage.default_fee_rate", 0.10)
	v.SetDefault("arbitrage.shipping_cost", 75)
	v.SetDefault("arbitrage.min_profit_usd", 200)
	v.SetDefault("arbitrage.min_roi", 0.05)
	v.SetDefault("arbitrage.min_discount", 0.10)
	v.SetDefault("arbitrage.cross_platform_margin", 0.10)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "watcharb")
	v.SetDefault("telemetry.trace_provider", "empty")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Database.Store {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required when database.store is postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database.store: %s", c.Database.Store)
	}

	if c.Scan.IntervalHours <= 0 {
		return fmt.Errorf("scan.interval_hours must be positive")
	}
	if c.Arbitrage.MinROI < 0 || c.Arbitrage.MinROI >= 1 {
		return fmt.Errorf("arbitrage.min_roi must be a fraction in [0, 1)")
	}
	if c.Arbitrage.MinDiscount < 0 || c.Arbitrage.MinDiscount >= 1 {
		return fmt.Errorf("arbitrage.min_discount must be a fraction in [0, 1)")
	}
	if c.Arbitrage.CrossPlatformMargin <= 0 || c.Arbitrage.CrossPlatformMargin >= 1 {
		return fmt.Errorf("arbitrage.cross_platform_margin must be a fraction in (0, 1)")
	}
	return nil
}
