package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Scanner   ScannerConfig
	Costs     CostConfig
	Source    SourceConfig
	Exchanges map[string]ExchangeConfig
	Tokens    map[string]TokenConfig
	Reporting ReportingConfig
	Database  DatabaseConfig
	Redis     RedisConfig
}

// ScannerConfig defines the scan-loop settings.
type ScannerConfig struct {
	TradeSizeUSD    decimal.Decimal `mapstructure:"trade_size_usd"`
	MinProfitUSD    decimal.Decimal `mapstructure:"min_profit_usd"`
	PriceInterval   time.Duration   `mapstructure:"price_interval"`
	ScanInterval    time.Duration   `mapstructure:"scan_interval"`
	ReportInterval  time.Duration   `mapstructure:"report_interval"`
	FreshnessWindow time.Duration   `mapstructure:"freshness_window"`
	HistoryCapacity int             `mapstructure:"history_capacity"`
}

// CostConfig holds the rates used by the cost model. Rates are fractions,
// not percentages: 0.005 means 0.5%.
type CostConfig struct {
	SlippageRate     decimal.Decimal `mapstructure:"slippage_rate"`
	FlashLoanFeeRate decimal.Decimal `mapstructure:"flash_loan_fee_rate"`
	ProtocolFeeRate  decimal.Decimal `mapstructure:"protocol_fee_rate"`
}

// SourceConfig selects and tunes the price source strategy.
type SourceConfig struct {
	// Mode is "live" or "synthetic". The two are never mixed.
	Mode       string                     `mapstructure:"mode"`
	Timeout    time.Duration              `mapstructure:"timeout"`
	Seed       int64                      `mapstructure:"seed"`
	BasePrices map[string]decimal.Decimal `mapstructure:"base_prices"`
}

// ExchangeConfig defines settings for a specific exchange.
type ExchangeConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	// GasEstimateUSD is the flat per-leg gas cost assumption for this venue.
	GasEstimateUSD decimal.Decimal `mapstructure:"gas_estimate_usd"`
	// SpreadBias skews the synthetic source for this venue, e.g. 0.001.
	SpreadBias decimal.Decimal `mapstructure:"spread_bias"`
}

// TokenConfig holds static reference data for a tracked token.
type TokenConfig struct {
	Decimals int    `mapstructure:"decimals"`
	Address  string `mapstructure:"address"`
}

// ReportingConfig toggles the configured sinks.
type ReportingConfig struct {
	Table         bool   `mapstructure:"table"`
	JSONPath      string `mapstructure:"json_path"`
	WebsocketAddr string `mapstructure:"websocket_addr"`
	Postgres      bool   `mapstructure:"postgres"`
}

// DatabaseConfig defines the database connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string `mapstructure:"dbname"`
}

// DSN builds a pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.DBName)
}

// RedisConfig defines the optional latest-price cache settings.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config, viper.DecodeHook(decimalDecodeHook()))
	if err != nil {
		return
	}

	err = config.Validate()
	return
}

func setDefaults() {
	viper.SetDefault("scanner.trade_size_usd", "10000")
	viper.SetDefault("scanner.min_profit_usd", "5")
	viper.SetDefault("scanner.price_interval", "3s")
	viper.SetDefault("scanner.scan_interval", "7s")
	viper.SetDefault("scanner.report_interval", "4s")
	viper.SetDefault("scanner.freshness_window", "30s")
	viper.SetDefault("scanner.history_capacity", 100)
	viper.SetDefault("costs.slippage_rate", "0.005")
	viper.SetDefault("costs.flash_loan_fee_rate", "0.0009")
	viper.SetDefault("costs.protocol_fee_rate", "0.003")
	viper.SetDefault("source.mode", "synthetic")
	viper.SetDefault("source.timeout", "5s")
	viper.SetDefault("reporting.table", true)
	viper.SetDefault("redis.ttl", "30s")
}

// Validate checks the invariants that must hold before any loop starts.
// A violation is fatal at startup and never retried.
func (c *Config) Validate() error {
	if len(c.Exchanges) < 2 {
		return &ConfigurationError{Field: "exchanges", Reason: "at least two exchanges are required"}
	}
	if len(c.Tokens) == 0 {
		return &ConfigurationError{Field: "tokens", Reason: "at least one token is required"}
	}
	if !c.Scanner.TradeSizeUSD.IsPositive() {
		return &ConfigurationError{Field: "scanner.trade_size_usd", Reason: "must be positive"}
	}
	if c.Scanner.MinProfitUSD.IsNegative() {
		return &ConfigurationError{Field: "scanner.min_profit_usd", Reason: "must not be negative"}
	}
	for _, f := range []struct {
		name string
		d    time.Duration
	}{
		{"scanner.price_interval", c.Scanner.PriceInterval},
		{"scanner.scan_interval", c.Scanner.ScanInterval},
		{"scanner.report_interval", c.Scanner.ReportInterval},
		{"scanner.freshness_window", c.Scanner.FreshnessWindow},
		{"source.timeout", c.Source.Timeout},
	} {
		if f.d <= 0 {
			return &ConfigurationError{Field: f.name, Reason: "must be a positive duration"}
		}
	}
	if c.Costs.SlippageRate.IsNegative() || c.Costs.FlashLoanFeeRate.IsNegative() || c.Costs.ProtocolFeeRate.IsNegative() {
		return &ConfigurationError{Field: "costs", Reason: "rates must not be negative"}
	}
	switch c.Source.Mode {
	case "live", "synthetic":
	default:
		return &ConfigurationError{Field: "source.mode", Reason: fmt.Sprintf("unknown mode %q", c.Source.Mode)}
	}
	if c.Source.Mode == "live" {
		for name, ex := range c.Exchanges {
			if ex.Endpoint == "" {
				return &ConfigurationError{Field: "exchanges." + name + ".endpoint", Reason: "required in live mode"}
			}
		}
	}
	return nil
}
