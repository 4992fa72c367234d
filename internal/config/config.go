// Package config loads and validates the kairos configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kairos-quant/kairos/internal/core"
)

type Config struct {
	Logging    LoggingConfig             `mapstructure:"logging"`
	Data       DataConfig                `mapstructure:"data"`
	Cache      CacheConfig               `mapstructure:"cache"`
	Backtest   BacktestConfig            `mapstructure:"backtest"`
	Strategies map[string]StrategyConfig `mapstructure:"strategies"`
	Metrics    MetricsConfig             `mapstructure:"metrics"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// DataConfig points at the candle exports the CSV provider reads.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // "localfs" or "s3"
	Path    string        `mapstructure:"path"`    // for localfs
	TTL     time.Duration `mapstructure:"ttl"`
	S3      S3Config      `mapstructure:"s3"` // for s3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type BacktestConfig struct {
	InitialCapital float64       `mapstructure:"initial_capital"`
	FeeRate        float64       `mapstructure:"fee_rate"`
	MaxInvestRatio float64       `mapstructure:"max_invest_ratio"`
	AllowShort     bool          `mapstructure:"allow_short"`
	ReentryPolicy  string        `mapstructure:"reentry_policy"` // "ignore" or "reenter"
	RiskFreeRate   float64       `mapstructure:"risk_free_rate"`
	ResultTTL      time.Duration `mapstructure:"result_ttl"`
}

// StrategyConfig carries per-strategy parameter overrides keyed by strategy
// code.
type StrategyConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Params  map[string]any `mapstructure:"params"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Data: DataConfig{
			Dir: "data",
		},
		Cache: CacheConfig{
			Backend: "localfs",
			Path:    ".kairos/cache",
			TTL:     24 * time.Hour,
		},
		Backtest: BacktestConfig{
			InitialCapital: 1_000_000,
			FeeRate:        0.002,
			MaxInvestRatio: 1.0,
			ReentryPolicy:  "ignore",
			ResultTTL:      7 * 24 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9090",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "localfs":
		if c.Cache.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("cache path required for localfs backend"))
		}
	case "s3":
		if c.Cache.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required for s3 backend"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}

	if c.Cache.TTL < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cache ttl cannot be negative, got %s", c.Cache.TTL))
	}

	if c.Backtest.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_capital must be positive, got %f", c.Backtest.InitialCapital))
	}
	if c.Backtest.FeeRate < 0 || c.Backtest.FeeRate >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fee_rate must be in [0, 1), got %f", c.Backtest.FeeRate))
	}
	if c.Backtest.MaxInvestRatio <= 0 || c.Backtest.MaxInvestRatio > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_invest_ratio must be in (0, 1], got %f", c.Backtest.MaxInvestRatio))
	}
	if p := c.Backtest.ReentryPolicy; p != "ignore" && p != "reenter" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("reentry_policy must be ignore or reenter, got %q", p))
	}
	if c.Backtest.RiskFreeRate < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("risk_free_rate cannot be negative, got %f", c.Backtest.RiskFreeRate))
	}

	return nil
}
