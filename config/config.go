// Package config loads and validates trader configuration from YAML or
// JSON files, with environment variable overrides for secrets.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rmorley/gatetrader/market"
)

// Config represents the complete trader configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Pairs    []string       `json:"pairs" yaml:"pairs"`
	Interval string         `json:"interval" yaml:"interval"`
	Live     LiveConfig     `json:"live" yaml:"live"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Notify   NotifyConfig   `json:"notify,omitempty" yaml:"notify,omitempty"`
	Logging  LoggingConfig  `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// AccountConfig contains ledger initialization parameters.
type AccountConfig struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	FeeRate        float64 `json:"fee_rate" yaml:"fee_rate"`
}

// StrategyConfig names the strategy and carries its free-form options.
type StrategyConfig struct {
	Name    string            `json:"name" yaml:"name"`
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

// LiveConfig contains live-runner parameters.
type LiveConfig struct {
	PollInterval string `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"` // e.g. "1m"
	WindowSize   int    `json:"window_size,omitempty" yaml:"window_size,omitempty"`
}

// PollDuration converts the poll interval string to a time.Duration.
func (l LiveConfig) PollDuration() (time.Duration, error) {
	if l.PollInterval == "" {
		return time.Minute, nil
	}
	return time.ParseDuration(l.PollInterval)
}

// JournalConfig contains trade journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// NotifyConfig contains push notification parameters.
type NotifyConfig struct {
	PushPlusToken string `json:"pushplus_token,omitempty" yaml:"pushplus_token,omitempty"`
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"` // "json" or "text"
}

// LoadFromFile loads configuration from a file (JSON or YAML based on
// content), applies environment overrides, and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding fields when set. Secrets in particular should come from
// the environment rather than the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PUSHPLUS_TOKEN"); v != "" {
		cfg.Notify.PushPlusToken = v
	}
	if v := os.Getenv("GATETRADER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.InitialCapital <= 0 {
		return fmt.Errorf("account.initial_capital must be positive")
	}
	if c.Account.FeeRate < 0 || c.Account.FeeRate >= 1 {
		return fmt.Errorf("account.fee_rate must be in [0, 1)")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if len(c.Pairs) == 0 {
		return fmt.Errorf("at least one currency pair is required")
	}
	for _, p := range c.Pairs {
		if _, _, err := market.SplitPair(p); err != nil {
			return fmt.Errorf("invalid pair %q: %w", p, err)
		}
	}
	if c.Interval != "" && !market.Interval(c.Interval).Valid() {
		return fmt.Errorf("unknown kline interval %q", c.Interval)
	}
	if _, err := c.Live.PollDuration(); err != nil {
		return fmt.Errorf("invalid live.poll_interval: %w", err)
	}
	if c.Live.WindowSize < 0 {
		return fmt.Errorf("live.window_size must not be negative")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal fills_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// KlineInterval returns the configured candle interval, defaulting to 1h.
func (c *Config) KlineInterval() market.Interval {
	if c.Interval == "" {
		return market.H1
	}
	return market.Interval(c.Interval)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCapital: 10000,
			FeeRate:        0.002,
		},
		Strategy: StrategyConfig{
			Name: "ma-cross",
		},
		Pairs:    []string{"BTC_USDT"},
		Interval: "1h",
		Live: LiveConfig{
			PollInterval: "1m",
			WindowSize:   200,
		},
		Journal: JournalConfig{
			Type:       "csv",
			FillsFile:  "./fills.csv",
			EquityFile: "./equity.csv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
