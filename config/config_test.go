package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmorley/gatetrader/market"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 10000.0, cfg.Account.InitialCapital)
	assert.Equal(t, 0.002, cfg.Account.FeeRate)
	assert.Equal(t, "ma-cross", cfg.Strategy.Name)
	assert.Equal(t, []string{"BTC_USDT"}, cfg.Pairs)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero capital",
			mutate:  func(c *Config) { c.Account.InitialCapital = 0 },
			wantErr: true,
			errMsg:  "account.initial_capital must be positive",
		},
		{
			name:    "fee rate out of range",
			mutate:  func(c *Config) { c.Account.FeeRate = 1.5 },
			wantErr: true,
			errMsg:  "account.fee_rate must be in [0, 1)",
		},
		{
			name:    "missing strategy",
			mutate:  func(c *Config) { c.Strategy.Name = "" },
			wantErr: true,
			errMsg:  "strategy.name is required",
		},
		{
			name:    "no pairs",
			mutate:  func(c *Config) { c.Pairs = nil },
			wantErr: true,
			errMsg:  "at least one currency pair is required",
		},
		{
			name:    "malformed pair",
			mutate:  func(c *Config) { c.Pairs = []string{"BTCUSDT"} },
			wantErr: true,
			errMsg:  "invalid pair",
		},
		{
			name:    "unknown interval",
			mutate:  func(c *Config) { c.Interval = "2h" },
			wantErr: true,
			errMsg:  "unknown kline interval",
		},
		{
			name:    "bad poll interval",
			mutate:  func(c *Config) { c.Live.PollInterval = "soon" },
			wantErr: true,
			errMsg:  "invalid live.poll_interval",
		},
		{
			name: "csv journal without files",
			mutate: func(c *Config) {
				c.Journal = JournalConfig{Type: "csv"}
			},
			wantErr: true,
			errMsg:  "fills_file and equity_file required",
		},
		{
			name: "sqlite journal without path",
			mutate: func(c *Config) {
				c.Journal = JournalConfig{Type: "sqlite"}
			},
			wantErr: true,
			errMsg:  "db_path required",
		},
		{
			name:    "unknown journal type",
			mutate:  func(c *Config) { c.Journal.Type = "postgres" },
			wantErr: true,
			errMsg:  "journal.type must be",
		},
		{
			name:   "journal disabled",
			mutate: func(c *Config) { c.Journal = JournalConfig{Type: "none"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
account:
  initial_capital: 500
  fee_rate: 0.002
strategy:
  name: ma-cross
  options:
    short_window: "5"
    long_window: "20"
pairs:
  - ETH_USDT
interval: 1h
live:
  poll_interval: 30s
  window_size: 100
journal:
  type: sqlite
  db_path: ./trader.db
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 500.0, cfg.Account.InitialCapital)
	assert.Equal(t, 0.002, cfg.Account.FeeRate)
	assert.Equal(t, "ma-cross", cfg.Strategy.Name)
	assert.Equal(t, "5", cfg.Strategy.Options["short_window"])
	assert.Equal(t, []string{"ETH_USDT"}, cfg.Pairs)
	assert.Equal(t, market.H1, cfg.KlineInterval())
	assert.Equal(t, "./trader.db", cfg.Journal.DBPath)
	assert.Equal(t, "debug", cfg.Logging.Level)

	poll, err := cfg.Live.PollDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, poll)
}

func TestLoadFromFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	data := `{
  "account": {"initial_capital": 1000, "fee_rate": 0.001},
  "strategy": {"name": "noop"},
  "pairs": ["BTC_USDT"],
  "journal": {"type": "none"}
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, cfg.Account.InitialCapital)
	assert.Equal(t, "noop", cfg.Strategy.Name)
	assert.Equal(t, market.H1, cfg.KlineInterval(), "interval defaults to 1h")
}

func TestLoadFromFileEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
account:
  initial_capital: 1000
  fee_rate: 0.001
strategy:
  name: noop
pairs: [BTC_USDT]
journal:
  type: none
notify:
  pushplus_token: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	t.Setenv("PUSHPLUS_TOKEN", "from-env")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Notify.PushPlusToken)
}

func TestLoadFromFileInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  initial_capital: -5\n"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	want := Default()
	require.NoError(t, want.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
