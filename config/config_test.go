package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100000.0, cfg.Account.Balance)
	assert.Equal(t, 0.60, cfg.Risk.MinConfidence)
	assert.NotEmpty(t, cfg.Watchlist)
}

func TestLoadFromFile_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
account:
  balance: 50000
risk:
  max_daily_loss: 1000
  min_confidence: 0.75
watchlist:
  - ITC.NS
  - SBIN.NS
journal:
  db_path: /tmp/test.db
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 50000.0, cfg.Account.Balance)
	assert.Equal(t, 1000.0, cfg.Risk.MaxDailyLoss)
	assert.Equal(t, 0.75, cfg.Risk.MinConfidence)
	assert.Equal(t, []string{"ITC.NS", "SBIN.NS"}, cfg.Watchlist)

	// Fields not in the file keep their defaults.
	assert.Equal(t, 10000.0, cfg.Risk.MaxTradeAmount)
	assert.Equal(t, "STOP.flag", cfg.KillSwitch)
}

func TestLoadFromFile_JSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"account": {"balance": 75000}}`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 75000.0, cfg.Account.Balance)
}

func TestLoadFromFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero_balance", func(c *Config) { c.Account.Balance = 0 }},
		{"zero_daily_loss", func(c *Config) { c.Risk.MaxDailyLoss = 0 }},
		{"zero_profit_target", func(c *Config) { c.Risk.DailyProfitTarget = 0 }},
		{"zero_trade_amount", func(c *Config) { c.Risk.MaxTradeAmount = 0 }},
		{"confidence_above_one", func(c *Config) { c.Risk.MinConfidence = 1.5 }},
		{"negative_trade_cap", func(c *Config) { c.Risk.MaxTradesPerDay = -1 }},
		{"empty_watchlist", func(c *Config) { c.Watchlist = nil }},
		{"no_db_path", func(c *Config) { c.Journal.DBPath = "" }},
		{"bad_timeout", func(c *Config) { c.Source.Timeout = "soon" }},
		{"zero_rps", func(c *Config) { c.Source.RPS = 0 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
