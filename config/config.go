// Package config loads the bot's financial constitution: the watchlist, the
// hard risk limits, and where state lives on disk.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete bot configuration.
type Config struct {
	Account    AccountConfig `json:"account" yaml:"account"`
	Risk       RiskConfig    `json:"risk" yaml:"risk"`
	Market     MarketConfig  `json:"market" yaml:"market"`
	Journal    JournalConfig `json:"journal" yaml:"journal"`
	Source     SourceConfig  `json:"source" yaml:"source"`
	Watchlist  []string      `json:"watchlist" yaml:"watchlist"`
	KillSwitch string        `json:"kill_switch" yaml:"kill_switch"`
}

// AccountConfig seeds the paper wallet on first run.
type AccountConfig struct {
	Balance  float64 `json:"balance" yaml:"balance"`
	Currency string  `json:"currency" yaml:"currency"`
}

// RiskConfig holds the hard limits consumed read-only by the risk manager.
type RiskConfig struct {
	MaxDailyLoss      float64 `json:"max_daily_loss" yaml:"max_daily_loss"`
	DailyProfitTarget float64 `json:"daily_profit_target" yaml:"daily_profit_target"`
	MaxTradeAmount    float64 `json:"max_trade_amount" yaml:"max_trade_amount"`
	MinConfidence     float64 `json:"min_confidence" yaml:"min_confidence"`
	MaxTradesPerDay   int     `json:"max_trades_per_day" yaml:"max_trades_per_day"`
	RiskPerTrade      float64 `json:"risk_per_trade" yaml:"risk_per_trade"`
}

// MarketConfig controls the schedule gate.
type MarketConfig struct {
	// Override bypasses the open/closed check for out-of-hours testing.
	Override bool `json:"override" yaml:"override"`
}

// JournalConfig locates the embedded journal database.
type JournalConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// SourceConfig points at the external signal service.
type SourceConfig struct {
	URL     string  `json:"url" yaml:"url"`
	RPS     float64 `json:"rps" yaml:"rps"`
	Timeout string  `json:"timeout" yaml:"timeout"` // e.g. "30s"
}

// ParseTimeout converts the timeout string to a duration.
func (s SourceConfig) ParseTimeout() (time.Duration, error) {
	if s.Timeout == "" {
		return 30 * time.Second, nil
	}
	return time.ParseDuration(s.Timeout)
}

// Default returns the configuration the original deployment shipped with.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Balance:  100000,
			Currency: "INR",
		},
		Risk: RiskConfig{
			MaxDailyLoss:      2000,
			DailyProfitTarget: 5000,
			MaxTradeAmount:    10000,
			MinConfidence:     0.60,
			MaxTradesPerDay:   20,
			RiskPerTrade:      0.02,
		},
		Journal: JournalConfig{
			DBPath: "sovereign.db",
		},
		Source: SourceConfig{
			RPS:     1,
			Timeout: "30s",
		},
		Watchlist: []string{
			"ITC.NS",
			"TATASTEEL.NS",
			"BEL.NS",
			"NTPC.NS",
			"POWERGRID.NS",
			"ASHOKLEY.NS",
			"HDFCBANK.NS",
			"ICICIBANK.NS",
			"SBIN.NS",
			"TATAMOTORS.NS",
			"MARUTI.NS",
		},
		KillSwitch: "STOP.flag",
	}
}

// LoadFromFile loads a YAML or JSON config (by extension), layered over the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for values the rest of the system cannot work
// with.
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive, got %v", c.Account.Balance)
	}
	if c.Risk.MaxDailyLoss <= 0 {
		return fmt.Errorf("risk.max_daily_loss must be positive, got %v", c.Risk.MaxDailyLoss)
	}
	if c.Risk.DailyProfitTarget <= 0 {
		return fmt.Errorf("risk.daily_profit_target must be positive, got %v", c.Risk.DailyProfitTarget)
	}
	if c.Risk.MaxTradeAmount <= 0 {
		return fmt.Errorf("risk.max_trade_amount must be positive, got %v", c.Risk.MaxTradeAmount)
	}
	if c.Risk.MinConfidence < 0 || c.Risk.MinConfidence > 1 {
		return fmt.Errorf("risk.min_confidence must be in [0,1], got %v", c.Risk.MinConfidence)
	}
	if c.Risk.MaxTradesPerDay < 0 {
		return fmt.Errorf("risk.max_trades_per_day must not be negative, got %d", c.Risk.MaxTradesPerDay)
	}
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must not be empty")
	}
	if c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path must be set")
	}
	if _, err := c.Source.ParseTimeout(); err != nil {
		return fmt.Errorf("source.timeout: %w", err)
	}
	if c.Source.RPS <= 0 {
		return fmt.Errorf("source.rps must be positive, got %v", c.Source.RPS)
	}
	return nil
}
