// Package config loads and validates the bot configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"solana-multiplier-bot/internal/domain"
)

// Config errors.
var (
	// ErrMissingKey is returned when a required configuration value is absent.
	// Fatal at startup, never retried.
	ErrMissingKey = errors.New("missing required configuration key")

	// ErrInvalidValue is returned when a configuration value is out of range.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// Config is the complete bot configuration.
type Config struct {
	Exchange  ExchangeConfig  `yaml:"exchange"`
	Rugcheck  RugcheckConfig  `yaml:"rugcheck"`
	Strategy  StrategyConfig  `yaml:"strategy"`
	Router    RouterConfig    `yaml:"router"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Loop      LoopConfig      `yaml:"loop"`
	Journal   JournalConfig   `yaml:"journal"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Timeframe string          `yaml:"timeframe"`
	Symbols   []SymbolMapping `yaml:"symbols"`
}

// ExchangeConfig selects and authenticates the market data provider.
type ExchangeConfig struct {
	Name      string `yaml:"name"` // registry key, e.g. "binance"
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

// RugcheckConfig configures the token safety scanner.
type RugcheckConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"` // default https://api.rugcheck.xyz
}

// StrategyConfig holds strategy thresholds. Percent values are 0-100,
// converted to fractions at construction time.
type StrategyConfig struct {
	Name                 string  `yaml:"name"` // e.g. "multiplier-sell"
	MaxAllocationPercent float64 `yaml:"max_allocation_percent"`
	SellPercent2x        float64 `yaml:"sell_percent_2x"`
	SellPercent3x        float64 `yaml:"sell_percent_3x"`
}

// RouterConfig configures the swap router and relay.
type RouterConfig struct {
	APIHost    string  `yaml:"api_host"`
	Chain      string  `yaml:"chain"`
	PrivateKey string  `yaml:"private_key"` // base58 wallet secret
	Slippage   float64 `yaml:"slippage"`    // percent, default 0.5
}

// TelegramConfig configures the relay authentication handshake.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// LoopConfig holds pacing delays as duration strings ("1s", "5s").
type LoopConfig struct {
	PaceDelay    string `yaml:"pace_delay"`
	ErrorBackoff string `yaml:"error_backoff"`
}

// JournalConfig selects the execution journal backend.
// Empty DSNs mean in-memory only.
type JournalConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// MetricsConfig configures the Prometheus endpoint. Empty addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// SymbolMapping binds an exchange pair to its chain-specific identifiers.
type SymbolMapping struct {
	Symbol          string `yaml:"symbol"`
	Chain           string `yaml:"chain"`
	ContractAddress string `yaml:"contract_address"`
	TokenIn         string `yaml:"token_in"`
	TokenOut        string `yaml:"token_out"`
	Decimals        int    `yaml:"decimals"`
}

// Defaults applied when the file omits optional values.
const (
	DefaultRugcheckBaseURL = "https://api.rugcheck.xyz"
	DefaultSlippage        = 0.5
	DefaultPaceDelay       = 1 * time.Second
	DefaultErrorBackoff    = 5 * time.Second
)

// Load reads and validates configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Rugcheck.BaseURL == "" {
		c.Rugcheck.BaseURL = DefaultRugcheckBaseURL
	}
	if c.Router.Slippage == 0 {
		c.Router.Slippage = DefaultSlippage
	}
}

// Validate checks required keys and value ranges.
func (c *Config) Validate() error {
	required := []struct {
		key string
		ok  bool
	}{
		{"exchange.name", c.Exchange.Name != ""},
		{"exchange.api_key", c.Exchange.APIKey != ""},
		{"exchange.api_secret", c.Exchange.APISecret != ""},
		{"rugcheck.api_key", c.Rugcheck.APIKey != ""},
		{"strategy.name", c.Strategy.Name != ""},
		{"router.api_host", c.Router.APIHost != ""},
		{"router.chain", c.Router.Chain != ""},
		{"telegram.bot_token", c.Telegram.BotToken != ""},
		{"telegram.chat_id", c.Telegram.ChatID != 0},
		{"timeframe", c.Timeframe != ""},
		{"symbols", len(c.Symbols) > 0},
	}
	for _, r := range required {
		if !r.ok {
			return fmt.Errorf("%w: %s", ErrMissingKey, r.key)
		}
	}

	if c.Strategy.MaxAllocationPercent <= 0 || c.Strategy.MaxAllocationPercent > 100 {
		return fmt.Errorf("%w: strategy.max_allocation_percent must be in (0, 100]", ErrInvalidValue)
	}
	for _, p := range []struct {
		key string
		v   float64
	}{
		{"strategy.sell_percent_2x", c.Strategy.SellPercent2x},
		{"strategy.sell_percent_3x", c.Strategy.SellPercent3x},
	} {
		if p.v <= 0 || p.v > 100 {
			return fmt.Errorf("%w: %s must be in (0, 100]", ErrInvalidValue, p.key)
		}
	}

	for _, s := range c.Symbols {
		if s.Symbol == "" || s.Chain == "" || s.ContractAddress == "" {
			return fmt.Errorf("%w: symbol mapping needs symbol, chain and contract_address", ErrInvalidValue)
		}
		if s.TokenIn == "" || s.TokenOut == "" {
			return fmt.Errorf("%w: symbol %s needs token_in and token_out", ErrInvalidValue, s.Symbol)
		}
	}

	if _, err := c.PaceDelay(); err != nil {
		return fmt.Errorf("%w: loop.pace_delay: %v", ErrInvalidValue, err)
	}
	if _, err := c.ErrorBackoff(); err != nil {
		return fmt.Errorf("%w: loop.error_backoff: %v", ErrInvalidValue, err)
	}

	return nil
}

// PaceDelay returns the delay inserted between instruments.
func (c *Config) PaceDelay() (time.Duration, error) {
	if c.Loop.PaceDelay == "" {
		return DefaultPaceDelay, nil
	}
	return time.ParseDuration(c.Loop.PaceDelay)
}

// ErrorBackoff returns the delay applied after a cycle-level failure.
func (c *Config) ErrorBackoff() (time.Duration, error) {
	if c.Loop.ErrorBackoff == "" {
		return DefaultErrorBackoff, nil
	}
	return time.ParseDuration(c.Loop.ErrorBackoff)
}

// Instruments converts the symbol mappings into domain instruments.
func (c *Config) Instruments() []domain.Instrument {
	out := make([]domain.Instrument, 0, len(c.Symbols))
	for _, s := range c.Symbols {
		out = append(out, domain.Instrument{
			Symbol:          s.Symbol,
			Chain:           s.Chain,
			ContractAddress: s.ContractAddress,
			TokenIn:         s.TokenIn,
			TokenOut:        s.TokenOut,
			Decimals:        s.Decimals,
		})
	}
	return out
}
