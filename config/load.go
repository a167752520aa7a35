// Package config loads and validates the quoter's YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"market-maker-go/infrastructure/logger"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env         string                `yaml:"env"`
	MetricsAddr string                `yaml:"metricsAddr"`
	Logging     logger.Config         `yaml:"logging"`
	Venue       VenueConfig           `yaml:"venue"`
	Pairs       map[string]PairConfig `yaml:"pairs"`
}

// VenueConfig identifies the exchange connection.
type VenueConfig struct {
	Name       string `yaml:"name"`
	APIKey     string `yaml:"apiKey"`
	APISecret  string `yaml:"apiSecret"`
	BaseURL    string `yaml:"baseURL"`
	WSEndpoint string `yaml:"wsEndpoint"`
}

// PairConfig holds per-pair venue constraints and strategy parameters.
type PairConfig struct {
	TickSize    float64        `yaml:"tickSize"`
	StepSize    float64        `yaml:"stepSize"`
	MinQty      float64        `yaml:"minQty"`
	MaxQty      float64        `yaml:"maxQty"`
	MinNotional float64        `yaml:"minNotional"`
	Strategy    StrategyParams `yaml:"strategy"`
}

// StrategyParams mirrors the quoting engine's configuration surface.
type StrategyParams struct {
	OrderSize         float64 `yaml:"orderSize"`         // fixed size per quote, base asset
	RefreshSec        int     `yaml:"refreshSec"`        // cancel-and-replace cadence
	CandleInterval    string  `yaml:"candleInterval"`    // e.g. "3m"
	MaxRecords        int     `yaml:"maxRecords"`        // candle window capacity
	MomentumPeriod    int     `yaml:"momentumPeriod"`    // RSI lookback
	MomentumHigh      float64 `yaml:"momentumHigh"`      // overbought threshold
	MomentumLow       float64 `yaml:"momentumLow"`       // oversold threshold
	VolatilityPeriod  int     `yaml:"volatilityPeriod"`  // NATR lookback
	SpreadMultiplier  float64 `yaml:"spreadMultiplier"`  // NATR -> half-spread
	SkewSensitivity   float64 `yaml:"skewSensitivity"`   // mid shift as fraction of half-spread
	DefaultHalfSpread float64 `yaml:"defaultHalfSpread"` // fallback when NATR indeterminate
	BandPeriod        int     `yaml:"bandPeriod"`        // 0 disables the band filter
	BandWidth         float64 `yaml:"bandWidth"`         // band half-width in stddevs
	BudgetMode        string  `yaml:"budgetMode"`        // all_or_none | proportional
}

// BaseQuote splits a pair like "BTC-USDT" into its assets.
func BaseQuote(pair string) (base, quote string, err error) {
	parts := strings.SplitN(pair, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("pair %q must be BASE-QUOTE", pair)
	}
	return parts[0], parts[1], nil
}

// Load reads YAML config from path and validates it.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides credentials from env vars
// if present, so secrets can stay out of the file.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("MM_GATEWAY_API_KEY"); v != "" {
		cfg.Venue.APIKey = v
	}
	if v := os.Getenv("MM_GATEWAY_API_SECRET"); v != "" {
		cfg.Venue.APISecret = v
	}
	return cfg, Validate(cfg)
}
