package config

import (
	"errors"
	"fmt"

	"market-maker-go/quote"
)

// Validate ensures required fields are present and strategy parameters are
// inside their legal ranges. Called once at startup; the engine does not
// re-validate per tick.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Venue.Name == "" {
		return errors.New("venue.name is required")
	}
	if cfg.Venue.APIKey == "" || cfg.Venue.APISecret == "" {
		return errors.New("venue.apiKey/apiSecret is required (or env overrides)")
	}
	if len(cfg.Pairs) == 0 {
		return errors.New("pairs config is required")
	}
	for pair, pc := range cfg.Pairs {
		if _, _, err := BaseQuote(pair); err != nil {
			return err
		}
		if pc.TickSize < 0 || pc.StepSize < 0 {
			return fmt.Errorf("pair %s tick/step sizes must be >= 0", pair)
		}
		if err := validateStrategy(pair, pc.Strategy); err != nil {
			return err
		}
	}
	return nil
}

func validateStrategy(pair string, s StrategyParams) error {
	if s.OrderSize <= 0 {
		return fmt.Errorf("pair %s strategy.orderSize must be > 0", pair)
	}
	if s.RefreshSec <= 0 {
		return fmt.Errorf("pair %s strategy.refreshSec must be > 0", pair)
	}
	if s.CandleInterval == "" {
		return fmt.Errorf("pair %s strategy.candleInterval is required", pair)
	}
	if s.MaxRecords <= 0 {
		return fmt.Errorf("pair %s strategy.maxRecords must be > 0", pair)
	}
	if s.MomentumPeriod <= 0 || s.VolatilityPeriod <= 0 {
		return fmt.Errorf("pair %s momentum/volatility periods must be > 0", pair)
	}
	if s.MomentumLow >= s.MomentumHigh {
		return fmt.Errorf("pair %s momentumLow must be below momentumHigh", pair)
	}
	if s.MomentumLow < 0 || s.MomentumHigh > 100 {
		return fmt.Errorf("pair %s momentum thresholds must be within [0,100]", pair)
	}
	if s.SpreadMultiplier <= 0 {
		return fmt.Errorf("pair %s strategy.spreadMultiplier must be > 0", pair)
	}
	if s.SkewSensitivity < 0 {
		return fmt.Errorf("pair %s strategy.skewSensitivity must be >= 0", pair)
	}
	if s.DefaultHalfSpread <= 0 || s.DefaultHalfSpread >= 1 {
		return fmt.Errorf("pair %s strategy.defaultHalfSpread must be in (0,1)", pair)
	}
	if s.BandPeriod < 0 {
		return fmt.Errorf("pair %s strategy.bandPeriod must be >= 0", pair)
	}
	if s.BandPeriod > 0 && s.BandWidth <= 0 {
		return fmt.Errorf("pair %s strategy.bandWidth must be > 0 when band is enabled", pair)
	}
	if s.MaxRecords <= s.MomentumPeriod || s.MaxRecords <= s.VolatilityPeriod || s.MaxRecords < s.BandPeriod {
		return fmt.Errorf("pair %s strategy.maxRecords must exceed indicator periods", pair)
	}
	if _, err := quote.ParseBudgetMode(s.BudgetMode); err != nil {
		return fmt.Errorf("pair %s: %w", pair, err)
	}
	return nil
}
