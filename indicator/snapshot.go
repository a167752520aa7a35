package indicator

import "market-maker-go/market"

// Config fixes the lookbacks for one snapshot computation. BandPeriod == 0
// disables the envelope.
type Config struct {
	RSIPeriod  int
	NATRPeriod int
	BandPeriod int
	BandWidth  float64
}

// Snapshot carries one cycle's indicator outputs. It has no identity and is
// discarded after the cycle. Invalid entries mean the window was too short;
// consumers degrade to neutral behavior rather than failing.
type Snapshot struct {
	Momentum        float64
	MomentumValid   bool
	Volatility      float64
	VolatilityValid bool
	Band            Band
	BandValid       bool
}

// Compute evaluates all configured indicators over the window. It never
// returns an error: indeterminate indicators are flagged invalid.
func Compute(candles []market.Candle, cfg Config) Snapshot {
	var s Snapshot
	if v, err := RSI(candles, cfg.RSIPeriod); err == nil {
		s.Momentum, s.MomentumValid = v, true
	}
	if v, err := NATR(candles, cfg.NATRPeriod); err == nil {
		s.Volatility, s.VolatilityValid = v, true
	}
	if cfg.BandPeriod > 0 {
		if b, err := BandEnvelope(candles, cfg.BandPeriod, cfg.BandWidth); err == nil {
			s.Band, s.BandValid = b, true
		}
	}
	return s
}
