package quote

import (
	"errors"

	"market-maker-go/indicator"
)

// GeneratorConfig fixes the quoting parameters. Validated once at startup.
type GeneratorConfig struct {
	Pair              string
	OrderSize         float64
	MomentumHigh      float64 // momentum above this is overbought, bearish bias
	MomentumLow       float64 // momentum below this is oversold, bullish bias
	SpreadMultiplier  float64 // scales volatility into a half-spread
	SkewSensitivity   float64 // fraction of the half-spread applied as mid shift
	DefaultHalfSpread float64 // used when volatility is indeterminate
}

// Generator derives a skewed reference price and a spread from indicator
// outputs and emits one BUY and one SELL proposal around it.
type Generator struct {
	cfg GeneratorConfig
}

func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Pair == "" {
		return nil, errors.New("quote: pair required")
	}
	if cfg.OrderSize <= 0 {
		return nil, errors.New("quote: order size must be > 0")
	}
	if cfg.MomentumLow >= cfg.MomentumHigh {
		return nil, errors.New("quote: momentum low must be below momentum high")
	}
	if cfg.SpreadMultiplier <= 0 {
		return nil, errors.New("quote: spread multiplier must be > 0")
	}
	if cfg.DefaultHalfSpread <= 0 || cfg.DefaultHalfSpread >= 1 {
		return nil, errors.New("quote: default half-spread must be in (0,1)")
	}
	return &Generator{cfg: cfg}, nil
}

// Signal classifies momentum: +1 oversold (bullish), -1 overbought (bearish),
// 0 neutral. An indeterminate momentum is neutral.
func (g *Generator) Signal(s indicator.Snapshot) int {
	if !s.MomentumValid {
		return 0
	}
	switch {
	case s.Momentum < g.cfg.MomentumLow:
		return 1
	case s.Momentum > g.cfg.MomentumHigh:
		return -1
	default:
		return 0
	}
}

// Quotes builds the BUY/SELL pair around refPrice. Both proposals are computed
// together; an error aborts the whole pair. Indicator unavailability never
// errors: it degrades to a neutral signal and the default half-spread.
func (g *Generator) Quotes(refPrice float64, s indicator.Snapshot) (buy, sell Proposal, err error) {
	if refPrice <= 0 {
		return Proposal{}, Proposal{}, errors.New("quote: invalid reference price")
	}

	halfSpread := g.cfg.DefaultHalfSpread
	if s.VolatilityValid {
		halfSpread = g.cfg.SpreadMultiplier * s.Volatility
	}

	adjusted := refPrice
	if sig := g.Signal(s); sig != 0 && s.VolatilityValid {
		offset := g.cfg.SpreadMultiplier * s.Volatility * g.cfg.SkewSensitivity
		adjusted = refPrice * (1 + float64(sig)*offset)
	}

	buy = Proposal{
		Pair:     g.cfg.Pair,
		Side:     SideBuy,
		Price:    adjusted * (1 - halfSpread),
		Size:     g.cfg.OrderSize,
		PostOnly: true,
	}
	sell = Proposal{
		Pair:     g.cfg.Pair,
		Side:     SideSell,
		Price:    adjusted * (1 + halfSpread),
		Size:     g.cfg.OrderSize,
		PostOnly: true,
	}
	if buy.Price <= 0 {
		return Proposal{}, Proposal{}, errors.New("quote: non-positive buy price")
	}
	return buy, sell, nil
}
