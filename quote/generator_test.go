package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-maker-go/indicator"
)

func testConfig() GeneratorConfig {
	return GeneratorConfig{
		Pair:              "BTC-USDT",
		OrderSize:         0.01,
		MomentumHigh:      70,
		MomentumLow:       30,
		SpreadMultiplier:  1.0,
		SkewSensitivity:   0.5,
		DefaultHalfSpread: 0.002,
	}
}

func TestNewGenerator_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GeneratorConfig)
	}{
		{"missing pair", func(c *GeneratorConfig) { c.Pair = "" }},
		{"zero order size", func(c *GeneratorConfig) { c.OrderSize = 0 }},
		{"inverted thresholds", func(c *GeneratorConfig) { c.MomentumLow = 80 }},
		{"zero spread multiplier", func(c *GeneratorConfig) { c.SpreadMultiplier = 0 }},
		{"half-spread too large", func(c *GeneratorConfig) { c.DefaultHalfSpread = 1 }},
		{"half-spread zero", func(c *GeneratorConfig) { c.DefaultHalfSpread = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			_, err := NewGenerator(cfg)
			assert.Error(t, err)
		})
	}
}

func TestSignal(t *testing.T) {
	g, err := NewGenerator(testConfig())
	require.NoError(t, err)

	tests := []struct {
		name string
		snap indicator.Snapshot
		want int
	}{
		{"oversold", indicator.Snapshot{Momentum: 25, MomentumValid: true}, 1},
		{"overbought", indicator.Snapshot{Momentum: 75, MomentumValid: true}, -1},
		{"neutral", indicator.Snapshot{Momentum: 50, MomentumValid: true}, 0},
		{"exactly at low is neutral", indicator.Snapshot{Momentum: 30, MomentumValid: true}, 0},
		{"exactly at high is neutral", indicator.Snapshot{Momentum: 70, MomentumValid: true}, 0},
		{"indeterminate is neutral", indicator.Snapshot{Momentum: 25, MomentumValid: false}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, g.Signal(tc.snap))
		})
	}
}

func TestQuotes_BullishSkew(t *testing.T) {
	// ref=100, momentum 25 -> +1, vol=0.01, mult=1, skew=0.5:
	// offset=0.005, adjusted=100.5, half-spread=0.01
	// buy = 100.5*0.99 = 99.495, sell = 100.5*1.01 = 101.505
	g, err := NewGenerator(testConfig())
	require.NoError(t, err)

	snap := indicator.Snapshot{
		Momentum: 25, MomentumValid: true,
		Volatility: 0.01, VolatilityValid: true,
	}
	buy, sell, err := g.Quotes(100, snap)
	require.NoError(t, err)

	assert.InDelta(t, 99.495, buy.Price, 1e-9)
	assert.InDelta(t, 101.505, sell.Price, 1e-9)
	assert.Equal(t, SideBuy, buy.Side)
	assert.Equal(t, SideSell, sell.Side)
	assert.Equal(t, 0.01, buy.Size)
	assert.Equal(t, 0.01, sell.Size)
	assert.True(t, buy.PostOnly)
	assert.True(t, sell.PostOnly)
}

func TestQuotes_BearishSkewShiftsDown(t *testing.T) {
	g, err := NewGenerator(testConfig())
	require.NoError(t, err)

	neutral := indicator.Snapshot{
		Momentum: 50, MomentumValid: true,
		Volatility: 0.01, VolatilityValid: true,
	}
	bearish := neutral
	bearish.Momentum = 80

	nBuy, nSell, err := g.Quotes(100, neutral)
	require.NoError(t, err)
	bBuy, bSell, err := g.Quotes(100, bearish)
	require.NoError(t, err)

	assert.Less(t, bBuy.Price, nBuy.Price)
	assert.Less(t, bSell.Price, nSell.Price)
}

func TestQuotes_NeutralNoSkew(t *testing.T) {
	g, err := NewGenerator(testConfig())
	require.NoError(t, err)

	snap := indicator.Snapshot{
		Momentum: 50, MomentumValid: true,
		Volatility: 0.01, VolatilityValid: true,
	}
	buy, sell, err := g.Quotes(100, snap)
	require.NoError(t, err)

	// Mid of the pair recovers the unshifted reference.
	assert.InDelta(t, 100, (buy.Price+sell.Price)/2, 1e-9)
}

func TestQuotes_FallbackSpreadWhenVolatilityMissing(t *testing.T) {
	g, err := NewGenerator(testConfig())
	require.NoError(t, err)

	// Oversold momentum but no volatility: skew is suppressed and the
	// default half-spread applies.
	snap := indicator.Snapshot{Momentum: 25, MomentumValid: true}
	buy, sell, err := g.Quotes(100, snap)
	require.NoError(t, err)

	assert.InDelta(t, 100*(1-0.002), buy.Price, 1e-9)
	assert.InDelta(t, 100*(1+0.002), sell.Price, 1e-9)
}

func TestQuotes_InvalidReference(t *testing.T) {
	g, err := NewGenerator(testConfig())
	require.NoError(t, err)

	_, _, err = g.Quotes(0, indicator.Snapshot{})
	assert.Error(t, err)
	_, _, err = g.Quotes(-5, indicator.Snapshot{})
	assert.Error(t, err)
}

func TestProposalNotional(t *testing.T) {
	p := Proposal{Price: 100, Size: 0.5}
	assert.Equal(t, 50.0, p.Notional())
}
