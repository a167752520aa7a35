// Package indicator implements the technical signals used by the quoting
// engine: an RSI momentum oscillator, a normalized average true range, and a
// moving-average band envelope. All functions are pure and recompute from the
// full window each call; at the tick cadence used (seconds) correctness beats
// incremental state.
package indicator

import (
	"errors"
	"math"

	"market-maker-go/market"
)

// ErrInsufficientHistory is returned when the candle window is shorter than
// the indicator's lookback requirement.
var ErrInsufficientHistory = errors.New("indicator: insufficient history")

// RSI computes the Relative Strength Index of the close series over period
// using Wilder's smoothing. Requires at least period+1 candles. A zero average
// loss yields 100, a zero average gain yields 0.
func RSI(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("indicator: rsi period must be > 0")
	}
	if len(candles) < period+1 {
		return 0, ErrInsufficientHistory
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		d := candles[i].Close - candles[i-1].Close
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing over the remainder of the window.
	for i := period + 1; i < len(candles); i++ {
		d := candles[i].Close - candles[i-1].Close
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 0, nil
		}
		return 100, nil
	}
	return 100 - 100/(1+avgGain/avgLoss), nil
}

// NATR computes the average true range over period using Wilder's smoothing,
// normalized by the latest close so the result is a dimensionless fraction of
// price. Requires at least period+1 candles.
func NATR(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("indicator: natr period must be > 0")
	}
	if len(candles) < period+1 {
		return 0, ErrInsufficientHistory
	}

	var atr float64
	for i := 1; i <= period; i++ {
		atr += trueRange(candles[i], candles[i-1].Close)
	}
	atr /= float64(period)
	for i := period + 1; i < len(candles); i++ {
		atr = (atr*float64(period-1) + trueRange(candles[i], candles[i-1].Close)) / float64(period)
	}

	last := candles[len(candles)-1].Close
	if last <= 0 {
		return 0, errors.New("indicator: non-positive close")
	}
	return atr / last, nil
}

func trueRange(c market.Candle, prevClose float64) float64 {
	tr := c.High - c.Low
	if hc := math.Abs(c.High - prevClose); hc > tr {
		tr = hc
	}
	if lc := math.Abs(c.Low - prevClose); lc > tr {
		tr = lc
	}
	return tr
}
