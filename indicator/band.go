package indicator

import (
	"errors"
	"math"

	"market-maker-go/market"
)

// Band is a moving-average price envelope: SMA of the last period closes plus
// and minus width standard deviations of the same window.
type Band struct {
	Upper float64
	Lower float64
}

// BandEnvelope computes the envelope over the most recent period candles.
// Requires at least period candles.
func BandEnvelope(candles []market.Candle, period int, width float64) (Band, error) {
	if period <= 1 {
		return Band{}, errors.New("indicator: band period must be > 1")
	}
	if len(candles) < period {
		return Band{}, ErrInsufficientHistory
	}

	window := candles[len(candles)-period:]
	var sum float64
	for _, c := range window {
		sum += c.Close
	}
	mean := sum / float64(period)

	var sq float64
	for _, c := range window {
		d := c.Close - mean
		sq += d * d
	}
	sigma := math.Sqrt(sq / float64(period))

	return Band{
		Upper: mean + width*sigma,
		Lower: mean - width*sigma,
	}, nil
}
