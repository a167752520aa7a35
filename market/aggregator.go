package market

import (
	"sync"
	"time"
)

// Aggregator builds fixed-interval candles from a trade stream. It is used
// when the venue only provides trades; venues with native kline streams feed
// the Window directly.
type Aggregator struct {
	Interval time.Duration
	mu       sync.Mutex
	current  *Candle
}

func NewAggregator(interval time.Duration) *Aggregator {
	return &Aggregator{Interval: interval}
}

// OnTrade folds a trade into the forming candle. When the trade crosses the
// interval boundary the previous candle is closed and returned; otherwise nil.
func (a *Aggregator) OnTrade(price, qty float64, ts time.Time) *Candle {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil || ts.Sub(a.current.Ts) >= a.Interval {
		closed := a.current
		a.current = &Candle{
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: qty,
			Ts:     ts,
		}
		return closed
	}

	if price > a.current.High {
		a.current.High = price
	}
	if price < a.current.Low {
		a.current.Low = price
	}
	a.current.Close = price
	a.current.Volume += qty
	return nil
}

// Current returns a copy of the forming candle, if any.
func (a *Aggregator) Current() (Candle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return Candle{}, false
	}
	return *a.current, true
}
