// Package engine hosts the tick-driven refresh scheduler: once per tick it
// decides whether to run a cancel-regenerate-replace cycle and shields the
// process from every per-step failure inside that cycle.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"market-maker-go/indicator"
	"market-maker-go/infrastructure/alert"
	"market-maker-go/infrastructure/logger"
	"market-maker-go/market"
	"market-maker-go/metrics"
	"market-maker-go/order"
	"market-maker-go/quote"
)

// CandleSource supplies the rolling candle window and its readiness flag.
type CandleSource interface {
	Snapshot() ([]market.Candle, bool)
}

// Venue supplies reference prices and balances. Connectivity retries are the
// venue's concern; the engine only sees per-call errors.
type Venue interface {
	ReferencePrice(pair string) (float64, error)
	AvailableBalance(asset string) (float64, error)
}

// OrderPort is the slice of the order manager the scheduler drives.
type OrderPort interface {
	Submit(o order.Order) (*order.Order, error)
	CancelAll(pair string) (int, []order.CancelFailure)
}

// FillEvent describes one observed trade against a resting order.
type FillEvent struct {
	Pair   string
	Side   string
	Amount float64
	Price  float64
}

// Config fixes the scheduler's parameters. Validated once at construction,
// never re-validated per tick.
type Config struct {
	Pair            string
	BaseAsset       string
	QuoteAsset      string
	RefreshInterval time.Duration
	Indicators      indicator.Config
	BudgetMode      quote.BudgetMode
}

// Engine is the quoting engine: scheduler, state owner, and glue between the
// generator, filters, and the order manager. It is driven synchronously by
// OnTick and holds no internal goroutines.
type Engine struct {
	cfg    Config
	gen    *quote.Generator
	venue  Venue
	feed   CandleSource
	orders OrderPort
	log    *logger.Logger
	stats  *metrics.Collector
	alerts *alert.Manager

	// mu guards state/status for readers on other goroutines (status logs,
	// fill notifications). Within a cycle the scheduler is the only writer.
	mu     sync.RWMutex
	state  State
	strat  StrategyState
	status Status
}

// New wires the engine. alerts may be nil; everything else is required.
func New(cfg Config, gen *quote.Generator, venue Venue, feed CandleSource, orders OrderPort, log *logger.Logger, stats *metrics.Collector, alerts *alert.Manager) (*Engine, error) {
	if cfg.Pair == "" || cfg.BaseAsset == "" || cfg.QuoteAsset == "" {
		return nil, errors.New("engine: pair and assets required")
	}
	if cfg.RefreshInterval <= 0 {
		return nil, errors.New("engine: refresh interval must be > 0")
	}
	if gen == nil || venue == nil || feed == nil || orders == nil || log == nil || stats == nil {
		return nil, errors.New("engine: missing component")
	}
	return &Engine{
		cfg:    cfg,
		gen:    gen,
		venue:  venue,
		feed:   feed,
		orders: orders,
		log:    log,
		stats:  stats,
		alerts: alerts,
		state:  StateIdle,
		// zero NextRefresh means refresh on the first tick
	}, nil
}

// SetGenerator swaps quoting parameters between cycles (config hot reload).
// Must not be called while OnTick runs; the runner serializes both.
func (e *Engine) SetGenerator(gen *quote.Generator) {
	if gen == nil {
		return
	}
	e.mu.Lock()
	e.gen = gen
	e.mu.Unlock()
	e.log.Info("quote generator replaced")
}

// OnTick is the single scheduling entry point, invoked once per external
// clock tick. It never returns an error and never panics past the cycle
// boundary.
func (e *Engine) OnTick(now time.Time) {
	e.mu.RLock()
	next := e.strat.NextRefresh
	e.mu.RUnlock()
	if now.Before(next) {
		return // IDLE
	}

	candles, ready := e.feed.Snapshot()
	if !ready {
		// Precondition, not an error: skip the whole cycle and leave the
		// refresh clock alone so the next tick re-checks.
		e.stats.CyclesSkipped.Inc()
		e.log.Warn("candle feed not ready, skipping cycle",
			zap.String("pair", e.cfg.Pair),
			zap.Int("candles", len(candles)))
		return
	}

	e.setState(StateRefreshing)
	defer e.setState(StateIdle)

	// The clock advances for every entered cycle, success or not, so repeated
	// failures cannot turn into a refresh storm.
	e.mu.Lock()
	e.strat.NextRefresh = now.Add(e.cfg.RefreshInterval)
	e.mu.Unlock()
	e.stats.Cycles.Inc()
	e.runCycle(now, candles)
}

// OnOrderFilled is an observability hook. It must not mutate StrategyState:
// fills race with the next scheduled refresh by design.
func (e *Engine) OnOrderFilled(ev FillEvent) {
	e.stats.Fills.Inc()
	e.log.Info("order filled",
		zap.String("pair", ev.Pair),
		zap.String("side", ev.Side),
		zap.Float64("amount", ev.Amount),
		zap.Float64("price", ev.Price))
	if e.alerts != nil {
		msg := fmt.Sprintf("%s %.4f %s at %.2f", ev.Side, ev.Amount, ev.Pair, ev.Price)
		_ = e.alerts.Info(msg, map[string]interface{}{"pair": ev.Pair})
	}
}

// Shutdown cancels all resting orders for the pair. It is the cleanup hook
// for host-triggered strategy cancellation.
func (e *Engine) Shutdown() {
	canceled, failures := e.orders.CancelAll(e.cfg.Pair)
	e.stats.OrdersCanceled.Add(float64(canceled))
	for _, f := range failures {
		e.stats.CancelFailures.Inc()
		e.log.Error("cancel on shutdown failed",
			zap.String("orderId", f.OrderID),
			zap.Error(f.Err))
	}
	e.log.Info("engine shut down",
		zap.String("pair", e.cfg.Pair),
		zap.Int("canceled", canceled))
}

// Status returns a snapshot for status rendering.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st := e.status
	st.State = e.state.String()
	st.NextRefresh = e.strat.NextRefresh
	st.PriceCeiling = e.strat.PriceCeiling
	st.PriceFloor = e.strat.PriceFloor
	st.BandSet = e.strat.BandSet
	return st
}

// runCycle executes one refresh. Every step failure is logged and contained;
// a panic from malformed data is caught at this boundary.
func (e *Engine) runCycle(now time.Time, candles []market.Candle) {
	defer func() {
		if r := recover(); r != nil {
			e.stats.CycleFailures.Inc()
			e.log.Error("refresh cycle panicked",
				zap.String("pair", e.cfg.Pair),
				zap.Any("panic", r))
		}
	}()

	// 1. Tear down the previous quotes, best-effort per order.
	canceled, failures := e.orders.CancelAll(e.cfg.Pair)
	e.stats.OrdersCanceled.Add(float64(canceled))
	for _, f := range failures {
		e.stats.CancelFailures.Inc()
		e.log.Warn("cancel failed",
			zap.String("orderId", f.OrderID),
			zap.Error(f.Err))
	}

	// 2. Recompute indicators; indeterminate values degrade, never abort.
	snap := indicator.Compute(candles, e.cfg.Indicators)
	e.recordSnapshot(now, snap)

	// 3. Reference price.
	ref, err := e.venue.ReferencePrice(e.cfg.Pair)
	if err != nil {
		e.failCycle("reference price unavailable", err)
		return
	}
	e.stats.ReferencePrice.Set(ref)

	// 4. Generate both proposals together.
	e.mu.RLock()
	gen := e.gen
	e.mu.RUnlock()
	buy, sell, err := gen.Quotes(ref, snap)
	if err != nil {
		e.failCycle("proposal generation failed", err)
		return
	}
	e.recordAdjusted(ref, buy, sell)
	proposals := []quote.Proposal{buy, sell}

	// 5. Band filter, only once an envelope has been established.
	if e.cfg.Indicators.BandPeriod > 0 && e.strat.BandSet {
		proposals = quote.ApplyBand(proposals, e.strat.PriceCeiling, e.strat.PriceFloor)
	}

	// 6. Budget adjustment.
	baseBal, err := e.venue.AvailableBalance(e.cfg.BaseAsset)
	if err != nil {
		e.failCycle("base balance unavailable", err)
		return
	}
	quoteBal, err := e.venue.AvailableBalance(e.cfg.QuoteAsset)
	if err != nil {
		e.failCycle("quote balance unavailable", err)
		return
	}
	proposals = quote.AdjustToBudget(proposals, quote.Balances{Base: baseBal, Quote: quoteBal}, e.cfg.BudgetMode)

	// 7. Place survivors; one failed submission never blocks its sibling.
	placed := 0
	for _, p := range proposals {
		o := order.Order{
			Pair:     p.Pair,
			Side:     string(p.Side),
			Price:    p.Price,
			Quantity: p.Size,
			PostOnly: p.PostOnly,
		}
		if _, err := e.orders.Submit(o); err != nil {
			e.stats.SubmitFailures.Inc()
			e.log.Warn("order submission failed",
				zap.String("side", o.Side),
				zap.Float64("price", o.Price),
				zap.Float64("size", o.Quantity),
				zap.Error(err))
			continue
		}
		placed++
		e.stats.OrdersPlaced.Inc()
	}

	e.log.Info("refresh cycle complete",
		zap.String("pair", e.cfg.Pair),
		zap.Float64("reference", ref),
		zap.Int("canceled", canceled),
		zap.Int("placed", placed),
		zap.Time("nextRefresh", e.strat.NextRefresh))
}

func (e *Engine) failCycle(msg string, err error) {
	e.stats.CycleFailures.Inc()
	e.log.Error(msg, zap.String("pair", e.cfg.Pair), zap.Error(err))
}

func (e *Engine) recordSnapshot(now time.Time, snap indicator.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if snap.BandValid {
		e.strat.PriceCeiling = snap.Band.Upper
		e.strat.PriceFloor = snap.Band.Lower
		e.strat.BandSet = true
		e.stats.PriceCeiling.Set(snap.Band.Upper)
		e.stats.PriceFloor.Set(snap.Band.Lower)
	}
	e.status.Momentum, e.status.MomentumOK = snap.Momentum, snap.MomentumValid
	e.status.Volatility, e.status.VolatilityOK = snap.Volatility, snap.VolatilityValid
	e.status.LastCycle = now
	if snap.MomentumValid {
		e.stats.Momentum.Set(snap.Momentum)
	}
	if snap.VolatilityValid {
		e.stats.Volatility.Set(snap.Volatility)
	}
}

func (e *Engine) recordAdjusted(ref float64, buy, sell quote.Proposal) {
	// The adjusted reference sits midway between the two quotes.
	adjusted := (buy.Price + sell.Price) / 2
	e.mu.Lock()
	e.status.LastReference = ref
	e.status.LastAdjusted = adjusted
	e.mu.Unlock()
	e.stats.AdjustedPrice.Set(adjusted)
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}
