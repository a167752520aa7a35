// Package metrics provides Prometheus metrics for the quoting engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates the engine's counters and gauges. Construct one per
// process with a registerer; tests pass a fresh registry.
type Collector struct {
	Cycles         prometheus.Counter
	CyclesSkipped  prometheus.Counter
	CycleFailures  prometheus.Counter
	OrdersPlaced   prometheus.Counter
	SubmitFailures prometheus.Counter
	OrdersCanceled prometheus.Counter
	CancelFailures prometheus.Counter
	Fills          prometheus.Counter

	Momentum       prometheus.Gauge
	Volatility     prometheus.Gauge
	ReferencePrice prometheus.Gauge
	AdjustedPrice  prometheus.Gauge
	PriceCeiling   prometheus.Gauge
	PriceFloor     prometheus.Gauge
}

// New registers the quoter metric set, labeled by pair.
func New(reg prometheus.Registerer, pair string) *Collector {
	f := promauto.With(reg)
	labels := prometheus.Labels{"pair": pair}
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{Name: name, Help: help, ConstLabels: labels})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{Name: name, Help: help, ConstLabels: labels})
	}
	return &Collector{
		Cycles:         counter("quoter_refresh_cycles_total", "Refresh cycles entered"),
		CyclesSkipped:  counter("quoter_cycles_skipped_total", "Cycles skipped because the candle feed was not ready"),
		CycleFailures:  counter("quoter_cycle_failures_total", "Cycles that failed after entering REFRESHING"),
		OrdersPlaced:   counter("quoter_orders_placed_total", "Orders submitted to the venue"),
		SubmitFailures: counter("quoter_order_submit_failures_total", "Order submissions rejected or failed"),
		OrdersCanceled: counter("quoter_orders_canceled_total", "Resting orders canceled"),
		CancelFailures: counter("quoter_order_cancel_failures_total", "Cancellations that failed"),
		Fills:          counter("quoter_fills_total", "Fill notifications received"),

		Momentum:       gauge("quoter_momentum", "Latest momentum oscillator value"),
		Volatility:     gauge("quoter_volatility", "Latest normalized ATR"),
		ReferencePrice: gauge("quoter_reference_price", "Reference mid price used in the last cycle"),
		AdjustedPrice:  gauge("quoter_adjusted_price", "Skew-adjusted reference price of the last cycle"),
		PriceCeiling:   gauge("quoter_price_ceiling", "Current band envelope ceiling"),
		PriceFloor:     gauge("quoter_price_floor", "Current band envelope floor"),
	}
}

// Serve exposes /metrics on addr; empty addr disables the server.
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
