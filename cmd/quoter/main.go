package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"market-maker-go/config"
	"market-maker-go/gateway"
	"market-maker-go/indicator"
	"market-maker-go/infrastructure/alert"
	"market-maker-go/infrastructure/logger"
	"market-maker-go/internal/engine"
	"market-maker-go/market"
	"market-maker-go/metrics"
	"market-maker-go/order"
	"market-maker-go/quote"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	pairFlag := flag.String("pair", "", "trading pair (e.g. BTC-USDT); defaults to the only configured pair")
	dryRun := flag.Bool("dryRun", false, "log order actions without hitting the venue")
	restRate := flag.Float64("restRate", 5, "REST rate limit: tokens per second")
	restBurst := flag.Int("restBurst", 10, "REST rate limit: max burst")
	tickMs := flag.Int("tickMs", 1000, "external tick period in milliseconds")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	pair := strings.ToUpper(*pairFlag)
	if pair == "" {
		for p := range cfg.Pairs {
			pair = p
		}
	}
	pairCfg, ok := cfg.Pairs[pair]
	if !ok {
		log.Fatalf("pair %s not found in config", pair)
	}
	base, quoteAsset, err := config.BaseQuote(pair)
	if err != nil {
		log.Fatalf("bad pair: %v", err)
	}

	zl, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Close()

	metrics.Serve(cfg.MetricsAddr)
	stats := metrics.New(prometheus.DefaultRegisterer, pair)

	rest := &gateway.BinanceRESTClient{
		BaseURL:      cfg.Venue.BaseURL,
		APIKey:       cfg.Venue.APIKey,
		Secret:       cfg.Venue.APISecret,
		HTTPClient:   gateway.NewDefaultHTTPClient(),
		RecvWindowMs: 5000,
		Limiter:      gateway.NewTokenBucketLimiter(*restRate, *restBurst),
	}
	if rest.BaseURL == "" {
		rest.BaseURL = gateway.BinanceSpotBaseURL
	}

	var gw order.Gateway = rest
	if *dryRun {
		gw = newPaperGateway(zl)
		zl.Info("dry run: orders will not reach the venue")
	}
	mgr := order.NewManager(gw)
	mgr.SetConstraints(order.PairConstraints{
		TickSize:    pairCfg.TickSize,
		StepSize:    pairCfg.StepSize,
		MinQty:      pairCfg.MinQty,
		MaxQty:      pairCfg.MaxQty,
		MinNotional: pairCfg.MinNotional,
	})

	strat := pairCfg.Strategy
	gen, err := buildGenerator(pair, strat)
	if err != nil {
		zl.Fatal("init generator", zap.Error(err))
	}
	budgetMode, _ := quote.ParseBudgetMode(strat.BudgetMode)

	warmup := strat.MomentumPeriod
	if strat.VolatilityPeriod > warmup {
		warmup = strat.VolatilityPeriod
	}
	warmup++
	if strat.BandPeriod > warmup {
		warmup = strat.BandPeriod
	}
	window := market.NewWindow(strat.MaxRecords, warmup)

	// Bootstrap history over REST so quoting can start before the stream has
	// accumulated a full window.
	if candles, err := rest.Klines(pair, strat.CandleInterval, strat.MaxRecords); err != nil {
		zl.Warn("kline bootstrap failed", zap.Error(err))
	} else {
		for _, c := range candles {
			window.Push(c)
		}
		zl.Info("kline bootstrap complete", zap.Int("candles", len(candles)))
	}

	alerts := alert.NewManager(
		[]alert.Channel{alert.NewZapChannel("log", zl.Logger)},
		time.Minute,
	)

	eng, err := engine.New(engine.Config{
		Pair:            pair,
		BaseAsset:       base,
		QuoteAsset:      quoteAsset,
		RefreshInterval: time.Duration(strat.RefreshSec) * time.Second,
		Indicators: indicator.Config{
			RSIPeriod:  strat.MomentumPeriod,
			NATRPeriod: strat.VolatilityPeriod,
			BandPeriod: strat.BandPeriod,
			BandWidth:  strat.BandWidth,
		},
		BudgetMode: budgetMode,
	}, gen, rest, window, mgr, zl, stats, alerts)
	if err != nil {
		zl.Fatal("init engine", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws := gateway.NewKlineStream(pair, strat.CandleInterval)
	if cfg.Venue.WSEndpoint != "" {
		ws.Endpoint = cfg.Venue.WSEndpoint
	}
	ws.OnConnect = func() { zl.Info("kline stream connected", zap.String("pair", pair)) }
	ws.OnDisconnect = func(err error) { zl.Warn("kline stream disconnected", zap.Error(err)) }
	feeder := &gateway.WindowFeeder{Window: window}
	go func() {
		if err := ws.Run(ctx, feeder.OnKline); err != nil && ctx.Err() == nil {
			zl.Error("kline stream exited", zap.Error(err))
			cancel()
		}
	}()

	if !*dryRun {
		keys := &gateway.ListenKeyClient{
			BaseURL:    rest.BaseURL,
			APIKey:     cfg.Venue.APIKey,
			HTTPClient: gateway.NewDefaultHTTPClient(),
		}
		us := gateway.NewUserStream(pair, keys)
		if cfg.Venue.WSEndpoint != "" {
			us.Endpoint = cfg.Venue.WSEndpoint
		}
		us.OnFill = func(f gateway.Fill) {
			eng.OnOrderFilled(engine.FillEvent{
				Pair:   f.Pair,
				Side:   f.Side,
				Amount: f.Amount,
				Price:  f.Price,
			})
		}
		us.OnStatus = func(orderID, status string) {
			switch status {
			case "FILLED":
				_ = mgr.Update(orderID, order.StatusFilled)
			case "PARTIALLY_FILLED":
				_ = mgr.Update(orderID, order.StatusPartial)
			case "CANCELED", "EXPIRED":
				_ = mgr.Update(orderID, order.StatusCanceled)
			case "REJECTED":
				_ = mgr.Update(orderID, order.StatusRejected)
			}
		}
		go func() {
			if err := us.Run(ctx); err != nil && ctx.Err() == nil {
				zl.Error("user stream exited", zap.Error(err))
			}
		}()
	}

	// Hot-reload quoting parameters between cycles. Venue, pair, and window
	// sizing stay fixed for the process lifetime.
	watcher := config.Watcher{Path: *cfgPath, Cooldown: 5 * time.Second}
	go func() {
		_ = watcher.Start(ctx, func(next config.AppConfig) {
			pc, ok := next.Pairs[pair]
			if !ok {
				return
			}
			g, err := buildGenerator(pair, pc.Strategy)
			if err != nil {
				zl.Warn("config reload rejected", zap.Error(err))
				return
			}
			eng.SetGenerator(g)
			zl.Info("strategy parameters reloaded", zap.String("pair", pair))
		})
	}()

	go statusLoop(ctx, eng, zl)

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	if interval, err := daemon.SdWatchdogEnabled(false); err == nil && interval > 0 {
		go func() {
			t := time.NewTicker(interval / 2)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
				}
			}
		}()
	}

	ticker := time.NewTicker(time.Duration(*tickMs) * time.Millisecond)
	defer ticker.Stop()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	zl.Info("quoter started",
		zap.String("pair", pair),
		zap.String("venue", cfg.Venue.Name),
		zap.Int("refreshSec", strat.RefreshSec),
		zap.Bool("dryRun", *dryRun))

	for {
		select {
		case <-quit:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			zl.Info("shutdown requested")
			cancel()
			eng.Shutdown()
			return
		case <-ctx.Done():
			eng.Shutdown()
			return
		case now := <-ticker.C:
			eng.OnTick(now)
		}
	}
}

func buildGenerator(pair string, s config.StrategyParams) (*quote.Generator, error) {
	return quote.NewGenerator(quote.GeneratorConfig{
		Pair:              pair,
		OrderSize:         s.OrderSize,
		MomentumHigh:      s.MomentumHigh,
		MomentumLow:       s.MomentumLow,
		SpreadMultiplier:  s.SpreadMultiplier,
		SkewSensitivity:   s.SkewSensitivity,
		DefaultHalfSpread: s.DefaultHalfSpread,
	})
}

func statusLoop(ctx context.Context, eng *engine.Engine, zl *logger.Logger) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st := eng.Status()
			fields := []zap.Field{
				zap.String("state", st.State),
				zap.Time("nextRefresh", st.NextRefresh),
				zap.Float64("reference", st.LastReference),
				zap.Float64("adjusted", st.LastAdjusted),
			}
			if st.MomentumOK {
				fields = append(fields, zap.Float64("momentum", st.Momentum))
			}
			if st.VolatilityOK {
				fields = append(fields, zap.Float64("volatility", st.Volatility))
			}
			if st.BandSet {
				fields = append(fields,
					zap.Float64("ceiling", st.PriceCeiling),
					zap.Float64("floor", st.PriceFloor))
			}
			zl.Info("status", fields...)
		}
	}
}

// paperGateway keeps orders in memory for dry runs.
type paperGateway struct {
	zl   *logger.Logger
	mu   sync.Mutex
	open map[string][]string
	seq  int
}

func newPaperGateway(zl *logger.Logger) *paperGateway {
	return &paperGateway{zl: zl, open: make(map[string][]string)}
}

func (g *paperGateway) Place(o order.Order) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	id := o.ID
	if id == "" {
		id = fmt.Sprintf("paper-%d", g.seq)
	}
	g.open[o.Pair] = append(g.open[o.Pair], id)
	g.zl.Info("paper order placed",
		zap.String("side", o.Side),
		zap.Float64("price", o.Price),
		zap.Float64("size", o.Quantity))
	return id, nil
}

func (g *paperGateway) Cancel(pair, orderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := g.open[pair]
	for i, id := range ids {
		if id == orderID {
			g.open[pair] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	g.zl.Info("paper order canceled", zap.String("orderId", orderID))
	return nil
}

func (g *paperGateway) Open(pair string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.open[pair]))
	copy(out, g.open[pair])
	return out, nil
}
