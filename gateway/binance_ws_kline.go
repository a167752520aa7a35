package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"market-maker-go/market"
)

// KlineHandler receives each kline update. closed marks a finished bar.
type KlineHandler func(c market.Candle, closed bool)

// KlineStream subscribes to the spot kline websocket for one pair/interval
// and redials with backoff until the context is canceled.
type KlineStream struct {
	Endpoint string // default BinanceSpotWSEndpoint
	Pair     string
	Interval string
	Dialer   *websocket.Dialer

	OnConnect    func()
	OnDisconnect func(err error)
}

func NewKlineStream(pair, interval string) *KlineStream {
	return &KlineStream{
		Endpoint: BinanceSpotWSEndpoint,
		Pair:     pair,
		Interval: interval,
		Dialer:   websocket.DefaultDialer,
	}
}

// Run blocks, delivering kline updates to handler. Parse errors on single
// messages are skipped; connection errors trigger a redial.
func (s *KlineStream) Run(ctx context.Context, handler KlineHandler) error {
	if s.Pair == "" || s.Interval == "" {
		return fmt.Errorf("kline stream: pair and interval required")
	}
	stream := strings.ToLower(Symbol(s.Pair)) + "@kline_" + s.Interval
	u := strings.TrimSuffix(s.Endpoint, "/") + "/ws/" + stream

	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.readLoop(ctx, u, handler)
		if s.OnDisconnect != nil && err != nil {
			s.OnDisconnect(err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (s *KlineStream) readLoop(ctx context.Context, u string, handler KlineHandler) error {
	conn, _, err := s.Dialer.DialContext(ctx, u, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	if s.OnConnect != nil {
		s.OnConnect()
	}
	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	// Close the connection when the context dies so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		candle, closed, err := ParseKline(raw)
		if err != nil {
			continue
		}
		if handler != nil {
			handler(candle, closed)
		}
	}
}

// WindowFeeder bridges a kline stream into a market.Window: forming bars
// replace the last candle, closed bars append.
type WindowFeeder struct {
	Window *market.Window

	lastOpen time.Time
	forming  bool
}

// OnKline implements KlineHandler semantics for the feeder.
func (f *WindowFeeder) OnKline(c market.Candle, closed bool) {
	if f.Window == nil {
		return
	}
	switch {
	case closed:
		if f.forming && c.Ts.Equal(f.lastOpen) {
			f.Window.ReplaceLast(c)
		} else {
			f.Window.Push(c)
		}
		f.forming = false
	case f.forming && c.Ts.Equal(f.lastOpen):
		f.Window.ReplaceLast(c)
	default:
		f.Window.Push(c)
		f.forming = true
		f.lastOpen = c.Ts
	}
}
