package market

import "sync"

// Window is a fixed-capacity, insertion-ordered candle buffer. Once capacity
// is reached the oldest candle is evicted. It is the only candle storage the
// quoting engine reads; candles inside it are never mutated.
type Window struct {
	mu       sync.RWMutex
	capacity int
	warmup   int
	candles  []Candle
}

// NewWindow creates a window holding at most capacity candles. The window
// reports ready once it holds warmup candles; warmup is clamped to capacity.
func NewWindow(capacity, warmup int) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	if warmup <= 0 || warmup > capacity {
		warmup = capacity
	}
	return &Window{
		capacity: capacity,
		warmup:   warmup,
		candles:  make([]Candle, 0, capacity),
	}
}

// Push appends a candle, evicting the oldest when the window is full.
func (w *Window) Push(c Candle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.candles) == w.capacity {
		copy(w.candles, w.candles[1:])
		w.candles = w.candles[:w.capacity-1]
	}
	w.candles = append(w.candles, c)
}

// ReplaceLast overwrites the most recent candle. Used when a feed re-delivers
// the forming bar; no-op on an empty window.
func (w *Window) ReplaceLast(c Candle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.candles) == 0 {
		return
	}
	w.candles[len(w.candles)-1] = c
}

// Snapshot returns a copy of the current candles (oldest first) together with
// the readiness flag.
func (w *Window) Snapshot() ([]Candle, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Candle, len(w.candles))
	copy(out, w.candles)
	return out, len(w.candles) >= w.warmup
}

// Len returns the current number of candles.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.candles)
}

// Ready reports whether enough history has been collected.
func (w *Window) Ready() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.candles) >= w.warmup
}
