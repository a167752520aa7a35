package engine

import "time"

// State of the tick state machine.
type State int

const (
	// StateIdle waits for the next refresh time.
	StateIdle State = iota
	// StateRefreshing executes one cancel-regenerate-replace cycle.
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRefreshing:
		return "REFRESHING"
	default:
		return "UNKNOWN"
	}
}

// StrategyState is the scheduler-owned mutable state. Only the scheduler
// writes it; the band filter reads ceiling/floor within the same cycle.
type StrategyState struct {
	NextRefresh  time.Time
	PriceCeiling float64
	PriceFloor   float64
	BandSet      bool
}

// Status is a read-only snapshot for status rendering.
type Status struct {
	State         string
	NextRefresh   time.Time
	Momentum      float64
	MomentumOK    bool
	Volatility    float64
	VolatilityOK  bool
	PriceCeiling  float64
	PriceFloor    float64
	BandSet       bool
	LastReference float64
	LastAdjusted  float64
	LastCycle     time.Time
}
