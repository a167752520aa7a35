package order

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Gateway is the venue-side order abstraction. Place and Cancel are
// fire-and-forget requests; fills and cancellations are confirmed later
// through the venue's notification stream.
type Gateway interface {
	Place(o Order) (string, error)
	Cancel(pair, orderID string) error
	Open(pair string) ([]string, error)
}

var ErrUnknownOrder = errors.New("order: unknown order")

// CancelFailure records one failed cancellation inside a best-effort sweep.
type CancelFailure struct {
	OrderID string
	Err     error
}

// Manager registers orders locally and relays them through the Gateway.
// One instance per pair; the engine is the only writer.
type Manager struct {
	gw          Gateway
	mu          sync.RWMutex
	orders      map[string]*Order
	constraints PairConstraints
	constrained bool
}

func NewManager(gw Gateway) *Manager {
	return &Manager{
		gw:     gw,
		orders: make(map[string]*Order),
	}
}

// SetConstraints installs the pair's tick/step limits; Submit quantizes and
// validates against them.
func (m *Manager) SetConstraints(c PairConstraints) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = c
	m.constrained = true
}

// Submit quantizes, registers, and places one order. The returned order
// carries the venue-assigned ID.
func (m *Manager) Submit(o Order) (*Order, error) {
	m.mu.RLock()
	c, constrained := m.constraints, m.constrained
	m.mu.RUnlock()

	if constrained {
		o.Price = c.QuantizePrice(o.Price)
		o.Quantity = c.QuantizeSize(o.Quantity)
		if err := c.Validate(o.Price, o.Quantity); err != nil {
			return nil, fmt.Errorf("constraint: %w", err)
		}
	}
	if o.ID == "" {
		o.ID = generateID(o.Pair)
	}
	o.Status = StatusNew

	venueID, err := m.gw.Place(o)
	if err != nil {
		o.Status = StatusRejected
		o.LastError = err.Error()
		return nil, err
	}
	if venueID != "" {
		o.ID = venueID
	}
	o.Status = StatusAck

	m.mu.Lock()
	reg := o
	m.orders[o.ID] = &reg
	m.mu.Unlock()
	return &o, nil
}

// CancelAll sweeps every order resting at the venue for pair, best-effort:
// an individual failure is recorded and the sweep continues.
func (m *Manager) CancelAll(pair string) (canceled int, failures []CancelFailure) {
	ids, err := m.gw.Open(pair)
	if err != nil {
		// Venue listing unavailable; fall back to the local registry.
		ids = m.restingIDs(pair)
	}
	for _, id := range ids {
		if err := m.gw.Cancel(pair, id); err != nil {
			failures = append(failures, CancelFailure{OrderID: id, Err: err})
			continue
		}
		canceled++
		m.markCanceled(id)
	}
	return canceled, failures
}

// Update applies a venue notification to the local registry.
func (m *Manager) Update(id string, st Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrUnknownOrder
	}
	o.Status = st
	return nil
}

// Resting returns the locally tracked non-terminal orders for pair.
func (m *Manager) Resting(pair string) []Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		if o.Pair == pair && !o.Status.Terminal() {
			out = append(out, *o)
		}
	}
	return out
}

func (m *Manager) restingIDs(pair string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.orders))
	for id, o := range m.orders {
		if o.Pair == pair && !o.Status.Terminal() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (m *Manager) markCanceled(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		o.Status = StatusCanceled
	}
}

func generateID(prefix string) string {
	if prefix == "" {
		prefix = "ord"
	}
	return prefix + "-" + time.Now().UTC().Format("20060102150405.000000000")
}
