package order

// Status represents order lifecycle.
type Status string

const (
	StatusNew      Status = "NEW"
	StatusAck      Status = "ACK"
	StatusPartial  Status = "PARTIAL"
	StatusFilled   Status = "FILLED"
	StatusCanceled Status = "CANCELED"
	StatusRejected Status = "REJECTED"
)

// Terminal reports whether the order can no longer rest on the book.
func (s Status) Terminal() bool {
	switch s {
	case StatusFilled, StatusCanceled, StatusRejected:
		return true
	}
	return false
}

// Order holds a simplified order view as tracked locally. Once placed an
// order is never amended; the engine replaces it wholesale.
type Order struct {
	ID        string
	Pair      string
	Side      string // BUY/SELL
	Price     float64
	Quantity  float64
	PostOnly  bool
	Status    Status
	LastError string
}
