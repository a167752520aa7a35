// Package quote turns a reference price and indicator outputs into a pair of
// passive limit-order proposals, then filters and budget-adjusts them.
package quote

// Side of a proposal.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Proposal is a not-yet-submitted candidate limit order. Proposals are created
// fresh each refresh cycle and never mutated once placed; replacement is
// cancel-then-recreate.
type Proposal struct {
	Pair     string
	Side     Side
	Price    float64
	Size     float64
	PostOnly bool
}

// Notional returns price × size in quote-asset terms.
func (p Proposal) Notional() float64 {
	return p.Price * p.Size
}
