package quote

import "fmt"

// BudgetMode selects how proposals that exceed available funds are handled.
type BudgetMode string

const (
	// BudgetAllOrNone drops the whole set unless every proposal can be funded
	// at full size simultaneously.
	BudgetAllOrNone BudgetMode = "all_or_none"
	// BudgetProportional scales every surviving proposal's size down by a
	// uniform factor until the set fits the available funds.
	BudgetProportional BudgetMode = "proportional"
)

// ParseBudgetMode validates a config string.
func ParseBudgetMode(s string) (BudgetMode, error) {
	switch BudgetMode(s) {
	case BudgetAllOrNone, BudgetProportional:
		return BudgetMode(s), nil
	case "":
		return BudgetAllOrNone, nil
	default:
		return "", fmt.Errorf("quote: unknown budget mode %q", s)
	}
}

// Balances holds the free balance of each leg of the pair. BUY proposals
// commit quote asset (price × size), SELL proposals commit base asset (size).
type Balances struct {
	Base  float64
	Quote float64
}

// AdjustToBudget accepts, shrinks, or drops proposals so the total committed
// notional never exceeds available funds. The decision is taken over the whole
// set per refresh cycle, not per order.
func AdjustToBudget(proposals []Proposal, bal Balances, mode BudgetMode) []Proposal {
	if len(proposals) == 0 {
		return nil
	}

	var needQuote, needBase float64
	for _, p := range proposals {
		switch p.Side {
		case SideBuy:
			needQuote += p.Notional()
		case SideSell:
			needBase += p.Size
		}
	}

	funded := needQuote <= bal.Quote && needBase <= bal.Base
	if funded {
		out := make([]Proposal, len(proposals))
		copy(out, proposals)
		return out
	}

	if mode != BudgetProportional {
		return nil
	}

	factor := 1.0
	if needQuote > 0 && bal.Quote/needQuote < factor {
		factor = bal.Quote / needQuote
	}
	if needBase > 0 && bal.Base/needBase < factor {
		factor = bal.Base / needBase
	}
	if factor <= 0 {
		return nil
	}

	out := make([]Proposal, 0, len(proposals))
	for _, p := range proposals {
		p.Size *= factor
		if p.Size > 0 {
			out = append(out, p)
		}
	}
	return out
}
