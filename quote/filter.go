package quote

// ApplyBand drops proposals that would quote into a zone the band envelope
// flags as a reversal boundary. The direction is deliberately asymmetric: a
// SELL survives only strictly above the floor, a BUY only strictly below the
// ceiling. This avoids quoting into support/resistance, it is not a clamp.
func ApplyBand(proposals []Proposal, ceiling, floor float64) []Proposal {
	out := make([]Proposal, 0, len(proposals))
	for _, p := range proposals {
		switch p.Side {
		case SideSell:
			if p.Price > floor {
				out = append(out, p)
			}
		case SideBuy:
			if p.Price < ceiling {
				out = append(out, p)
			}
		}
	}
	return out
}
