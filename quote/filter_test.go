package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyBand(t *testing.T) {
	buy := func(price float64) Proposal { return Proposal{Side: SideBuy, Price: price, Size: 1} }
	sell := func(price float64) Proposal { return Proposal{Side: SideSell, Price: price, Size: 1} }

	tests := []struct {
		name      string
		in        []Proposal
		ceiling   float64
		floor     float64
		wantSides []Side
	}{
		{
			name:      "both inside survive",
			in:        []Proposal{buy(99), sell(101)},
			ceiling:   105,
			floor:     95,
			wantSides: []Side{SideBuy, SideSell},
		},
		{
			name:      "buy above ceiling dropped",
			in:        []Proposal{buy(106), sell(104)},
			ceiling:   105,
			floor:     95,
			wantSides: []Side{SideSell},
		},
		{
			name:      "sell below floor dropped",
			in:        []Proposal{buy(94), sell(94)},
			ceiling:   105,
			floor:     95,
			wantSides: []Side{SideBuy},
		},
		{
			name:      "boundary is exclusive",
			in:        []Proposal{buy(105), sell(95)},
			ceiling:   105,
			floor:     95,
			wantSides: []Side{},
		},
		{
			// A sell above the ceiling passes: the sell check is against the
			// floor only, and vice versa.
			name:      "checks are one-sided",
			in:        []Proposal{sell(110), buy(90)},
			ceiling:   105,
			floor:     95,
			wantSides: []Side{SideSell, SideBuy},
		},
		{
			name:      "empty in empty out",
			in:        nil,
			ceiling:   105,
			floor:     95,
			wantSides: []Side{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := ApplyBand(tc.in, tc.ceiling, tc.floor)
			got := make([]Side, 0, len(out))
			for _, p := range out {
				got = append(got, p.Side)
			}
			assert.Equal(t, tc.wantSides, got)
		})
	}
}
