package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantizePrice(t *testing.T) {
	c := PairConstraints{TickSize: 0.01}
	assert.InDelta(t, 99.50, c.QuantizePrice(99.495), 1e-9)
	assert.InDelta(t, 99.49, c.QuantizePrice(99.494), 1e-9)
	assert.InDelta(t, 100.00, c.QuantizePrice(100.001), 1e-9)

	// No tick configured leaves the price alone.
	assert.Equal(t, 99.4951, PairConstraints{}.QuantizePrice(99.4951))
}

func TestQuantizeSize_FloorsToStep(t *testing.T) {
	c := PairConstraints{StepSize: 0.001}
	assert.InDelta(t, 0.123, c.QuantizeSize(0.1239), 1e-9)
	assert.InDelta(t, 0.123, c.QuantizeSize(0.123), 1e-9)
	// Never rounds up past available funds.
	assert.InDelta(t, 0.0, c.QuantizeSize(0.0009), 1e-9)
}

func TestValidate(t *testing.T) {
	c := PairConstraints{
		TickSize:    0.01,
		StepSize:    0.001,
		MinQty:      0.001,
		MaxQty:      10,
		MinNotional: 5,
	}

	tests := []struct {
		name    string
		price   float64
		qty     float64
		wantErr bool
	}{
		{"valid", 100.00, 0.1, false},
		{"price off tick", 100.005, 0.1, true},
		{"qty off step", 100.00, 0.1005, true},
		{"below min qty", 100.00, 0.0, true},
		{"above max qty", 100.00, 11, true},
		{"below min notional", 10.00, 0.1, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := c.Validate(tc.price, tc.qty)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
