package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, "BTC-USDT")

	c.Cycles.Inc()
	c.Cycles.Inc()
	c.OrdersPlaced.Inc()
	c.Momentum.Set(42.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Cycles))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.OrdersPlaced))
	assert.Equal(t, 42.5, testutil.ToFloat64(c.Momentum))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["quoter_refresh_cycles_total"])
	assert.True(t, names["quoter_momentum"])
	assert.True(t, names["quoter_price_ceiling"])
}

func TestNew_SeparateRegistriesDoNotCollide(t *testing.T) {
	a := New(prometheus.NewRegistry(), "BTC-USDT")
	b := New(prometheus.NewRegistry(), "ETH-USDT")
	a.Fills.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Fills))
}
