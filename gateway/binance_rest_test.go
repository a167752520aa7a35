package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-maker-go/order"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *BinanceRESTClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &BinanceRESTClient{
		BaseURL:      srv.URL,
		APIKey:       "test-key",
		Secret:       "test-secret",
		HTTPClient:   srv.Client(),
		RecvWindowMs: 5000,
	}
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", Symbol("BTC-USDT"))
	assert.Equal(t, "ETHBTC", Symbol("eth-btc"))
}

func TestReferencePrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/bookTicker", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"bidPrice":"99.50","askPrice":"100.50"}`))
	})

	mid, err := c.ReferencePrice("BTC-USDT")
	require.NoError(t, err)
	assert.Equal(t, 100.0, mid)
}

func TestReferencePrice_EmptyBook(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bidPrice":"0.00000000","askPrice":"0.00000000"}`))
	})
	_, err := c.ReferencePrice("BTC-USDT")
	assert.Error(t, err)
}

func TestAvailableBalance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/account", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-MBX-APIKEY"))
		assert.NotEmpty(t, r.URL.Query().Get("signature"))
		assert.NotEmpty(t, r.URL.Query().Get("timestamp"))
		w.Write([]byte(`{"balances":[
			{"asset":"BTC","free":"1.5"},
			{"asset":"USDT","free":"1000.25"}
		]}`))
	})

	bal, err := c.AvailableBalance("usdt")
	require.NoError(t, err)
	assert.Equal(t, 1000.25, bal)

	// Unknown assets read as zero, not as an error.
	bal, err = c.AvailableBalance("DOGE")
	require.NoError(t, err)
	assert.Equal(t, 0.0, bal)
}

func TestKlines(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3m", r.URL.Query().Get("interval"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Write([]byte(`[
			[1700000000000,"100.0","101.0","99.0","100.5","12.0",1700000179999,"x",1,"y","z","i"],
			[1700000180000,"100.5","102.0","100.0","101.5","8.0",1700000359999,"x",1,"y","z","i"]
		]`))
	})

	candles, err := c.Klines("BTC-USDT", "3m", 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 100.0, candles[0].Open)
	assert.Equal(t, 100.5, candles[0].Close)
	assert.Equal(t, 101.5, candles[1].Close)
	assert.Equal(t, int64(1700000000), candles[0].Ts.Unix())
}

func TestPlace_PostOnlyUsesLimitMaker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "LIMIT_MAKER", q.Get("type"))
		assert.Empty(t, q.Get("timeInForce"))
		assert.Equal(t, "BUY", q.Get("side"))
		assert.Equal(t, "99.8", q.Get("price"))
		assert.Equal(t, "0.01", q.Get("quantity"))
		w.Write([]byte(`{"orderId":987654}`))
	})

	id, err := c.Place(order.Order{
		Pair: "BTC-USDT", Side: "BUY", Price: 99.8, Quantity: 0.01, PostOnly: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "987654", id)
}

func TestPlace_PlainLimitGetsGTC(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "LIMIT", q.Get("type"))
		assert.Equal(t, "GTC", q.Get("timeInForce"))
		w.Write([]byte(`{"orderId":1}`))
	})

	_, err := c.Place(order.Order{Pair: "BTC-USDT", Side: "SELL", Price: 100.2, Quantity: 0.01})
	require.NoError(t, err)
}

func TestPlace_VenueError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-2010,"msg":"Order would immediately match and take."}`))
	})

	_, err := c.Place(order.Order{Pair: "BTC-USDT", Side: "BUY", Price: 101, Quantity: 0.01, PostOnly: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-2010")
	assert.Contains(t, err.Error(), "immediately match")
}

func TestCancelAndOpen(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			assert.Equal(t, "42", r.URL.Query().Get("orderId"))
			w.Write([]byte(`{}`))
		case http.MethodGet:
			assert.Equal(t, "/api/v3/openOrders", r.URL.Path)
			w.Write([]byte(`[{"orderId":42},{"orderId":43}]`))
		}
	})

	require.NoError(t, c.Cancel("BTC-USDT", "42"))

	ids, err := c.Open("BTC-USDT")
	require.NoError(t, err)
	assert.Equal(t, []string{"42", "43"}, ids)
}
