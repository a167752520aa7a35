// Package gateway implements the Binance spot venue connector: a signed REST
// client for orders, balances, and candle bootstrap, plus websocket streams
// for klines and order fills.
package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"market-maker-go/market"
	"market-maker-go/order"
)

const (
	BinanceSpotBaseURL    = "https://api.binance.com"
	BinanceSpotWSEndpoint = "wss://stream.binance.com:9443"
)

// BinanceRESTClient is a signed spot REST client. HTTPClient is injectable so
// tests can hand in an httptest server.
type BinanceRESTClient struct {
	BaseURL      string
	APIKey       string
	Secret       string
	HTTPClient   *http.Client
	RecvWindowMs int
	Limiter      RateLimiter
}

// NewDefaultHTTPClient returns an http.Client with a sane timeout.
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// Symbol converts "BTC-USDT" to the venue's "BTCUSDT".
func Symbol(pair string) string {
	return strings.ToUpper(strings.ReplaceAll(pair, "-", ""))
}

func (c *BinanceRESTClient) do(method, path string, params map[string]string, signed bool, out interface{}) error {
	if c == nil || c.HTTPClient == nil {
		return fmt.Errorf("http client not set")
	}
	if c.Limiter != nil {
		c.Limiter.Wait()
	}
	var endpoint string
	if signed {
		query, sig := SignParams(params, c.Secret, c.RecvWindowMs)
		endpoint = c.BaseURL + path + "?" + query + "&signature=" + url.QueryEscape(sig)
	} else {
		v := url.Values{}
		for k, val := range params {
			v.Set(k, val)
		}
		endpoint = c.BaseURL + path
		if len(v) > 0 {
			endpoint += "?" + v.Encode()
		}
	}
	req, err := http.NewRequest(method, endpoint, nil)
	if err != nil {
		return err
	}
	if c.APIKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Msg != "" {
			return apiErr
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

type bookTickerResp struct {
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

// ReferencePrice returns the current mid of the best bid/ask.
func (c *BinanceRESTClient) ReferencePrice(pair string) (float64, error) {
	var bt bookTickerResp
	err := c.do(http.MethodGet, "/api/v3/ticker/bookTicker",
		map[string]string{"symbol": Symbol(pair)}, false, &bt)
	if err != nil {
		return 0, err
	}
	bid, err := strconv.ParseFloat(bt.BidPrice, 64)
	if err != nil {
		return 0, fmt.Errorf("parse bid: %w", err)
	}
	ask, err := strconv.ParseFloat(bt.AskPrice, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ask: %w", err)
	}
	if bid <= 0 || ask <= 0 {
		return 0, fmt.Errorf("empty book for %s", pair)
	}
	return (bid + ask) / 2, nil
}

type accountResp struct {
	Balances []struct {
		Asset string `json:"asset"`
		Free  string `json:"free"`
	} `json:"balances"`
}

// AvailableBalance returns the free balance of asset.
func (c *BinanceRESTClient) AvailableBalance(asset string) (float64, error) {
	var acct accountResp
	if err := c.do(http.MethodGet, "/api/v3/account", map[string]string{}, true, &acct); err != nil {
		return 0, err
	}
	asset = strings.ToUpper(asset)
	for _, b := range acct.Balances {
		if strings.ToUpper(b.Asset) == asset {
			return strconv.ParseFloat(b.Free, 64)
		}
	}
	return 0, nil
}

// Klines fetches up to limit recent candles for the warm-up bootstrap.
func (c *BinanceRESTClient) Klines(pair, interval string, limit int) ([]market.Candle, error) {
	var rows [][]json.RawMessage
	err := c.do(http.MethodGet, "/api/v3/klines", map[string]string{
		"symbol":   Symbol(pair),
		"interval": interval,
		"limit":    strconv.Itoa(limit),
	}, false, &rows)
	if err != nil {
		return nil, err
	}
	candles := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		// [openTime, open, high, low, close, volume, ...]
		if len(row) < 6 {
			continue
		}
		var openMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			continue
		}
		vals := make([]float64, 5)
		ok := true
		for i := 1; i <= 5; i++ {
			var s string
			if err := json.Unmarshal(row[i], &s); err != nil {
				ok = false
				break
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				ok = false
				break
			}
			vals[i-1] = f
		}
		if !ok {
			continue
		}
		candles = append(candles, market.Candle{
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
			Ts:     time.UnixMilli(openMs).UTC(),
		})
	}
	return candles, nil
}

type placeResp struct {
	OrderID json.Number `json:"orderId"`
}

// Place submits a limit order. PostOnly maps to LIMIT_MAKER, which the venue
// rejects instead of letting it cross — maker intent is preserved venue-side.
func (c *BinanceRESTClient) Place(o order.Order) (string, error) {
	params := map[string]string{
		"symbol":   Symbol(o.Pair),
		"side":     strings.ToUpper(o.Side),
		"price":    FormatPrice(o.Price),
		"quantity": FormatQty(o.Quantity),
	}
	if o.PostOnly {
		params["type"] = "LIMIT_MAKER"
	} else {
		params["type"] = "LIMIT"
		params["timeInForce"] = "GTC"
	}
	if o.ID != "" {
		params["newClientOrderId"] = o.ID
	}
	var pr placeResp
	if err := c.do(http.MethodPost, "/api/v3/order", params, true, &pr); err != nil {
		return "", err
	}
	if pr.OrderID.String() == "" {
		return "", fmt.Errorf("empty orderId")
	}
	return pr.OrderID.String(), nil
}

// Cancel removes one resting order.
func (c *BinanceRESTClient) Cancel(pair, orderID string) error {
	return c.do(http.MethodDelete, "/api/v3/order", map[string]string{
		"symbol":  Symbol(pair),
		"orderId": orderID,
	}, true, nil)
}

type openOrderResp struct {
	OrderID json.Number `json:"orderId"`
}

// Open lists the IDs of all resting orders for pair.
func (c *BinanceRESTClient) Open(pair string) ([]string, error) {
	var rows []openOrderResp
	err := c.do(http.MethodGet, "/api/v3/openOrders", map[string]string{
		"symbol": Symbol(pair),
	}, true, &rows)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.OrderID.String() != "" {
			ids = append(ids, r.OrderID.String())
		}
	}
	return ids, nil
}
