package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"market-maker-go/market"
)

// klineMessage matches the spot <symbol>@kline_<interval> stream payload.
type klineMessage struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Kline     struct {
		OpenTime int64  `json:"t"`
		Open     string `json:"o"`
		High     string `json:"h"`
		Low      string `json:"l"`
		Close    string `json:"c"`
		Volume   string `json:"v"`
		Closed   bool   `json:"x"`
	} `json:"k"`
}

// ParseKline decodes a kline stream message into a candle plus a flag marking
// whether the bar is closed (true) or still forming.
func ParseKline(raw []byte) (c market.Candle, closed bool, err error) {
	var msg klineMessage
	if err = json.Unmarshal(raw, &msg); err != nil {
		return
	}
	if msg.EventType != "kline" {
		err = fmt.Errorf("unexpected event type %q", msg.EventType)
		return
	}
	fields := [5]string{msg.Kline.Open, msg.Kline.High, msg.Kline.Low, msg.Kline.Close, msg.Kline.Volume}
	var vals [5]float64
	for i, s := range fields {
		vals[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			err = fmt.Errorf("parse kline field: %w", err)
			return
		}
	}
	c = market.Candle{
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
		Ts:     time.UnixMilli(msg.Kline.OpenTime).UTC(),
	}
	closed = msg.Kline.Closed
	return
}

// executionReport matches the user-data stream order update payload.
type executionReport struct {
	EventType     string      `json:"e"`
	Symbol        string      `json:"s"`
	Side          string      `json:"S"`
	ExecType      string      `json:"x"`
	OrderStatus   string      `json:"X"`
	OrderID       json.Number `json:"i"`
	LastFilledQty string      `json:"l"`
	LastFillPrice string      `json:"L"`
}

// Fill is one trade against a resting order, as seen on the user stream.
type Fill struct {
	Pair    string
	Side    string
	Amount  float64
	Price   float64
	OrderID string
	Status  string
}

// ParseExecutionReport extracts a fill from a user-stream message. The second
// return is false for non-trade events (acks, cancels, other event types).
func ParseExecutionReport(raw []byte, pair string) (Fill, bool, error) {
	var rep executionReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		return Fill{}, false, err
	}
	if rep.EventType != "executionReport" || rep.ExecType != "TRADE" {
		return Fill{}, false, nil
	}
	qty, err := strconv.ParseFloat(rep.LastFilledQty, 64)
	if err != nil {
		return Fill{}, false, fmt.Errorf("parse fill qty: %w", err)
	}
	price, err := strconv.ParseFloat(rep.LastFillPrice, 64)
	if err != nil {
		return Fill{}, false, fmt.Errorf("parse fill price: %w", err)
	}
	return Fill{
		Pair:    pair,
		Side:    rep.Side,
		Amount:  qty,
		Price:   price,
		OrderID: rep.OrderID.String(),
		Status:  rep.OrderStatus,
	}, true, nil
}
