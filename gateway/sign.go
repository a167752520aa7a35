package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// SignParams builds the sorted query string, appends timestamp/recvWindow,
// and returns it with its HMAC-SHA256 signature.
func SignParams(params map[string]string, secret string, recvWindowMs int) (query, signature string) {
	if recvWindowMs > 0 {
		params["recvWindow"] = strconv.Itoa(recvWindowMs)
	}
	params["timestamp"] = strconv.FormatInt(time.Now().UnixMilli(), 10)

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	v := url.Values{}
	for _, k := range keys {
		v.Set(k, params[k])
	}
	query = v.Encode()

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(query))
	signature = hex.EncodeToString(mac.Sum(nil))
	return query, signature
}

// FormatQty prints a quantity without scientific notation, trimmed of
// trailing zeros, as Binance expects.
func FormatQty(q float64) string {
	s := strconv.FormatFloat(q, 'f', 8, 64)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "" {
		s = "0"
	}
	return s
}

// FormatPrice is FormatQty; kept separate for call-site clarity.
func FormatPrice(p float64) string { return FormatQty(p) }

// apiError decodes the venue's error envelope into a readable error.
type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e apiError) Error() string {
	return fmt.Sprintf("venue error %d: %s", e.Code, e.Msg)
}
