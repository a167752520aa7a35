package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// ListenKeyClient manages the user-data stream listen key lifecycle.
type ListenKeyClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func (c *ListenKeyClient) request(method, path string) (string, error) {
	if c == nil || c.HTTPClient == nil {
		return "", fmt.Errorf("http client not set")
	}
	req, err := http.NewRequest(method, c.BaseURL+path, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-MBX-APIKEY", c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	var body struct {
		ListenKey string `json:"listenKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && method == http.MethodPost {
		return "", err
	}
	return body.ListenKey, nil
}

// New creates a listen key.
func (c *ListenKeyClient) New() (string, error) {
	key, err := c.request(http.MethodPost, "/api/v3/userDataStream")
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("empty listenKey")
	}
	return key, nil
}

// KeepAlive extends the key's validity; call at least every 30 minutes.
func (c *ListenKeyClient) KeepAlive(key string) error {
	_, err := c.request(http.MethodPut, "/api/v3/userDataStream?listenKey="+key)
	return err
}

// Close invalidates the key.
func (c *ListenKeyClient) Close(key string) error {
	_, err := c.request(http.MethodDelete, "/api/v3/userDataStream?listenKey="+key)
	return err
}

// UserStream reads the user-data websocket and surfaces fills. Keepalive and
// redial run inside Run, so callers only supply a handler.
type UserStream struct {
	Endpoint string
	Pair     string
	Keys     *ListenKeyClient
	Dialer   *websocket.Dialer

	OnFill   func(Fill)
	OnStatus func(orderID, status string)
}

func NewUserStream(pair string, keys *ListenKeyClient) *UserStream {
	return &UserStream{
		Endpoint: BinanceSpotWSEndpoint,
		Pair:     pair,
		Keys:     keys,
		Dialer:   websocket.DefaultDialer,
	}
}

// Run blocks until ctx is done, dispatching fill and status callbacks.
func (s *UserStream) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		key, err := s.Keys.New()
		if err == nil {
			err = s.readLoop(ctx, key)
			_ = s.Keys.Close(key)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (s *UserStream) readLoop(ctx context.Context, key string) error {
	u := strings.TrimSuffix(s.Endpoint, "/") + "/ws/" + key
	conn, _, err := s.Dialer.DialContext(ctx, u, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	keepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.keepAliveLoop(keepCtx, key)
	go func() {
		<-keepCtx.Done()
		conn.Close()
	}()

	symbol := Symbol(s.Pair)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fill, ok, err := ParseExecutionReport(raw, s.Pair)
		if err != nil || !ok {
			continue
		}
		// The stream covers the whole account; keep only our pair.
		var rep struct {
			Symbol string `json:"s"`
		}
		if json.Unmarshal(raw, &rep) == nil && rep.Symbol != "" && rep.Symbol != symbol {
			continue
		}
		if s.OnStatus != nil && fill.OrderID != "" {
			s.OnStatus(fill.OrderID, fill.Status)
		}
		if s.OnFill != nil {
			s.OnFill(fill)
		}
	}
}

func (s *UserStream) keepAliveLoop(ctx context.Context, key string) {
	ticker := time.NewTicker(25 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Keys.KeepAlive(key); err != nil {
				// One retry after a short pause; the redial loop handles the rest.
				time.Sleep(5 * time.Second)
				_ = s.Keys.KeepAlive(key)
			}
		}
	}
}
