// Package exchange hosts the Binance USDT-M futures REST and stream connectors.
package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ashishbot120/trading-bot/internal/metrics"
)

const (
	pathOrder        = "/fapi/v1/order"
	pathExchangeInfo = "/fapi/v1/exchangeInfo"
	pathPremiumIndex = "/fapi/v1/premiumIndex"

	// DefaultTimeout bounds each REST call end to end.
	DefaultTimeout = 15 * time.Second
)

// Client issues REST requests against a Binance futures endpoint. Signed
// endpoints get a fresh millisecond timestamp and an HMAC-SHA256 signature
// over the exact query string that is sent.
type Client struct {
	baseURL    string
	apiKey     string
	secret     []byte
	httpClient *http.Client
	log        zerolog.Logger

	readLimiter  *rate.Limiter
	writeLimiter *rate.Limiter
}

// ClientOption configures Client construction parameters.
type ClientOption func(*Client)

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger attaches a logger; the default is a no-op.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient constructs a REST client. Credentials may be empty for clients
// used only against unsigned endpoints.
func NewClient(baseURL, apiKey, apiSecret string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		secret:       []byte(apiSecret),
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		log:          zerolog.Nop(),
		readLimiter:  rate.NewLimiter(rate.Limit(10), 10),
		writeLimiter: rate.NewLimiter(rate.Limit(5), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL reports the endpoint this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// SignQuery canonicalizes params (sorted keys, URL-escaped, repeated keys
// kept), appends the timestamp, and returns the query string with the
// HMAC-SHA256 signature appended as the final parameter. The signature covers
// exactly the bytes that precede it.
func (c *Client) SignQuery(params url.Values, ts time.Time) string {
	v := url.Values{}
	for key, vals := range params {
		for _, val := range vals {
			v.Add(key, val)
		}
	}
	v.Set("timestamp", strconv.FormatInt(ts.UnixMilli(), 10))

	query := v.Encode()
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(query))
	return query + "&signature=" + hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, signed bool) ([]byte, error) {
	lim := c.readLimiter
	if method != http.MethodGet {
		lim = c.writeLimiter
	}
	if err := lim.Wait(ctx); err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}

	var query string
	if signed {
		// Timestamp is generated here, at send time, never reused.
		query = c.SignQuery(params, time.Now())
	} else if params != nil {
		query = params.Encode()
	}

	u := c.baseURL + path
	if query != "" {
		u += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APIRequests.WithLabelValues(path, "transport").Inc()
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIRequests.WithLabelValues(path, "transport").Inc()
		return nil, &TransportError{Op: "read " + path, Err: err}
	}

	metrics.APIRequests.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("exchange request")

	if resp.StatusCode >= 400 {
		return nil, newExchangeError(resp.StatusCode, body)
	}
	return body, nil
}

func newExchangeError(status int, body []byte) *ExchangeError {
	exErr := &ExchangeError{Status: status, Body: string(body)}
	var payload struct {
		Code int64  `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		exErr.Code = payload.Code
		exErr.Msg = payload.Msg
	}
	return exErr
}

// GetExchangeInfo fetches the full symbol/filter catalog. Unsigned.
func (c *Client) GetExchangeInfo(ctx context.Context) (*ExchangeInfo, error) {
	body, err := c.do(ctx, http.MethodGet, pathExchangeInfo, nil, false)
	if err != nil {
		return nil, err
	}
	var info ExchangeInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode exchangeInfo: %w", err)
	}
	return &info, nil
}

// GetMarkPrice fetches the current mark price for one symbol. Unsigned; used
// only for display defaults, never for order correctness.
func (c *Client) GetMarkPrice(ctx context.Context, symbol string) (*MarkPrice, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	body, err := c.do(ctx, http.MethodGet, pathPremiumIndex, params, false)
	if err != nil {
		return nil, err
	}
	var mp MarkPrice
	if err := json.Unmarshal(body, &mp); err != nil {
		return nil, fmt.Errorf("decode premiumIndex: %w", err)
	}
	return &mp, nil
}

// PlaceOrder submits a signed order-creation request. No retries: a failed
// attempt surfaces immediately.
func (c *Client) PlaceOrder(ctx context.Context, params url.Values) (*OrderResponse, error) {
	body, err := c.do(ctx, http.MethodPost, pathOrder, params, true)
	if err != nil {
		return nil, err
	}
	resp, err := parseOrderResponse(body)
	if err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	return resp, nil
}
