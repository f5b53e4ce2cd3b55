package order

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ashishbot120/trading-bot/internal/exchange"
)

const testExchangeInfo = `{"symbols":[
  {"symbol":"BTCUSDT","status":"TRADING","filters":[
    {"filterType":"PRICE_FILTER","tickSize":"0.1","minPrice":"556.8","maxPrice":"4529764"},
    {"filterType":"LOT_SIZE","stepSize":"0.001","minQty":"0.001","maxQty":"1000"}
  ]}
]}`

func newTestPlacer(t *testing.T, handler http.HandlerFunc) (*Placer, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cache, err := exchange.NewFilterCache(4)
	if err != nil {
		t.Fatalf("NewFilterCache returned error: %v", err)
	}
	return &Placer{
		Client: exchange.NewClient(server.URL, "key", "secret"),
		Cache:  cache,
		Log:    zerolog.Nop(),
	}, server
}

func TestPlaceMarketOrder(t *testing.T) {
	var orderQuery url.Values
	placer, _ := newTestPlacer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fapi/v1/exchangeInfo":
			_, _ = w.Write([]byte(testExchangeInfo))
		case "/fapi/v1/order":
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			orderQuery = r.URL.Query()
			_, _ = w.Write([]byte(`{"orderId":42,"symbol":"BTCUSDT","status":"FILLED","side":"BUY","type":"MARKET","executedQty":"0.012","avgPrice":"43000.10"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	res, err := placer.Place(context.Background(), Request{
		Symbol:   "btcusdt",
		Side:     "BUY",
		Type:     "MARKET",
		Quantity: 0.0123,
	})
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if res.Quantity.String() != "0.012" {
		t.Fatalf("expected normalized qty 0.012, got %s", res.Quantity)
	}
	if res.Response.Status != "FILLED" || res.Response.OrderID != 42 {
		t.Fatalf("unexpected response: %+v", res.Response)
	}

	if orderQuery.Get("quantity") != "0.012" {
		t.Fatalf("expected quantity 0.012 sent, got %q", orderQuery.Get("quantity"))
	}
	if orderQuery.Get("recvWindow") != "5000" {
		t.Fatalf("expected recvWindow 5000, got %q", orderQuery.Get("recvWindow"))
	}
	if _, ok := orderQuery["price"]; ok {
		t.Fatalf("MARKET order must not carry a price param")
	}
	if _, ok := orderQuery["timeInForce"]; ok {
		t.Fatalf("MARKET order must not carry timeInForce")
	}
	if orderQuery.Get("signature") == "" {
		t.Fatalf("expected signed request")
	}
}

func TestPlaceLimitOrder(t *testing.T) {
	var orderQuery url.Values
	placer, _ := newTestPlacer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fapi/v1/exchangeInfo":
			_, _ = w.Write([]byte(testExchangeInfo))
		case "/fapi/v1/order":
			orderQuery = r.URL.Query()
			_, _ = w.Write([]byte(`{"orderId":43,"symbol":"BTCUSDT","status":"NEW","side":"SELL","type":"LIMIT","price":"43000.1"}`))
		}
	})

	res, err := placer.Place(context.Background(), Request{
		Symbol:   "BTCUSDT",
		Side:     "SELL",
		Type:     "LIMIT",
		Quantity: 0.01,
		Price:    43000.17,
	})
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if res.Price.String() != "43000.1" {
		t.Fatalf("expected price floored to tick, got %s", res.Price)
	}
	if orderQuery.Get("price") != "43000.1" {
		t.Fatalf("expected price param 43000.1, got %q", orderQuery.Get("price"))
	}
	if orderQuery.Get("timeInForce") != "GTC" {
		t.Fatalf("expected GTC time in force, got %q", orderQuery.Get("timeInForce"))
	}
}

func TestPlaceValidationFailureNeverHitsNetwork(t *testing.T) {
	var requests int
	placer, _ := newTestPlacer(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	_, err := placer.Place(context.Background(), Request{
		Symbol:   "BTCUSDT",
		Side:     "HOLD",
		Type:     "MARKET",
		Quantity: 1,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if requests != 0 {
		t.Fatalf("validation failure must not reach the network, saw %d requests", requests)
	}
}

func TestPlaceQuantityTooSmall(t *testing.T) {
	placer, _ := newTestPlacer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fapi/v1/exchangeInfo" {
			_, _ = w.Write([]byte(testExchangeInfo))
			return
		}
		t.Errorf("order endpoint must not be reached, got %s", r.URL.Path)
	})

	_, err := placer.Place(context.Background(), Request{
		Symbol:   "BTCUSDT",
		Side:     "BUY",
		Type:     "MARKET",
		Quantity: 0.0009,
	})
	if !errors.Is(err, ErrQuantityTooSmall) {
		t.Fatalf("expected ErrQuantityTooSmall, got %v", err)
	}
}

func TestPlaceSurfacesExchangeRejection(t *testing.T) {
	placer, _ := newTestPlacer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fapi/v1/exchangeInfo":
			_, _ = w.Write([]byte(testExchangeInfo))
		case "/fapi/v1/order":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-2019,"msg":"Margin is insufficient."}`))
		}
	})

	_, err := placer.Place(context.Background(), Request{
		Symbol:   "BTCUSDT",
		Side:     "BUY",
		Type:     "MARKET",
		Quantity: 0.01,
	})
	var exErr *exchange.ExchangeError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected ExchangeError, got %T: %v", err, err)
	}
	if exErr.Code != -2019 || exErr.Msg != "Margin is insufficient." {
		t.Fatalf("expected verbatim code/msg, got %+v", exErr)
	}
}
