package webui

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ashishbot120/trading-bot/internal/exchange"
	"github.com/ashishbot120/trading-bot/internal/order"
)

const testExchangeInfo = `{"symbols":[
  {"symbol":"BTCUSDT","status":"TRADING","filters":[
    {"filterType":"PRICE_FILTER","tickSize":"0.1","minPrice":"556.8","maxPrice":"4529764"},
    {"filterType":"LOT_SIZE","stepSize":"0.001","minQty":"0.001","maxQty":"1000"}
  ]}
]}`

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fapi/v1/exchangeInfo":
			_, _ = w.Write([]byte(testExchangeInfo))
		case "/fapi/v1/premiumIndex":
			_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","markPrice":"43000.00","time":1700000000000}`))
		case "/fapi/v1/order":
			_, _ = w.Write([]byte(`{"orderId":7,"symbol":"BTCUSDT","status":"FILLED","side":"BUY","type":"MARKET","executedQty":"0.012","avgPrice":"43000.10"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(stub.Close)

	client := exchange.NewClient(stub.URL, "key", "secret")
	cache, err := exchange.NewFilterCache(4)
	if err != nil {
		t.Fatalf("NewFilterCache returned error: %v", err)
	}
	placer := &order.Placer{Client: client, Cache: cache, Log: zerolog.Nop()}
	return NewServer(placer, client, zerolog.Nop()), stub
}

func TestFormShowsMarkPrice(t *testing.T) {
	server, _ := newTestServer(t)
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/?symbol=BTCUSDT")
	if err != nil {
		t.Fatalf("GET / returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	body := readAll(t, resp)
	if !strings.Contains(body, "43000.00") {
		t.Fatalf("expected mark price in page, got:\n%s", body)
	}
	if !strings.Contains(body, "42570.00") { // 0.99 * mark
		t.Fatalf("expected BUY default in page")
	}
}

func TestOrderFormPlacesMarketOrder(t *testing.T) {
	server, _ := newTestServer(t)
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	form := url.Values{}
	form.Set("symbol", "btcusdt")
	form.Set("side", "BUY")
	form.Set("type", "MARKET")
	form.Set("quantity", "0.0123")

	resp, err := http.PostForm(ts.URL+"/order", form)
	if err != nil {
		t.Fatalf("POST /order returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	body := readAll(t, resp)
	if !strings.Contains(body, "FILLED") {
		t.Fatalf("expected FILLED status in page")
	}
	if !strings.Contains(body, "0.012") {
		t.Fatalf("expected normalized quantity in page")
	}
	// MARKET result must not render a price line.
	if strings.Contains(body, "<li>price:") {
		t.Fatalf("MARKET response must not show a price field")
	}
}

func TestOrderFormRejectsBadInput(t *testing.T) {
	server, _ := newTestServer(t)
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	form := url.Values{}
	form.Set("symbol", "BTCUSDT")
	form.Set("side", "HOLD")
	form.Set("type", "MARKET")
	form.Set("quantity", "1")

	resp, err := http.PostForm(ts.URL+"/order", form)
	if err != nil {
		t.Fatalf("POST /order returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(readAll(t, resp), "Order failed") {
		t.Fatalf("expected error message in page")
	}
}

func TestMarkPriceAPI(t *testing.T) {
	server, _ := newTestServer(t)
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/mark-price?symbol=BTCUSDT")
	if err != nil {
		t.Fatalf("GET /api/mark-price returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if !strings.Contains(readAll(t, resp), `"price":43000`) {
		t.Fatalf("expected price in JSON")
	}

	resp2, err := http.Get(ts.URL + "/api/mark-price")
	if err != nil {
		t.Fatalf("GET without symbol returned error: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without symbol, got %d", resp2.StatusCode)
	}
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}
