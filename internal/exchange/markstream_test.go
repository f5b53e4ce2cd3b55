package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func TestMarkStreamEmitsTicks(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/stream") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		msg := `{"stream":"btcusdt@markPrice","data":{"e":"markPriceUpdate","E":1700000000000,"s":"BTCUSDT","p":"43210.55"}}`
		for {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	stream := NewMarkStream([]string{"BTCUSDT"}, zerolog.Nop(), WithStreamURL(wsURL))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := make(chan MarkTick, 1)
	errCh := make(chan error, 1)
	go func() {
		if err := stream.Run(ctx, ticks); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case tk := <-ticks:
		if tk.Symbol != "BTCUSDT" {
			t.Fatalf("unexpected symbol %s", tk.Symbol)
		}
		if tk.Price != 43210.55 {
			t.Fatalf("unexpected price %.2f", tk.Price)
		}
		cancel()
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatalf("timed out waiting for tick")
	}
}

func TestMarkStreamRequiresSymbols(t *testing.T) {
	stream := NewMarkStream(nil, zerolog.Nop())
	if err := stream.Run(context.Background(), make(chan MarkTick)); err == nil {
		t.Fatalf("expected error for empty symbol list")
	}
}
