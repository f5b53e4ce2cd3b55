package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// DefaultStreamURL is the Binance futures testnet combined-stream endpoint.
const DefaultStreamURL = "wss://stream.binancefuture.com"

// MarkTick is one mark-price update pushed to the web UI.
type MarkTick struct {
	Symbol string
	Price  float64
	Ts     time.Time
}

// MarkStream consumes <symbol>@markPrice websocket updates. Display-only:
// order placement never depends on it.
type MarkStream struct {
	symbols   []string
	streamURL string
	log       zerolog.Logger
}

// StreamOption configures MarkStream construction parameters.
type StreamOption func(*MarkStream)

// WithStreamURL overrides the websocket endpoint (tests point it at a local server).
func WithStreamURL(u string) StreamOption {
	return func(s *MarkStream) {
		if u != "" {
			s.streamURL = strings.TrimSuffix(u, "/")
		}
	}
}

// NewMarkStream builds a stream for the given symbols.
func NewMarkStream(symbols []string, log zerolog.Logger, opts ...StreamOption) *MarkStream {
	s := &MarkStream{
		symbols:   symbols,
		streamURL: DefaultStreamURL,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type markEnvelope struct {
	Stream string     `json:"stream"`
	Data   markUpdate `json:"data"`
}

type markUpdate struct {
	Symbol    string `json:"s"`
	MarkPrice string `json:"p"`
	EventTime int64  `json:"E"`
}

// Run pushes ticks onto out until the context is canceled, reconnecting with
// backoff on stream failure.
func (s *MarkStream) Run(ctx context.Context, out chan<- MarkTick) error {
	if len(s.symbols) == 0 {
		return fmt.Errorf("mark stream requires at least one symbol")
	}

	streams := make([]string, len(s.symbols))
	for i, sym := range s.symbols {
		streams[i] = strings.ToLower(sym) + "@markPrice"
	}
	url := fmt.Sprintf("%s/stream?streams=%s", s.streamURL, strings.Join(streams, "/"))

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.consume(ctx, url, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn().Err(err).Msg("mark stream disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (s *MarkStream) consume(ctx context.Context, url string, out chan<- MarkTick) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.log.Info().Strs("symbols", s.symbols).Msg("connected mark price stream")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					s.log.Warn().Err(err).Msg("mark stream ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env markEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			s.log.Warn().Err(err).Msg("failed to decode mark price message")
			continue
		}
		px, err := strconv.ParseFloat(env.Data.MarkPrice, 64)
		if err != nil {
			s.log.Warn().Err(err).Msg("invalid mark price")
			continue
		}

		tick := MarkTick{
			Symbol: strings.ToUpper(env.Data.Symbol),
			Price:  px,
			Ts:     time.UnixMilli(env.Data.EventTime),
		}
		select {
		case out <- tick:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
