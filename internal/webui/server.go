// Package webui serves the browser form front end over the order pipeline.
package webui

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ashishbot120/trading-bot/internal/exchange"
	"github.com/ashishbot120/trading-bot/internal/order"
)

// Server wires the form handlers to the shared order pipeline.
type Server struct {
	placer    *order.Placer
	client    *exchange.Client
	log       zerolog.Logger
	streamURL string
	tmpl      *template.Template
	upgrader  websocket.Upgrader
}

// Option configures Server construction parameters.
type Option func(*Server)

// WithStreamURL overrides the mark-price websocket endpoint.
func WithStreamURL(u string) Option {
	return func(s *Server) {
		if u != "" {
			s.streamURL = u
		}
	}
}

// NewServer builds the web front end. The placer and client are shared with
// the CLI path; the UI adds only display conveniences on top.
func NewServer(placer *order.Placer, client *exchange.Client, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		placer:    placer,
		client:    client,
		log:       log,
		streamURL: exchange.DefaultStreamURL,
		tmpl:      template.Must(template.New("form").Parse(formTemplate)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the chi router for the form UI.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleForm)
	r.Post("/order", s.handleOrder)
	r.Get("/api/mark-price", s.handleMarkPrice)
	r.Get("/ws/mark-price", s.handleMarkStream)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

type formPage struct {
	Symbol      string
	MarkPrice   float64
	DefaultBuy  float64
	DefaultSell float64
	Result      *order.Result
	IsLimit     bool
	Error       string
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	page := formPage{Symbol: strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))}
	if page.Symbol == "" {
		page.Symbol = "BTCUSDT"
	}
	s.fillMarkPrice(r.Context(), &page)
	s.render(w, page)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	quantity, _ := strconv.ParseFloat(r.PostFormValue("quantity"), 64)
	price, _ := strconv.ParseFloat(r.PostFormValue("price"), 64)
	req := order.Request{
		Symbol:   r.PostFormValue("symbol"),
		Side:     r.PostFormValue("side"),
		Type:     r.PostFormValue("type"),
		Quantity: quantity,
		Price:    price,
	}

	page := formPage{Symbol: strings.ToUpper(strings.TrimSpace(req.Symbol))}
	res, err := s.placer.Place(r.Context(), req)
	if err != nil {
		// Detail is already in the log/journal; the UI gets the short form.
		page.Error = err.Error()
		s.fillMarkPrice(r.Context(), &page)
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, page)
		return
	}

	page.Result = res
	page.IsLimit = res.Input.Type == order.Limit
	s.fillMarkPrice(r.Context(), &page)
	s.render(w, page)
}

func (s *Server) fillMarkPrice(ctx context.Context, page *formPage) {
	if page.Symbol == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	mp, err := s.client.GetMarkPrice(ctx, page.Symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", page.Symbol).Msg("mark price fetch failed")
		return
	}
	page.MarkPrice = mp.Price()
	if page.MarkPrice > 0 {
		// Practical LIMIT defaults: BUY below mark, SELL above mark.
		page.DefaultBuy = page.MarkPrice * 0.99
		page.DefaultSell = page.MarkPrice * 1.01
	}
}

func (s *Server) handleMarkPrice(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		http.Error(w, "symbol required", http.StatusBadRequest)
		return
	}
	mp, err := s.client.GetMarkPrice(r.Context(), symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("mark price fetch failed")
		http.Error(w, "mark price unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"symbol": mp.Symbol,
		"price":  mp.Price(),
		"time":   mp.Time,
	})
}

// handleMarkStream pushes live mark-price updates over a websocket. Display
// convenience only; order placement never depends on this path.
func (s *Server) handleMarkStream(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		http.Error(w, "symbol required", http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ticks := make(chan exchange.MarkTick, 16)
	stream := exchange.NewMarkStream([]string{symbol}, s.log, exchange.WithStreamURL(s.streamURL))
	go func() {
		if err := stream.Run(ctx, ticks); err != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("mark stream stopped")
		}
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case tk := <-ticks:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(map[string]any{
				"symbol": tk.Symbol,
				"price":  tk.Price,
				"ts":     tk.Ts.UnixMilli(),
			}); err != nil {
				return
			}
		}
	}
}

func (s *Server) render(w http.ResponseWriter, page formPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, page); err != nil {
		s.log.Error().Err(err).Msg("render form")
	}
}
