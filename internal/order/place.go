package order

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ashishbot120/trading-bot/internal/audit"
	"github.com/ashishbot120/trading-bot/internal/exchange"
	"github.com/ashishbot120/trading-bot/internal/metrics"
)

// DefaultRecvWindow is the staleness guard sent with every order, in ms.
const DefaultRecvWindow = 5000

// timeInForceGTC keeps LIMIT orders active until cancelled.
const timeInForceGTC = "GTC"

// Request carries raw, unvalidated order fields from a front end.
type Request struct {
	Symbol   string
	Side     string
	Type     string
	Quantity float64
	Price    float64
}

// Result is a successfully placed order: the validated input, the normalized
// values actually sent, and the exchange's reply.
type Result struct {
	Input    Input
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Response *exchange.OrderResponse
}

// Placer sequences validate -> fetch filters -> normalize -> sign and send.
// Any stage failing aborts the whole operation; nothing is retried.
type Placer struct {
	Client     *exchange.Client
	Cache      *exchange.FilterCache
	Journal    *audit.Journal
	Log        zerolog.Logger
	RecvWindow int
}

// Place runs the full order pipeline. Every attempt and outcome is journaled
// and logged with full detail before the error is surfaced.
func (p *Placer) Place(ctx context.Context, req Request) (*Result, error) {
	in, err := Validate(req.Symbol, req.Side, req.Type, req.Quantity, req.Price)
	if err != nil {
		return nil, p.fail(in.Symbol, "validate", err)
	}

	filters, err := p.Cache.Get(ctx, p.Client, in.Symbol)
	if err != nil {
		return nil, p.fail(in.Symbol, "filters", err)
	}

	qty, px, err := Normalize(filters, in.Quantity, in.Price)
	if err != nil {
		return nil, p.fail(in.Symbol, "normalize", err)
	}

	params := p.buildParams(in, qty, px)
	p.journalRequest(in, params)
	p.Log.Info().Str("symbol", in.Symbol).Str("side", string(in.Side)).Str("type", string(in.Type)).
		Str("quantity", qty.String()).Str("price", px.String()).Msg("placing order")

	resp, err := p.Client.PlaceOrder(ctx, params)
	if err != nil {
		return nil, p.fail(in.Symbol, "submit", err)
	}

	p.journalResponse(in, resp)
	metrics.OrdersTotal.WithLabelValues(in.Symbol, string(in.Side), string(in.Type)).Inc()
	p.Log.Info().Str("symbol", in.Symbol).Int64("orderId", resp.OrderID).Str("status", resp.Status).Msg("order accepted")

	return &Result{Input: in, Quantity: qty, Price: px, Response: resp}, nil
}

func (p *Placer) buildParams(in Input, qty, px decimal.Decimal) url.Values {
	params := url.Values{}
	params.Set("symbol", in.Symbol)
	params.Set("side", string(in.Side))
	params.Set("type", string(in.Type))
	params.Set("quantity", qty.String())
	recvWindow := p.RecvWindow
	if recvWindow <= 0 {
		recvWindow = DefaultRecvWindow
	}
	params.Set("recvWindow", strconv.Itoa(recvWindow))
	if in.Type == Limit {
		params.Set("price", px.String())
		params.Set("timeInForce", timeInForceGTC)
	}
	return params
}

func (p *Placer) journalRequest(in Input, params url.Values) {
	flat := make(map[string]string, len(params))
	for key := range params {
		flat[key] = params.Get(key)
	}
	p.Journal.Record(audit.Entry{Event: "request", Symbol: in.Symbol, Params: flat})
}

func (p *Placer) journalResponse(in Input, resp *exchange.OrderResponse) {
	p.Journal.Record(audit.Entry{Event: "response", Symbol: in.Symbol, Response: json.RawMessage(resp.Raw)})
}

func (p *Placer) fail(symbol, stage string, err error) error {
	metrics.OrderErrors.WithLabelValues(stage).Inc()
	p.Journal.Record(audit.Entry{Event: "error", Symbol: symbol, Error: err.Error()})
	p.Log.Error().Err(err).Str("stage", stage).Str("symbol", symbol).Msg("order failed")
	return err
}
