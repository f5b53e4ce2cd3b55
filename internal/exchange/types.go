package exchange

import (
	"encoding/json"
	"strconv"
)

// ExchangeInfo is the symbol/filter catalog from GET /fapi/v1/exchangeInfo.
type ExchangeInfo struct {
	Symbols []SymbolInfo `json:"symbols"`
}

// SymbolInfo is a single symbol's configuration entry.
type SymbolInfo struct {
	Symbol  string   `json:"symbol"`
	Status  string   `json:"status"`
	Filters []Filter `json:"filters"`
}

// Filter is one trading rule attached to a symbol. Binance sends numeric
// bounds as strings; only the fields for PRICE_FILTER and LOT_SIZE matter here.
type Filter struct {
	FilterType string `json:"filterType"`
	TickSize   string `json:"tickSize,omitempty"`
	MinPrice   string `json:"minPrice,omitempty"`
	MaxPrice   string `json:"maxPrice,omitempty"`
	StepSize   string `json:"stepSize,omitempty"`
	MinQty     string `json:"minQty,omitempty"`
	MaxQty     string `json:"maxQty,omitempty"`
}

// MarkPrice is the premium index snapshot from GET /fapi/v1/premiumIndex.
type MarkPrice struct {
	Symbol    string `json:"symbol"`
	MarkPrice string `json:"markPrice"`
	Time      int64  `json:"time"`
}

// Price parses the mark price string. Returns 0 when absent or malformed.
func (m MarkPrice) Price() float64 {
	px, err := strconv.ParseFloat(m.MarkPrice, 64)
	if err != nil {
		return 0
	}
	return px
}

// OrderResponse wraps the exchange's order-creation reply. Raw preserves the
// full payload untouched for journaling; the typed fields cover what the
// front ends display.
type OrderResponse struct {
	OrderID     int64  `json:"orderId"`
	Symbol      string `json:"symbol"`
	Status      string `json:"status"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	Price       string `json:"price"`
	ExecutedQty string `json:"executedQty"`
	AvgPrice    string `json:"avgPrice"`
	UpdateTime  int64  `json:"updateTime"`

	Raw json.RawMessage `json:"-"`
}

func parseOrderResponse(body []byte) (*OrderResponse, error) {
	var resp OrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	resp.Raw = json.RawMessage(append([]byte(nil), body...))
	return &resp, nil
}
