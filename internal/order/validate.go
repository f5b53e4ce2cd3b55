// Package order validates, normalizes, and places futures orders.
package order

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Side enumerates order directions.
type Side string

const (
	// Buy indicates a long order.
	Buy Side = "BUY"
	// Sell indicates a short order.
	Sell Side = "SELL"
)

// Type enumerates supported order types.
type Type string

const (
	// Market executes immediately at the best available price.
	Market Type = "MARKET"
	// Limit rests at the given price until filled or cancelled.
	Limit Type = "LIMIT"
)

// ErrInvalidInput reports a local validation failure; nothing reached the network.
var ErrInvalidInput = errors.New("invalid input")

// Input is an order request that passed validation. Only Validate constructs
// one; it is never mutated afterwards. Price is zero for MARKET orders.
type Input struct {
	Symbol   string
	Side     Side
	Type     Type
	Quantity float64
	Price    float64
}

func validSymbol(symbol string) bool {
	if len(symbol) < 6 || len(symbol) > 20 {
		return false
	}
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Validate normalizes and checks raw order fields. Pure; no I/O. A price
// supplied with a MARKET order is discarded, never sent.
func Validate(symbol, side, orderType string, quantity, price float64) (Input, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	side = strings.ToUpper(strings.TrimSpace(side))
	orderType = strings.ToUpper(strings.TrimSpace(orderType))

	if !validSymbol(symbol) {
		return Input{}, fmt.Errorf("%w: symbol must be 6-20 uppercase alphanumerics, e.g. BTCUSDT", ErrInvalidInput)
	}
	if side != string(Buy) && side != string(Sell) {
		return Input{}, fmt.Errorf("%w: side must be BUY or SELL", ErrInvalidInput)
	}
	if orderType != string(Market) && orderType != string(Limit) {
		return Input{}, fmt.Errorf("%w: order type must be MARKET or LIMIT", ErrInvalidInput)
	}
	if quantity <= 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return Input{}, fmt.Errorf("%w: quantity must be a finite number > 0", ErrInvalidInput)
	}

	if orderType == string(Limit) {
		if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			return Input{}, fmt.Errorf("%w: price is required for LIMIT orders and must be > 0", ErrInvalidInput)
		}
	} else {
		price = 0
	}

	return Input{
		Symbol:   symbol,
		Side:     Side(side),
		Type:     Type(orderType),
		Quantity: quantity,
		Price:    price,
	}, nil
}
