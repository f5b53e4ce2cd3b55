package exchange

import (
	"errors"
	"fmt"
)

// ErrSymbolNotFound reports a symbol missing from the exchangeInfo catalog.
var ErrSymbolNotFound = errors.New("symbol not found in exchangeInfo")

// ExchangeError is a request the exchange received and rejected (HTTP >= 400).
// Code and Msg carry the Binance error payload verbatim when present.
type ExchangeError struct {
	Status int
	Code   int64
	Msg    string
	Body   string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("exchange error %d: code=%d msg=%q", e.Status, e.Code, e.Msg)
}

// TransportError is a connection or timeout failure; the request may never
// have reached the exchange.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
