package order

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ashishbot120/trading-bot/internal/exchange"
)

// ErrQuantityTooSmall reports a quantity below one lot step after flooring.
var ErrQuantityTooSmall = errors.New("quantity too small after rounding to step size")

// DecimalsFromStep counts the fractional digits needed to represent a step
// exactly: 0.001 -> 3, 0.5 -> 1, 1 -> 0. Trailing zeros do not count.
func DecimalsFromStep(step decimal.Decimal) int32 {
	s := step.String()
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return int32(len(s) - i - 1)
	}
	return 0
}

// floorToStep floors value to the largest multiple of step not exceeding it.
// Mod keeps the arithmetic exact; no float representation noise.
func floorToStep(value, step decimal.Decimal) decimal.Decimal {
	if step.Sign() <= 0 {
		return value
	}
	return value.Sub(value.Mod(step))
}

// Normalize floors quantity to the lot step and price (when > 0) to the price
// tick, then truncates each to the step's own precision. Never rounds up, so
// the result never exceeds what was requested. Min/max filter bounds are NOT
// enforced here; only the floor-to-zero check is (see the package tests).
func Normalize(f exchange.Filters, quantity, price float64) (decimal.Decimal, decimal.Decimal, error) {
	qty := floorToStep(decimal.NewFromFloat(quantity), f.QtyStep)
	qty = qty.Truncate(DecimalsFromStep(f.QtyStep))
	if qty.Sign() <= 0 {
		return decimal.Decimal{}, decimal.Decimal{}, ErrQuantityTooSmall
	}

	var px decimal.Decimal
	if price > 0 {
		px = floorToStep(decimal.NewFromFloat(price), f.PriceTick)
		px = px.Truncate(DecimalsFromStep(f.PriceTick))
	}
	return qty, px, nil
}
