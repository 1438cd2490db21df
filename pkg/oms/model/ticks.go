package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/joripage/orderbook-core/pkg/orderbook"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTickSize  = errors.New("tick size must be positive")
	ErrOffTick          = errors.New("price is not a multiple of the tick size")
	ErrPriceOutOfRange  = errors.New("price out of range")
	ErrInvalidQuantity  = errors.New("quantity must be a positive whole number")
	ErrQuantityTooLarge = errors.New("quantity too large")
)

var (
	maxTicks    = decimal.NewFromInt(math.MaxInt32)
	maxQuantity = decimal.NewFromInt(math.MaxUint32)
)

// TickConverter maps decimal prices to the integer ticks the book trades in.
type TickConverter struct {
	tick decimal.Decimal
}

func NewTickConverter(tick decimal.Decimal) (TickConverter, error) {
	if !tick.IsPositive() {
		return TickConverter{}, fmt.Errorf("%w: %s", ErrInvalidTickSize, tick)
	}
	return TickConverter{tick: tick}, nil
}

func (c TickConverter) TickSize() decimal.Decimal {
	return c.tick
}

// ToTicks accepts positive on-tick prices that fit the book's price type.
func (c TickConverter) ToTicks(price decimal.Decimal) (orderbook.Price, error) {
	if !price.IsPositive() {
		return 0, fmt.Errorf("%w: %s", ErrPriceOutOfRange, price)
	}
	if !price.Mod(c.tick).IsZero() {
		return 0, fmt.Errorf("%w: %s (tick %s)", ErrOffTick, price, c.tick)
	}
	ticks := price.Div(c.tick)
	if ticks.GreaterThan(maxTicks) {
		return 0, fmt.Errorf("%w: %s", ErrPriceOutOfRange, price)
	}
	return orderbook.Price(ticks.IntPart()), nil
}

func (c TickConverter) FromTicks(price orderbook.Price) decimal.Decimal {
	return c.tick.Mul(decimal.NewFromInt32(int32(price)))
}

func ToQuantity(qty decimal.Decimal) (orderbook.Quantity, error) {
	if !qty.IsPositive() || !qty.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidQuantity, qty)
	}
	if qty.GreaterThan(maxQuantity) {
		return 0, fmt.Errorf("%w: %s", ErrQuantityTooLarge, qty)
	}
	return orderbook.Quantity(qty.IntPart()), nil
}

func FromQuantity(qty orderbook.Quantity) decimal.Decimal {
	return decimal.NewFromInt(int64(qty))
}

// FromLevelQuantity converts an aggregated level total.
func FromLevelQuantity(qty uint64) decimal.Decimal {
	return decimal.NewFromUint64(qty)
}
