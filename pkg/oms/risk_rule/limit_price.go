package riskrule

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrPriceLimit    = errors.New("price limit violation")
	ErrQuantityLimit = errors.New("quantity limit violation")
)

// LimitPriceRule rejects prices outside [floor, ceil]. A zero bound is open.
type LimitPriceRule struct {
	floor decimal.Decimal
	ceil  decimal.Decimal
}

func NewLimitPriceRule(floor, ceil decimal.Decimal) *LimitPriceRule {
	return &LimitPriceRule{floor: floor, ceil: ceil}
}

func (r *LimitPriceRule) Check(price, _ decimal.Decimal) error {
	if !r.ceil.IsZero() && price.GreaterThan(r.ceil) {
		return fmt.Errorf("%w: %s above %s", ErrPriceLimit, price, r.ceil)
	}
	if !r.floor.IsZero() && price.LessThan(r.floor) {
		return fmt.Errorf("%w: %s below %s", ErrPriceLimit, price, r.floor)
	}
	return nil
}

type MaxQuantityRule struct {
	limit decimal.Decimal
}

func NewMaxQuantityRule(limit decimal.Decimal) *MaxQuantityRule {
	return &MaxQuantityRule{limit: limit}
}

func (r *MaxQuantityRule) Check(_, qty decimal.Decimal) error {
	if qty.GreaterThan(r.limit) {
		return fmt.Errorf("%w: %s above %s", ErrQuantityLimit, qty, r.limit)
	}
	return nil
}
