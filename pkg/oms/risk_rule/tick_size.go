package riskrule

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidTickSize = errors.New("invalid tick size")

// TickSizeBand applies Step to prices up to MaxPrice. A zero MaxPrice has no
// upper limit.
type TickSizeBand struct {
	MaxPrice decimal.Decimal
	Step     decimal.Decimal
}

// TickSizeRule checks prices against a stepped tick table, bands ordered by
// MaxPrice.
type TickSizeRule struct {
	bands []TickSizeBand
}

func NewTickSizeRule(bands []TickSizeBand) (*TickSizeRule, error) {
	for i, b := range bands {
		if !b.Step.IsPositive() {
			return nil, fmt.Errorf("tick band %d: step must be positive", i)
		}
		if i > 0 && !bands[i-1].MaxPrice.IsZero() && !b.MaxPrice.IsZero() && !b.MaxPrice.GreaterThan(bands[i-1].MaxPrice) {
			return nil, fmt.Errorf("tick band %d: max price must increase", i)
		}
	}
	return &TickSizeRule{bands: bands}, nil
}

func (r *TickSizeRule) Check(price, _ decimal.Decimal) error {
	for _, rule := range r.bands {
		if rule.MaxPrice.IsZero() || price.LessThanOrEqual(rule.MaxPrice) {
			if !price.Mod(rule.Step).IsZero() {
				return fmt.Errorf("%w: %s not a multiple of %s", ErrInvalidTickSize, price, rule.Step)
			}
			return nil
		}
	}
	// above every band -> no rule
	return nil
}
