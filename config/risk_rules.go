package config

import (
	"fmt"

	riskrule "github.com/joripage/orderbook-core/pkg/oms/risk_rule"
	"github.com/shopspring/decimal"
)

// RiskRules builds the entry checks configured for the book. Unset limits
// produce no rule.
func (b BookConfig) RiskRules() ([]riskrule.RiskRule, error) {
	var rules []riskrule.RiskRule

	if len(b.TickBands) > 0 {
		bands := make([]riskrule.TickSizeBand, 0, len(b.TickBands))
		for i, tb := range b.TickBands {
			step, err := decimal.NewFromString(tb.Step)
			if err != nil {
				return nil, fmt.Errorf("tick band %d: %w", i, err)
			}
			maxPrice, err := parseOptional(tb.MaxPrice)
			if err != nil {
				return nil, fmt.Errorf("tick band %d: %w", i, err)
			}
			bands = append(bands, riskrule.TickSizeBand{MaxPrice: maxPrice, Step: step})
		}
		rule, err := riskrule.NewTickSizeRule(bands)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	if floor, ceil := b.PriceLimits(); !floor.IsZero() || !ceil.IsZero() {
		rules = append(rules, riskrule.NewLimitPriceRule(floor, ceil))
	}

	if b.MaxQuantity > 0 {
		rules = append(rules, riskrule.NewMaxQuantityRule(decimal.NewFromInt(b.MaxQuantity)))
	}

	return rules, nil
}
