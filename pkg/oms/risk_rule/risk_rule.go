package riskrule

import "github.com/shopspring/decimal"

// RiskRule vets the terms of a new or replacing order before it reaches the
// book.
type RiskRule interface {
	Check(price, qty decimal.Decimal) error
}
