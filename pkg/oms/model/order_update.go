package model

import (
	"github.com/shopspring/decimal"
)

// CancelOrder targets a live order either by OrderID or by the ClOrdID of
// the request that last touched it.
type CancelOrder struct {
	OrderID     uint64
	ClOrdID     string
	OrigClOrdID string
}

// ModifyOrder replaces side, price and quantity of a live order. The order
// keeps its id and time in force but goes to the back of the queue.
type ModifyOrder struct {
	OrderID     uint64
	ClOrdID     string
	OrigClOrdID string
	Side        OrderSide
	NewPrice    decimal.Decimal
	NewQuantity decimal.Decimal
}
