package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddOrder is a new order request as it arrives at the gateway.
type AddOrder struct {
	OrderID      uint64
	ClOrdID      string
	Side         OrderSide
	TimeInForce  OrderTimeInForce
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time
}
