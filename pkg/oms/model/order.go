package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "New"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
	OrderStatusCanceled        OrderStatus = "Canceled"
	OrderStatusReplaced        OrderStatus = "Replaced"
	OrderStatusExpired         OrderStatus = "Expired"
)

type OrderExecType string

const (
	ExecTypeNew      OrderExecType = "New"
	ExecTypeCanceled OrderExecType = "Canceled"
	ExecTypeReplaced OrderExecType = "Replaced"
	ExecTypeExpired  OrderExecType = "Expired"
	ExecTypeTrade    OrderExecType = "Trade"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderTimeInForce string

const (
	OrderTimeInForceGTC OrderTimeInForce = "GTC"
	OrderTimeInForceIOC OrderTimeInForce = "IOC" // executed as fill and kill
)

// Order is the gateway's view of a live order: what was asked for and how
// much of it has executed.
type Order struct {
	OrderID      uint64
	ClOrdID      string
	Side         OrderSide
	TimeInForce  OrderTimeInForce
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time

	Status         OrderStatus
	ExecType       OrderExecType
	CumQuantity    decimal.Decimal
	LeavesQuantity decimal.Decimal
	LastQuantity   decimal.Decimal
	LastPrice      decimal.Decimal
}

func NewOrder(addOrder *AddOrder) *Order {
	return &Order{
		OrderID:        addOrder.OrderID,
		ClOrdID:        addOrder.ClOrdID,
		Side:           addOrder.Side,
		TimeInForce:    addOrder.TimeInForce,
		Price:          addOrder.Price,
		Quantity:       addOrder.Quantity,
		TransactTime:   addOrder.TransactTime,
		Status:         OrderStatusNew,
		ExecType:       ExecTypeNew,
		CumQuantity:    decimal.Zero,
		LeavesQuantity: addOrder.Quantity,
	}
}

// UpdateMatch applies one execution of qty at price.
func (o *Order) UpdateMatch(qty, price decimal.Decimal) {
	o.CumQuantity = o.CumQuantity.Add(qty)
	o.LeavesQuantity = o.LeavesQuantity.Sub(qty)
	o.LastQuantity = qty
	o.LastPrice = price
	o.ExecType = ExecTypeTrade
	if o.LeavesQuantity.IsPositive() {
		o.Status = OrderStatusPartiallyFilled
	} else {
		o.Status = OrderStatusFilled
	}
}

// UpdateModifyOrder starts a fresh incarnation with the new terms; earlier
// executions are not carried over.
func (o *Order) UpdateModifyOrder(modifyOrder *ModifyOrder) {
	o.ClOrdID = modifyOrder.ClOrdID
	o.Side = modifyOrder.Side
	o.Price = modifyOrder.NewPrice
	o.Quantity = modifyOrder.NewQuantity
	o.CumQuantity = decimal.Zero
	o.LeavesQuantity = modifyOrder.NewQuantity
	o.LastQuantity = decimal.Zero
	o.LastPrice = decimal.Zero
	o.Status = OrderStatusReplaced
	o.ExecType = ExecTypeReplaced
}

func (o *Order) UpdateCancelOrder(cancelOrder *CancelOrder) {
	if cancelOrder.ClOrdID != "" {
		o.ClOrdID = cancelOrder.ClOrdID
	}
	o.LeavesQuantity = decimal.Zero
	o.Status = OrderStatusCanceled
	o.ExecType = ExecTypeCanceled
}

// Expire drops the unfilled part of an IOC order.
func (o *Order) Expire() {
	o.LeavesQuantity = decimal.Zero
	o.Status = OrderStatusExpired
	o.ExecType = ExecTypeExpired
}

// IsEnd reports whether the order can no longer trade.
func (o *Order) IsEnd() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusCanceled, OrderStatusExpired:
		return true
	}
	return false
}
