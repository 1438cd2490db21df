package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderEvent struct {
	EventID     string
	OrderID     uint64
	ClOrdID     string
	OrigClOrdID string
	ExecType    OrderExecType
	Qty         decimal.Decimal
	Price       decimal.Decimal
	Timestamp   time.Time
}

func NewOrderEventNewOrder(order *Order, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:   NewEventID(),
		OrderID:   order.OrderID,
		ClOrdID:   order.ClOrdID,
		ExecType:  ExecTypeNew,
		Qty:       order.Quantity,
		Price:     order.Price,
		Timestamp: ts,
	}
}

func NewOrderEventCancel(orderID uint64, clOrdID, origClOrdID string, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:     NewEventID(),
		OrderID:     orderID,
		ClOrdID:     clOrdID,
		OrigClOrdID: origClOrdID,
		ExecType:    ExecTypeCanceled,
		Timestamp:   ts,
	}
}

func NewOrderEventCancelReplace(orderID uint64, clOrdID, origClOrdID string, price, qty decimal.Decimal, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:     NewEventID(),
		OrderID:     orderID,
		ClOrdID:     clOrdID,
		OrigClOrdID: origClOrdID,
		ExecType:    ExecTypeReplaced,
		Qty:         qty,
		Price:       price,
		Timestamp:   ts,
	}
}

func NewOrderEventTrade(order *Order, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:   NewEventID(),
		OrderID:   order.OrderID,
		ClOrdID:   order.ClOrdID,
		ExecType:  ExecTypeTrade,
		Qty:       order.LastQuantity,
		Price:     order.LastPrice,
		Timestamp: ts,
	}
}

// NewOrderEventExpired records the quantity an IOC order gave up.
func NewOrderEventExpired(order *Order, expired decimal.Decimal, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:   NewEventID(),
		OrderID:   order.OrderID,
		ClOrdID:   order.ClOrdID,
		ExecType:  ExecTypeExpired,
		Qty:       expired,
		Price:     order.Price,
		Timestamp: ts,
	}
}

// NewEventID is random: an order can trade many times, and ids are reused
// once an order is done.
func NewEventID() string {
	return uuid.NewString()
}
