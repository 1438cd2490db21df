package orderbook

import "fmt"

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

func (s Side) Valid() bool {
	return s == BUY || s == SELL
}

// OrderType is the lifetime rule of an order.
type OrderType string

const (
	GTC OrderType = "GTC" // good till cancel: rests until filled or cancelled
	FAK OrderType = "FAK" // fill and kill: executes what it can, remainder is dropped
)

type (
	Price    int32
	Quantity uint32
	OrderID  uint64
)

// Order is one participant's interest. Only the remaining quantity changes
// after construction.
type Order struct {
	id           OrderID
	side         Side
	orderType    OrderType
	price        Price
	initialQty   Quantity
	remainingQty Quantity
}

func NewOrder(orderType OrderType, id OrderID, side Side, price Price, qty Quantity) *Order {
	return &Order{
		id:           id,
		side:         side,
		orderType:    orderType,
		price:        price,
		initialQty:   qty,
		remainingQty: qty,
	}
}

func (o *Order) ID() OrderID                 { return o.id }
func (o *Order) Side() Side                  { return o.side }
func (o *Order) Type() OrderType             { return o.orderType }
func (o *Order) Price() Price                { return o.price }
func (o *Order) InitialQuantity() Quantity   { return o.initialQty }
func (o *Order) RemainingQuantity() Quantity { return o.remainingQty }
func (o *Order) FilledQuantity() Quantity    { return o.initialQty - o.remainingQty }
func (o *Order) IsFilled() bool              { return o.remainingQty == 0 }

// Fill takes qty off the remaining quantity. Filling more than what remains
// leaves the order untouched and returns an error wrapping ErrInvalidFill.
func (o *Order) Fill(qty Quantity) error {
	if qty > o.remainingQty {
		return fmt.Errorf("order %d: fill %d exceeds remaining %d: %w", o.id, qty, o.remainingQty, ErrInvalidFill)
	}
	o.remainingQty -= qty
	return nil
}

func (o *Order) String() string {
	return fmt.Sprintf("Order{ID=%d, %s %s, Price=%d, Qty=%d/%d}",
		o.id, o.orderType, o.side, o.price, o.remainingQty, o.initialQty)
}

// OrderModify replaces a resting order: same id, new side, price and quantity.
type OrderModify struct {
	ID       OrderID
	Side     Side
	Price    Price
	Quantity Quantity
}

// ToOrder builds the replacement order, keeping the lifetime rule of the
// order being replaced.
func (m OrderModify) ToOrder(orderType OrderType) *Order {
	return NewOrder(orderType, m.ID, m.Side, m.Price, m.Quantity)
}
