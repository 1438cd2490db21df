// file: pkg/orderbook/orderbook.go

package orderbook

import (
	"go.uber.org/zap"
)

// OrderBook matches a single instrument in price-time priority.
//
// It does no locking and runs every call to completion; callers must
// serialize access (see pkg/oms for a sequenced gateway).
type OrderBook struct {
	bids *ladder
	asks *ladder

	// orders indexes every resting order by id. An id is present here iff
	// its slot sits in exactly one level of one ladder; both are only
	// changed through insert and detach.
	orders map[OrderID]*restingOrder

	logger *zap.Logger
}

type Option func(*OrderBook)

func WithLogger(logger *zap.Logger) Option {
	return func(ob *OrderBook) {
		if logger != nil {
			ob.logger = logger
		}
	}
}

func New(opts ...Option) *OrderBook {
	ob := &OrderBook{
		bids:   newLadder(BUY),
		asks:   newLadder(SELL),
		orders: make(map[OrderID]*restingOrder),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ob)
	}
	return ob
}

// AddOrder submits an order and returns the trades it caused.
//
// Duplicate ids, unknown sides, zero quantities and fill-and-kill orders
// with nothing to cross are ignored. A fill-and-kill order never rests: whatever is left
// after matching is cancelled.
func (ob *OrderBook) AddOrder(order *Order) []Trade {
	if _, ok := ob.orders[order.ID()]; ok {
		ob.logger.Debug("duplicate order ignored", zap.Uint64("order_id", uint64(order.ID())))
		return nil
	}
	if !order.Side().Valid() {
		ob.logger.Debug("order with unknown side ignored",
			zap.Uint64("order_id", uint64(order.ID())),
			zap.String("side", string(order.Side())),
		)
		return nil
	}
	if order.RemainingQuantity() == 0 {
		ob.logger.Debug("empty order ignored", zap.Uint64("order_id", uint64(order.ID())))
		return nil
	}
	if order.Type() == FAK && !ob.canMatch(order.Side(), order.Price()) {
		ob.logger.Debug("fill and kill order cannot match",
			zap.Uint64("order_id", uint64(order.ID())),
			zap.String("side", string(order.Side())),
			zap.Int32("price", int32(order.Price())),
		)
		return nil
	}

	ob.insert(order)
	trades := ob.matchOrders()

	if order.Type() == FAK {
		if slot, ok := ob.orders[order.ID()]; ok && slot.order == order {
			ob.logger.Debug("fill and kill remainder cancelled",
				zap.Uint64("order_id", uint64(order.ID())),
				zap.Uint32("remaining", uint32(order.RemainingQuantity())),
			)
			ob.detach(slot)
		}
	}

	return trades
}

// CancelOrder removes a resting order. Unknown ids are a no-op.
func (ob *OrderBook) CancelOrder(id OrderID) {
	slot, ok := ob.orders[id]
	if !ok {
		ob.logger.Debug("cancel of unknown order", zap.Uint64("order_id", uint64(id)))
		return
	}
	ob.detach(slot)
}

// ModifyOrder cancels the resting order and submits its replacement with the
// same order type. The order loses its time priority. Unknown ids and
// unknown sides are a no-op.
func (ob *OrderBook) ModifyOrder(modify OrderModify) []Trade {
	slot, ok := ob.orders[modify.ID]
	if !ok {
		ob.logger.Debug("modify of unknown order", zap.Uint64("order_id", uint64(modify.ID)))
		return nil
	}
	if !modify.Side.Valid() {
		ob.logger.Debug("modify with unknown side ignored",
			zap.Uint64("order_id", uint64(modify.ID)),
			zap.String("side", string(modify.Side)),
		)
		return nil
	}

	orderType := slot.order.Type()
	ob.detach(slot)
	return ob.AddOrder(modify.ToOrder(orderType))
}

// Size is the number of resting orders.
func (ob *OrderBook) Size() int {
	return len(ob.orders)
}

func (ob *OrderBook) Contains(id OrderID) bool {
	_, ok := ob.orders[id]
	return ok
}

// Order looks up a resting order. The returned order must be treated as
// read-only.
func (ob *OrderBook) Order(id OrderID) (*Order, bool) {
	slot, ok := ob.orders[id]
	if !ok {
		return nil, false
	}
	return slot.order, true
}

func (ob *OrderBook) BestBid() (Price, bool) {
	return bestPrice(ob.bids)
}

func (ob *OrderBook) BestAsk() (Price, bool) {
	return bestPrice(ob.asks)
}

func bestPrice(ld *ladder) (Price, bool) {
	level, ok := ld.best()
	if !ok {
		return 0, false
	}
	return level.price, true
}

// canMatch reports whether an order on side at price would cross the best
// opposite level.
func (ob *OrderBook) canMatch(side Side, price Price) bool {
	if side == BUY {
		best, ok := ob.asks.best()
		return ok && price >= best.price
	}
	best, ok := ob.bids.best()
	return ok && price <= best.price
}

// matchOrders crosses the front of the best bid level against the front of
// the best ask level until the book is no longer crossed.
func (ob *OrderBook) matchOrders() []Trade {
	var trades []Trade

	for {
		bidLevel, ok := ob.bids.best()
		if !ok {
			break
		}
		askLevel, ok := ob.asks.best()
		if !ok {
			break
		}
		if bidLevel.price < askLevel.price {
			break
		}

		bid, ask := bidLevel.front(), askLevel.front()
		qty := min(bid.RemainingQuantity(), ask.RemainingQuantity())

		mustFill(bid, qty)
		mustFill(ask, qty)
		trades = append(trades, newTrade(bid, ask, qty))

		if bid.IsFilled() {
			ob.detach(ob.orders[bid.ID()])
		}
		if ask.IsFilled() {
			ob.detach(ob.orders[ask.ID()])
		}
	}

	return trades
}

func mustFill(o *Order, qty Quantity) {
	if err := o.Fill(qty); err != nil {
		panic(err)
	}
}

func (ob *OrderBook) sideLadder(side Side) *ladder {
	if side == BUY {
		return ob.bids
	}
	return ob.asks
}

// insert is the only way an order enters the book.
func (ob *OrderBook) insert(order *Order) {
	ob.orders[order.ID()] = ob.sideLadder(order.Side()).push(order)
}

// detach is the only way an order leaves the book.
func (ob *OrderBook) detach(slot *restingOrder) {
	order := slot.order
	delete(ob.orders, order.ID())
	ob.sideLadder(order.Side()).remove(slot)
}
