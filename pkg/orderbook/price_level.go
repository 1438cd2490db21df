package orderbook

import "github.com/gammazero/deque"

// compactThreshold is the queue length below which cancelled slots are only
// dropped lazily from the front.
const compactThreshold = 64

// restingOrder is the slot an order occupies in its level. The order index
// holds the same pointer, so removal never scans the queue. A slot whose
// order is nil has been removed.
type restingOrder struct {
	order *Order
	level *priceLevel
}

// priceLevel is the FIFO of orders resting at one price.
type priceLevel struct {
	price  Price
	orders deque.Deque[*restingOrder]
	live   int
}

func newPriceLevel(price Price) *priceLevel {
	return &priceLevel{price: price}
}

func (l *priceLevel) push(o *Order) *restingOrder {
	slot := &restingOrder{order: o, level: l}
	l.orders.PushBack(slot)
	l.live++
	return slot
}

// front returns the earliest live order, nil when the level is empty.
func (l *priceLevel) front() *Order {
	l.dropDeadFront()
	if l.orders.Len() == 0 {
		return nil
	}
	return l.orders.Front().order
}

func (l *priceLevel) remove(slot *restingOrder) {
	slot.order = nil
	l.live--
	l.dropDeadFront()

	if dead := l.orders.Len() - l.live; l.orders.Len() > compactThreshold && dead > l.live {
		l.compact()
	}
}

func (l *priceLevel) empty() bool {
	return l.live == 0
}

func (l *priceLevel) dropDeadFront() {
	for l.orders.Len() > 0 && l.orders.Front().order == nil {
		l.orders.PopFront()
	}
}

// compact rebuilds the queue without removed slots, keeping arrival order.
func (l *priceLevel) compact() {
	var kept deque.Deque[*restingOrder]
	kept.Grow(l.live)
	for i := 0; i < l.orders.Len(); i++ {
		if slot := l.orders.At(i); slot.order != nil {
			kept.PushBack(slot)
		}
	}
	l.orders = kept
}

// each visits live orders in arrival order until fn returns false.
func (l *priceLevel) each(fn func(*Order) bool) {
	for i := 0; i < l.orders.Len(); i++ {
		slot := l.orders.At(i)
		if slot.order == nil {
			continue
		}
		if !fn(slot.order) {
			return
		}
	}
}

// totalQuantity sums in 64 bits; a level can hold more than one order's worth.
func (l *priceLevel) totalQuantity() uint64 {
	var total uint64
	l.each(func(o *Order) bool {
		total += uint64(o.RemainingQuantity())
		return true
	})
	return total
}
