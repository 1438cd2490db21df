package oms

import (
	"fmt"

	"github.com/joripage/orderbook-core/pkg/oms/model"
)

// The helpers below expect s.mu to be held.

func (s *OMS) AddOrderToMap(order *model.Order) {
	s.orders[order.OrderID] = order
}

func (s *OMS) GetOrderByOrderID(orderID uint64) (*model.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", errOrderIDNotFound, orderID)
	}
	return order, nil
}

func (s *OMS) DeleteOrderByOrderID(orderID uint64) {
	delete(s.orders, orderID)
}

// cleanup forgets a finished order so its OrderID and ClOrdIDs can be reused.
func (s *OMS) cleanup(order *model.Order) {
	if !order.IsEnd() {
		return
	}
	if current, ok := s.orders[order.OrderID]; ok && current == order {
		s.DeleteOrderByOrderID(order.OrderID)
		s.eventstore.DeleteChainByOrderID(order.OrderID)
	}
}

// Order returns a copy of the live order's state.
func (s *OMS) Order(orderID uint64) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return model.Order{}, false
	}
	return *order, true
}
