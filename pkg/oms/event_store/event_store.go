package eventstore

import "github.com/joripage/orderbook-core/pkg/oms/model"

type EventStore interface {
	AddEvent(ev *model.OrderEvent)
	GetLatestClOrdID(orderID uint64) string
	GetOrderID(clOrdID string) (uint64, bool)
	ReconstructChain(clOrdID string) []string
	History(orderID uint64) []*model.OrderEvent
	DeleteChainByOrderID(orderID uint64)
	Len() int
}
