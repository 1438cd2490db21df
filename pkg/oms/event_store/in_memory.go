package eventstore

import (
	"sync"

	"github.com/joripage/orderbook-core/pkg/oms/model"
)

type InMemoryEventStore struct {
	mu            sync.RWMutex
	orders        map[uint64][]*model.OrderEvent
	latestClOrdID map[uint64]string // OrderID -> current ClOrdID
	clOrdChain    map[string]string // ClOrdID -> OrigClOrdID
	clOrdOrder    map[string]uint64 // ClOrdID -> OrderID
	total         int
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		orders:        make(map[uint64][]*model.OrderEvent),
		latestClOrdID: make(map[uint64]string),
		clOrdChain:    make(map[string]string),
		clOrdOrder:    make(map[string]uint64),
	}
}

func (s *InMemoryEventStore) AddEvent(ev *model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[ev.OrderID] = append(s.orders[ev.OrderID], ev)
	s.total++

	if ev.ClOrdID != "" {
		s.trackClOrdChain(ev.OrderID, ev.ClOrdID, ev.OrigClOrdID)
	}
}

// trackClOrdChain links clOrdID to the order and to the ClOrdID it replaced.
func (s *InMemoryEventStore) trackClOrdChain(orderID uint64, clOrdID, origClOrdID string) {
	// always set the latest ClOrdID
	s.latestClOrdID[orderID] = clOrdID
	s.clOrdOrder[clOrdID] = orderID

	if origClOrdID != "" && origClOrdID != clOrdID {
		s.clOrdChain[clOrdID] = origClOrdID
	}
}

func (s *InMemoryEventStore) GetLatestClOrdID(orderID uint64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latestClOrdID[orderID]
}

func (s *InMemoryEventStore) GetOrderID(clOrdID string) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orderID, ok := s.clOrdOrder[clOrdID]
	return orderID, ok
}

// ReconstructChain walks backward to get full chain of ClOrdIDs
func (s *InMemoryEventStore) ReconstructChain(clOrdID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chain []string
	seen := make(map[string]struct{})
	curr := clOrdID
	for curr != "" {
		if _, ok := seen[curr]; ok {
			break
		}
		seen[curr] = struct{}{}
		chain = append(chain, curr)
		curr = s.clOrdChain[curr]
	}
	return chain
}

// History returns a copy of the events recorded for orderID, oldest first.
func (s *InMemoryEventStore) History(orderID uint64) []*model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.orders[orderID]
	out := make([]*model.OrderEvent, len(events))
	copy(out, events)
	return out
}

// DeleteChainByOrderID forgets the ClOrdID chain of a finished order so its
// ids can be reused. The event history is kept.
func (s *InMemoryEventStore) DeleteChainByOrderID(orderID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.orders[orderID] {
		if ev.ClOrdID == "" {
			continue
		}
		if s.clOrdOrder[ev.ClOrdID] == orderID {
			delete(s.clOrdOrder, ev.ClOrdID)
		}
		delete(s.clOrdChain, ev.ClOrdID)
	}
	delete(s.latestClOrdID, orderID)
}

func (s *InMemoryEventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.total
}
