package oms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joripage/orderbook-core/pkg/logging"
	eventstore "github.com/joripage/orderbook-core/pkg/oms/event_store"
	"github.com/joripage/orderbook-core/pkg/oms/model"
	riskrule "github.com/joripage/orderbook-core/pkg/oms/risk_rule"
	"github.com/joripage/orderbook-core/pkg/orderbook"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OMS is the order entry in front of one order book. It validates requests,
// converts them to book units and runs every book call under one lock, so
// the book always sees a single sequenced stream.
type OMS struct {
	mu sync.Mutex

	book       *orderbook.OrderBook
	ticks      model.TickConverter
	rules      []riskrule.RiskRule
	eventstore eventstore.EventStore
	sink       TradeSink
	logger     *logging.Logger
	now        func() time.Time

	// live orders by id, guarded by mu
	orders map[uint64]*model.Order

	totalMatchQty   uint64
	totalMatchCount uint64
}

type Option func(*OMS)

func WithRiskRules(rules ...riskrule.RiskRule) Option {
	return func(s *OMS) { s.rules = append(s.rules, rules...) }
}

func WithTradeSink(sink TradeSink) Option {
	return func(s *OMS) {
		if sink != nil {
			s.sink = sink
		}
	}
}

func WithEventStore(store eventstore.EventStore) Option {
	return func(s *OMS) {
		if store != nil {
			s.eventstore = store
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *OMS) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *OMS) { s.now = now }
}

func NewOMS(ticks model.TickConverter, opts ...Option) *OMS {
	s := &OMS{
		ticks:      ticks,
		eventstore: eventstore.NewInMemoryEventStore(),
		sink:       NopSink{},
		logger:     logging.Wrap(nil),
		now:        time.Now,
		orders:     make(map[uint64]*model.Order),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.book = orderbook.New(orderbook.WithLogger(s.logger.Named("orderbook").Zap()))
	return s
}

func (s *OMS) AddOrder(ctx context.Context, addOrder *model.AddOrder) ([]orderbook.Trade, error) {
	side, err := toBookSide(addOrder.Side)
	if err != nil {
		return nil, err
	}
	orderType, err := toBookType(addOrder.TimeInForce)
	if err != nil {
		return nil, err
	}
	price, qty, err := s.checkTerms(addOrder.Price, addOrder.Quantity)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[addOrder.OrderID]; ok {
		return nil, fmt.Errorf("%w: %d", errDuplicateOrder, addOrder.OrderID)
	}
	if err := s.checkClOrdID(addOrder.ClOrdID, addOrder.OrderID); err != nil {
		return nil, err
	}

	now := s.now()
	order := model.NewOrder(addOrder)
	s.AddOrderToMap(order)
	s.eventstore.AddEvent(model.NewOrderEventNewOrder(order, now))

	trades := s.book.AddOrder(orderbook.NewOrder(orderType, orderbook.OrderID(order.OrderID), side, price, qty))
	s.processTrades(ctx, trades, now)
	s.expireIfGone(order, now)
	s.cleanup(order)

	s.logger.Debug(ctx, "order added",
		zap.Uint64("order_id", order.OrderID),
		zap.String("status", string(order.Status)),
		zap.Int("trades", len(trades)),
	)
	return trades, nil
}

func (s *OMS) CancelOrder(ctx context.Context, cancelOrder *model.CancelOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.resolve(cancelOrder.OrderID, cancelOrder.OrigClOrdID)
	if err != nil {
		return err
	}
	if err := s.checkClOrdID(cancelOrder.ClOrdID, order.OrderID); err != nil {
		return err
	}

	s.book.CancelOrder(orderbook.OrderID(order.OrderID))
	order.UpdateCancelOrder(cancelOrder)

	s.eventstore.AddEvent(model.NewOrderEventCancel(order.OrderID, cancelOrder.ClOrdID, cancelOrder.OrigClOrdID, s.now()))
	s.cleanup(order)

	s.logger.Debug(ctx, "order canceled", zap.Uint64("order_id", order.OrderID))
	return nil
}

func (s *OMS) ModifyOrder(ctx context.Context, modifyOrder *model.ModifyOrder) ([]orderbook.Trade, error) {
	side, err := toBookSide(modifyOrder.Side)
	if err != nil {
		return nil, err
	}
	price, qty, err := s.checkTerms(modifyOrder.NewPrice, modifyOrder.NewQuantity)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.resolve(modifyOrder.OrderID, modifyOrder.OrigClOrdID)
	if err != nil {
		return nil, err
	}
	if err := s.checkClOrdID(modifyOrder.ClOrdID, order.OrderID); err != nil {
		return nil, err
	}

	now := s.now()
	order.UpdateModifyOrder(modifyOrder)
	s.eventstore.AddEvent(model.NewOrderEventCancelReplace(order.OrderID, modifyOrder.ClOrdID, modifyOrder.OrigClOrdID,
		modifyOrder.NewPrice, modifyOrder.NewQuantity, now))

	trades := s.book.ModifyOrder(orderbook.OrderModify{
		ID:       orderbook.OrderID(order.OrderID),
		Side:     side,
		Price:    price,
		Quantity: qty,
	})
	s.processTrades(ctx, trades, now)
	s.expireIfGone(order, now)
	s.cleanup(order)

	s.logger.Debug(ctx, "order modified",
		zap.Uint64("order_id", order.OrderID),
		zap.String("status", string(order.Status)),
		zap.Int("trades", len(trades)),
	)
	return trades, nil
}

// Snapshot is the raw depth in book units.
func (s *OMS) Snapshot() orderbook.OrderbookLevelInfos {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.book.GetOrderInfos()
}

// Depth is the snapshot converted back to decimal prices and quantities.
func (s *OMS) Depth() model.Depth {
	infos := s.Snapshot()
	return model.Depth{
		Bids: s.toPriceLevels(infos.Bids),
		Asks: s.toPriceLevels(infos.Asks),
	}
}

func (s *OMS) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.book.Size()
}

// Events returns the recorded history of orderID.
func (s *OMS) Events(orderID uint64) []*model.OrderEvent {
	return s.eventstore.History(orderID)
}

// ClOrdChain walks a live order's ClOrdIDs from clOrdID back to the one it
// was entered with. It is nil once the order has finished.
func (s *OMS) ClOrdChain(clOrdID string) []string {
	if _, ok := s.eventstore.GetOrderID(clOrdID); !ok {
		return nil
	}
	return s.eventstore.ReconstructChain(clOrdID)
}

// EventCount is the number of events recorded since start.
func (s *OMS) EventCount() int {
	return s.eventstore.Len()
}

// Stats returns the number of trades and the traded quantity so far.
func (s *OMS) Stats() (count, qty uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.totalMatchCount, s.totalMatchQty
}

func (s *OMS) checkTerms(price, qty decimal.Decimal) (orderbook.Price, orderbook.Quantity, error) {
	bookPrice, err := s.ticks.ToTicks(price)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", errInvalidPrice, err)
	}
	bookQty, err := model.ToQuantity(qty)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", errInvalidQuantity, err)
	}
	for _, rule := range s.rules {
		if err := rule.Check(price, qty); err != nil {
			return 0, 0, fmt.Errorf("%w: %w", errRiskRule, err)
		}
	}
	return bookPrice, bookQty, nil
}

// resolve finds a live order by id, falling back to the ClOrdID chain. An
// OrigClOrdID must name the order's latest ClOrdID.
func (s *OMS) resolve(orderID uint64, origClOrdID string) (*model.Order, error) {
	if orderID == 0 && origClOrdID != "" {
		id, ok := s.eventstore.GetOrderID(origClOrdID)
		if !ok {
			return nil, fmt.Errorf("%w: clOrdID %s", errOrderIDNotFound, origClOrdID)
		}
		orderID = id
	}
	order, err := s.GetOrderByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if origClOrdID != "" {
		if latest := s.eventstore.GetLatestClOrdID(orderID); latest != "" && latest != origClOrdID {
			return nil, fmt.Errorf("%w: %s, latest is %s", errStaleClOrdID, origClOrdID, latest)
		}
	}
	return order, nil
}

// checkClOrdID rejects a ClOrdID held by another live order. Finished
// orders drop their chain in cleanup, so any mapping left is live.
func (s *OMS) checkClOrdID(clOrdID string, orderID uint64) error {
	if clOrdID == "" {
		return nil
	}
	if owner, ok := s.eventstore.GetOrderID(clOrdID); ok && owner != orderID {
		return fmt.Errorf("%w: clOrdID %s", errDuplicateOrder, clOrdID)
	}
	return nil
}

func (s *OMS) processTrades(ctx context.Context, trades []orderbook.Trade, now time.Time) {
	if len(trades) == 0 {
		return
	}

	reports := make([]model.TradeReport, 0, len(trades))
	for _, t := range trades {
		qty := model.FromQuantity(t.Quantity())
		bidPrice := s.ticks.FromTicks(t.BidTrade.Price)
		askPrice := s.ticks.FromTicks(t.AskTrade.Price)

		s.totalMatchQty += uint64(t.Quantity())
		s.totalMatchCount++

		s.applyMatch(ctx, uint64(t.BidTrade.OrderID), qty, bidPrice, now)
		s.applyMatch(ctx, uint64(t.AskTrade.OrderID), qty, askPrice, now)

		reports = append(reports, model.TradeReport{
			TradeID:     model.NewEventID(),
			BuyOrderID:  uint64(t.BidTrade.OrderID),
			BuyPrice:    bidPrice,
			SellOrderID: uint64(t.AskTrade.OrderID),
			SellPrice:   askPrice,
			Quantity:    qty,
			Timestamp:   now,
		})
	}

	if err := s.sink.PublishTrades(ctx, reports); err != nil {
		// the book has already moved on; downstream must reconcile from the event store
		s.logger.Warn(ctx, "publish trades failed", zap.Int("trades", len(reports)), zap.Error(err))
	}
}

func (s *OMS) applyMatch(ctx context.Context, orderID uint64, qty, price decimal.Decimal, now time.Time) {
	order, err := s.GetOrderByOrderID(orderID)
	if err != nil {
		s.logger.Error(ctx, "matched order not tracked", zap.Uint64("order_id", orderID))
		return
	}
	order.UpdateMatch(qty, price)
	s.eventstore.AddEvent(model.NewOrderEventTrade(order, now))
	s.cleanup(order)
}

// expireIfGone closes an IOC order the book did not keep.
func (s *OMS) expireIfGone(order *model.Order, now time.Time) {
	if order.IsEnd() || s.book.Contains(orderbook.OrderID(order.OrderID)) {
		return
	}
	expired := order.LeavesQuantity
	order.Expire()
	s.eventstore.AddEvent(model.NewOrderEventExpired(order, expired, now))
}

func (s *OMS) toPriceLevels(levels []orderbook.LevelInfo) []model.PriceLevel {
	out := make([]model.PriceLevel, 0, len(levels))
	for _, l := range levels {
		out = append(out, model.PriceLevel{
			Price:    s.ticks.FromTicks(l.Price),
			Quantity: model.FromLevelQuantity(l.Quantity),
		})
	}
	return out
}

func toBookSide(side model.OrderSide) (orderbook.Side, error) {
	switch side {
	case model.OrderSideBuy:
		return orderbook.BUY, nil
	case model.OrderSideSell:
		return orderbook.SELL, nil
	}
	return "", fmt.Errorf("%w: %q", errUnknownSide, side)
}

func toBookType(tif model.OrderTimeInForce) (orderbook.OrderType, error) {
	switch tif {
	case model.OrderTimeInForceGTC, "":
		return orderbook.GTC, nil
	case model.OrderTimeInForceIOC:
		return orderbook.FAK, nil
	}
	return "", fmt.Errorf("%w: %q", errUnknownTimeInForce, tif)
}
