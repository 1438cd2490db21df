package oms

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joripage/orderbook-core/pkg/oms/model"
	riskrule "github.com/joripage/orderbook-core/pkg/oms/risk_rule"
	"github.com/joripage/orderbook-core/pkg/orderbook"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	trades []model.TradeReport
	err    error
}

func (r *recordingSink) PublishTrades(_ context.Context, trades []model.TradeReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = append(r.trades, trades...)
	return r.err
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestOMS(t *testing.T, opts ...Option) (*OMS, *recordingSink) {
	t.Helper()
	ticks, err := model.NewTickConverter(d("0.01"))
	require.NoError(t, err)

	sink := &recordingSink{}
	clock := func() time.Time { return time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC) }
	opts = append([]Option{WithTradeSink(sink), withClock(clock)}, opts...)
	return NewOMS(ticks, opts...), sink
}

func addOrder(id uint64, side model.OrderSide, tif model.OrderTimeInForce, price, qty string) *model.AddOrder {
	return &model.AddOrder{
		OrderID:     id,
		ClOrdID:     "c" + decimal.NewFromInt(int64(id)).String(),
		Side:        side,
		TimeInForce: tif,
		Price:       d(price),
		Quantity:    d(qty),
	}
}

func TestAddOrderMatchesAndPublishes(t *testing.T) {
	ctx := context.Background()
	s, sink := newTestOMS(t)

	trades, err := s.AddOrder(ctx, addOrder(1, model.OrderSideSell, model.OrderTimeInForceGTC, "10.00", "5"))
	require.NoError(t, err)
	assert.Empty(t, trades)

	trades, err = s.AddOrder(ctx, addOrder(2, model.OrderSideBuy, model.OrderTimeInForceGTC, "10.05", "8"))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, orderbook.Price(1005), trades[0].BidTrade.Price)
	assert.Equal(t, orderbook.Price(1000), trades[0].AskTrade.Price)

	require.Len(t, sink.trades, 1)
	report := sink.trades[0]
	assert.Equal(t, uint64(2), report.BuyOrderID)
	assert.Equal(t, uint64(1), report.SellOrderID)
	assert.True(t, report.BuyPrice.Equal(d("10.05")))
	assert.True(t, report.SellPrice.Equal(d("10")))
	assert.True(t, report.Quantity.Equal(d("5")))

	buy, ok := s.Order(2)
	require.True(t, ok)
	assert.Equal(t, model.OrderStatusPartiallyFilled, buy.Status)
	assert.True(t, buy.LeavesQuantity.Equal(d("3")))

	_, ok = s.Order(1)
	assert.False(t, ok, "filled order should be forgotten")

	depth := s.Depth()
	require.Len(t, depth.Bids, 1)
	assert.True(t, depth.Bids[0].Price.Equal(d("10.05")))
	assert.True(t, depth.Bids[0].Quantity.Equal(d("3")))
	assert.Empty(t, depth.Asks)

	count, qty := s.Stats()
	assert.Equal(t, uint64(1), count)
	assert.Equal(t, uint64(5), qty)
}

func TestAddOrderValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestOMS(t, WithRiskRules(riskrule.NewMaxQuantityRule(d("100"))))

	cases := []struct {
		name  string
		order *model.AddOrder
		want  error
	}{
		{"unknown side", addOrder(1, "HOLD", model.OrderTimeInForceGTC, "1", "1"), errUnknownSide},
		{"unknown tif", addOrder(1, model.OrderSideBuy, "FOK", "1", "1"), errUnknownTimeInForce},
		{"off tick", addOrder(1, model.OrderSideBuy, model.OrderTimeInForceGTC, "1.001", "1"), errInvalidPrice},
		{"zero price", addOrder(1, model.OrderSideBuy, model.OrderTimeInForceGTC, "0", "1"), errInvalidPrice},
		{"zero qty", addOrder(1, model.OrderSideBuy, model.OrderTimeInForceGTC, "1", "0"), errInvalidQuantity},
		{"fractional qty", addOrder(1, model.OrderSideBuy, model.OrderTimeInForceGTC, "1", "0.5"), errInvalidQuantity},
		{"risk", addOrder(1, model.OrderSideBuy, model.OrderTimeInForceGTC, "1", "101"), errRiskRule},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.AddOrder(ctx, tc.order)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 0, s.Size())
}

func TestDuplicateOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestOMS(t)

	_, err := s.AddOrder(ctx, addOrder(1, model.OrderSideBuy, model.OrderTimeInForceGTC, "1", "1"))
	require.NoError(t, err)

	_, err = s.AddOrder(ctx, addOrder(1, model.OrderSideSell, model.OrderTimeInForceGTC, "1", "1"))
	assert.True(t, IsDuplicateOrder(err))

	dupClOrd := addOrder(2, model.OrderSideSell, model.OrderTimeInForceGTC, "2", "1")
	dupClOrd.ClOrdID = "c1"
	_, err = s.AddOrder(ctx, dupClOrd)
	assert.ErrorIs(t, err, errDuplicateOrder)

	assert.Equal(t, 1, s.Size())
}

func TestIOCExpires(t *testing.T) {
	ctx := context.Background()
	s, sink := newTestOMS(t)

	_, err := s.AddOrder(ctx, addOrder(1, model.OrderSideSell, model.OrderTimeInForceGTC, "5", "2"))
	require.NoError(t, err)

	trades, err := s.AddOrder(ctx, addOrder(2, model.OrderSideBuy, model.OrderTimeInForceIOC, "5", "10"))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Len(t, sink.trades, 1)
	assert.Equal(t, 0, s.Size())

	_, ok := s.Order(2)
	assert.False(t, ok)

	events := s.Events(2)
	require.Len(t, events, 3)
	assert.Equal(t, model.ExecTypeNew, events[0].ExecType)
	assert.Equal(t, model.ExecTypeTrade, events[1].ExecType)
	assert.Equal(t, model.ExecTypeExpired, events[2].ExecType)
	assert.True(t, events[2].Qty.Equal(d("8")))
}

func TestIOCWithoutLiquidity(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestOMS(t)

	trades, err := s.AddOrder(ctx, addOrder(1, model.OrderSideBuy, model.OrderTimeInForceIOC, "5", "10"))
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, 0, s.Size())

	events := s.Events(1)
	require.Len(t, events, 2)
	assert.Equal(t, model.ExecTypeExpired, events[1].ExecType)
}

func TestCancelByOrderIDAndClOrdID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestOMS(t)

	for i := uint64(1); i <= 2; i++ {
		_, err := s.AddOrder(ctx, addOrder(i, model.OrderSideBuy, model.OrderTimeInForceGTC, "1", "1"))
		require.NoError(t, err)
	}

	require.NoError(t, s.CancelOrder(ctx, &model.CancelOrder{OrderID: 1, ClOrdID: "x1"}))
	require.NoError(t, s.CancelOrder(ctx, &model.CancelOrder{ClOrdID: "x2", OrigClOrdID: "c2"}))
	assert.Equal(t, 0, s.Size())

	err := s.CancelOrder(ctx, &model.CancelOrder{OrderID: 1})
	assert.ErrorIs(t, err, errOrderIDNotFound)
	err = s.CancelOrder(ctx, &model.CancelOrder{OrigClOrdID: "c2"})
	assert.ErrorIs(t, err, errOrderIDNotFound)
}

func TestModifyOrder(t *testing.T) {
	ctx := context.Background()
	s, sink := newTestOMS(t)

	_, err := s.AddOrder(ctx, addOrder(1, model.OrderSideBuy, model.OrderTimeInForceGTC, "9", "5"))
	require.NoError(t, err)
	_, err = s.AddOrder(ctx, addOrder(2, model.OrderSideSell, model.OrderTimeInForceGTC, "10", "3"))
	require.NoError(t, err)

	trades, err := s.ModifyOrder(ctx, &model.ModifyOrder{
		ClOrdID:     "m1",
		OrigClOrdID: "c1",
		Side:        model.OrderSideBuy,
		NewPrice:    d("10"),
		NewQuantity: d("4"),
	})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Len(t, sink.trades, 1)

	order, ok := s.Order(1)
	require.True(t, ok)
	assert.Equal(t, model.OrderStatusPartiallyFilled, order.Status)
	assert.Equal(t, "m1", order.ClOrdID)
	assert.True(t, order.LeavesQuantity.Equal(d("1")))

	_, err = s.ModifyOrder(ctx, &model.ModifyOrder{OrderID: 42, Side: model.OrderSideBuy, NewPrice: d("1"), NewQuantity: d("1")})
	assert.ErrorIs(t, err, errOrderIDNotFound)
}

func TestModifyOfExpiredIOC(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestOMS(t)

	// an IOC never rests, so there is nothing to modify
	_, err := s.AddOrder(ctx, addOrder(1, model.OrderSideBuy, model.OrderTimeInForceIOC, "1", "1"))
	require.NoError(t, err)
	_, err = s.ModifyOrder(ctx, &model.ModifyOrder{OrderID: 1, Side: model.OrderSideBuy, NewPrice: d("1"), NewQuantity: d("2")})
	assert.ErrorIs(t, err, errOrderIDNotFound)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	s, sink := newTestOMS(t)
	sink.err = errors.New("broker down")

	_, err := s.AddOrder(ctx, addOrder(1, model.OrderSideSell, model.OrderTimeInForceGTC, "1", "1"))
	require.NoError(t, err)
	trades, err := s.AddOrder(ctx, addOrder(2, model.OrderSideBuy, model.OrderTimeInForceGTC, "1", "1"))
	require.NoError(t, err)
	assert.Len(t, trades, 1)
	assert.Equal(t, 0, s.Size())
}

func TestConcurrentSubmissions(t *testing.T) {
	ctx := context.Background()
	s, sink := newTestOMS(t)

	const perSide = 200
	var wg sync.WaitGroup
	for _, side := range []model.OrderSide{model.OrderSideBuy, model.OrderSideSell} {
		wg.Add(1)
		go func(side model.OrderSide) {
			defer wg.Done()
			base := uint64(1)
			if side == model.OrderSideSell {
				base = perSide + 1
			}
			for i := uint64(0); i < perSide; i++ {
				_, err := s.AddOrder(ctx, addOrder(base+i, side, model.OrderTimeInForceGTC, "10", "1"))
				assert.NoError(t, err)
			}
		}(side)
	}
	wg.Wait()

	assert.Equal(t, 0, s.Size())
	assert.Len(t, sink.trades, perSide)
	snap := s.Snapshot()
	assert.Empty(t, snap.Bids)
	assert.Empty(t, snap.Asks)
}

func TestClOrdIDOfAnotherLiveOrderRejected(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestOMS(t)

	for i := uint64(1); i <= 2; i++ {
		_, err := s.AddOrder(ctx, addOrder(i, model.OrderSideBuy, model.OrderTimeInForceGTC, "1", "1"))
		require.NoError(t, err)
	}

	_, err := s.ModifyOrder(ctx, &model.ModifyOrder{OrderID: 2, ClOrdID: "c1", Side: model.OrderSideBuy, NewPrice: d("1"), NewQuantity: d("2")})
	assert.True(t, IsDuplicateOrder(err))
	err = s.CancelOrder(ctx, &model.CancelOrder{OrderID: 2, ClOrdID: "c1"})
	assert.True(t, IsDuplicateOrder(err))

	// both orders still own their ids
	require.NoError(t, s.CancelOrder(ctx, &model.CancelOrder{OrderID: 2, ClOrdID: "x2"}))
	_, err = s.AddOrder(ctx, addOrder(3, model.OrderSideSell, model.OrderTimeInForceGTC, "2", "1"))
	require.NoError(t, err)
	dup := addOrder(4, model.OrderSideSell, model.OrderTimeInForceGTC, "2", "1")
	dup.ClOrdID = "c1"
	_, err = s.AddOrder(ctx, dup)
	assert.True(t, IsDuplicateOrder(err))

	require.NoError(t, s.CancelOrder(ctx, &model.CancelOrder{ClOrdID: "x1", OrigClOrdID: "c1"}))
	_, ok := s.Order(1)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Size())
}

func TestModifyKeepsOwnClOrdID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestOMS(t)

	_, err := s.AddOrder(ctx, addOrder(1, model.OrderSideBuy, model.OrderTimeInForceGTC, "1", "1"))
	require.NoError(t, err)
	_, err = s.ModifyOrder(ctx, &model.ModifyOrder{OrderID: 1, ClOrdID: "c1", Side: model.OrderSideBuy, NewPrice: d("1"), NewQuantity: d("3")})
	require.NoError(t, err)

	order, ok := s.Order(1)
	require.True(t, ok)
	assert.True(t, order.LeavesQuantity.Equal(d("3")))
}

func TestStaleOrigClOrdIDRejected(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestOMS(t)

	_, err := s.AddOrder(ctx, addOrder(1, model.OrderSideBuy, model.OrderTimeInForceGTC, "1", "5"))
	require.NoError(t, err)
	_, err = s.ModifyOrder(ctx, &model.ModifyOrder{ClOrdID: "m1", OrigClOrdID: "c1", Side: model.OrderSideBuy, NewPrice: d("1"), NewQuantity: d("4")})
	require.NoError(t, err)
	_, err = s.ModifyOrder(ctx, &model.ModifyOrder{ClOrdID: "m2", OrigClOrdID: "m1", Side: model.OrderSideBuy, NewPrice: d("1"), NewQuantity: d("3")})
	require.NoError(t, err)

	assert.Equal(t, []string{"m2", "m1", "c1"}, s.ClOrdChain("m2"))

	_, err = s.ModifyOrder(ctx, &model.ModifyOrder{ClOrdID: "m3", OrigClOrdID: "m1", Side: model.OrderSideBuy, NewPrice: d("1"), NewQuantity: d("2")})
	assert.ErrorIs(t, err, errStaleClOrdID)
	err = s.CancelOrder(ctx, &model.CancelOrder{OrderID: 1, ClOrdID: "x1", OrigClOrdID: "c1"})
	assert.ErrorIs(t, err, errStaleClOrdID)

	order, ok := s.Order(1)
	require.True(t, ok)
	assert.True(t, order.LeavesQuantity.Equal(d("3")))

	eventsBefore := s.EventCount()
	require.NoError(t, s.CancelOrder(ctx, &model.CancelOrder{ClOrdID: "x1", OrigClOrdID: "m2"}))
	assert.Equal(t, eventsBefore+1, s.EventCount())
	assert.Empty(t, s.ClOrdChain("m2"))
}
