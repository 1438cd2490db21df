package orderbook

import (
	"testing"

	"pgregory.net/rapid"
)

type failer interface {
	Fatalf(format string, args ...any)
}

// checkBook asserts that the index and both ladders describe the same set of
// resting orders and that the book is not left crossed.
func checkBook(t failer, ob *OrderBook) {
	resting := 0
	for _, ld := range []*ladder{ob.bids, ob.asks} {
		if ld.tree.Len() != len(ld.levels) {
			t.Fatalf("%s ladder: tree has %d levels, map has %d", ld.side, ld.tree.Len(), len(ld.levels))
		}

		var prev *priceLevel
		ld.walk(func(level *priceLevel) bool {
			if prev != nil {
				if ld.side == BUY && level.price >= prev.price {
					t.Fatalf("bids out of order: %d after %d", level.price, prev.price)
				}
				if ld.side == SELL && level.price <= prev.price {
					t.Fatalf("asks out of order: %d after %d", level.price, prev.price)
				}
			}
			prev = level

			if ld.levels[level.price] != level {
				t.Fatalf("%s level %d missing from map", ld.side, level.price)
			}
			if level.empty() {
				t.Fatalf("%s level %d is empty but still listed", ld.side, level.price)
			}

			live := 0
			level.each(func(o *Order) bool {
				live++
				slot, ok := ob.orders[o.ID()]
				if !ok || slot.order != o || slot.level != level {
					t.Fatalf("order %d not indexed to its level", o.ID())
				}
				if o.Side() != ld.side || o.Price() != level.price {
					t.Fatalf("order %s rests at %s %d", o, ld.side, level.price)
				}
				if o.IsFilled() {
					t.Fatalf("filled order %d still rests", o.ID())
				}
				if o.Type() == FAK {
					t.Fatalf("fill and kill order %d rests", o.ID())
				}
				return true
			})
			if live != level.live {
				t.Fatalf("%s level %d: counted %d live, recorded %d", ld.side, level.price, live, level.live)
			}
			resting += live
			return true
		})
	}

	if resting != ob.Size() {
		t.Fatalf("ladders hold %d orders, index holds %d", resting, ob.Size())
	}

	bid, okBid := ob.BestBid()
	ask, okAsk := ob.BestAsk()
	if okBid && okAsk && bid >= ask {
		t.Fatalf("book left crossed: bid %d ask %d", bid, ask)
	}

	var indexed, snap uint64
	for _, slot := range ob.orders {
		indexed += uint64(slot.order.RemainingQuantity())
	}
	infos := ob.GetOrderInfos()
	for _, levels := range [][]LevelInfo{infos.Bids, infos.Asks} {
		for _, l := range levels {
			snap += uint64(l.Quantity)
		}
	}
	if indexed != snap {
		t.Fatalf("snapshot shows %d, resting orders hold %d", snap, indexed)
	}
}

func checkTrades(t failer, trades []Trade, submitted *Order) {
	var total Quantity
	for _, tr := range trades {
		if tr.BidTrade.Quantity == 0 || tr.BidTrade.Quantity != tr.AskTrade.Quantity {
			t.Fatalf("bad trade quantities: %+v", tr)
		}
		if tr.BidTrade.Price < tr.AskTrade.Price {
			t.Fatalf("trade below ask: %+v", tr)
		}
		if submitted != nil && (tr.BidTrade.OrderID == submitted.ID() || tr.AskTrade.OrderID == submitted.ID()) {
			total += tr.Quantity()
		}
	}
	if submitted != nil && total > submitted.InitialQuantity() {
		t.Fatalf("order %d traded %d of %d", submitted.ID(), total, submitted.InitialQuantity())
	}
}

func TestOrderBookProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ob := New()

		drawOrder := func() *Order {
			orderType := rapid.SampledFrom([]OrderType{GTC, GTC, FAK}).Draw(t, "type")
			id := rapid.Uint64Range(1, 24).Draw(t, "id")
			side := rapid.SampledFrom([]Side{BUY, SELL}).Draw(t, "side")
			price := rapid.Int32Range(95, 105).Draw(t, "price")
			qty := rapid.Uint32Range(0, 20).Draw(t, "qty")
			return NewOrder(orderType, OrderID(id), side, Price(price), Quantity(qty))
		}

		steps := rapid.IntRange(1, 150).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 5).Draw(t, "op") {
			case 0, 1, 2:
				o := drawOrder()
				_, existed := ob.Order(o.ID())
				before := ob.Size()

				trades := ob.AddOrder(o)
				checkTrades(t, trades, o)
				if existed && (len(trades) != 0 || ob.Size() != before) {
					t.Fatalf("duplicate id %d changed the book", o.ID())
				}
				if resting, ok := ob.Order(o.ID()); ok && resting == o && o.Type() == FAK {
					t.Fatalf("fill and kill order %d rests", o.ID())
				}

			case 3, 4:
				id := OrderID(rapid.Uint64Range(1, 24).Draw(t, "cancel"))
				ob.CancelOrder(id)
				if ob.Contains(id) {
					t.Fatalf("order %d still rests after cancel", id)
				}

			case 5:
				o := drawOrder()
				prev, existed := ob.Order(o.ID())
				before := ob.Size()

				trades := ob.ModifyOrder(OrderModify{ID: o.ID(), Side: o.Side(), Price: o.Price(), Quantity: o.InitialQuantity()})
				checkTrades(t, trades, nil)
				if !existed && (len(trades) != 0 || ob.Size() != before) {
					t.Fatalf("modify of unknown id %d changed the book", o.ID())
				}
				if existed {
					if now, ok := ob.Order(o.ID()); ok && now.Type() != prev.Type() {
						t.Fatalf("modify changed type of %d", o.ID())
					}
				}
			}

			checkBook(t, ob)
		}
	})
}

func TestOrderBookDrainsToEmpty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ob := New()

		ids := rapid.SliceOfNDistinct(rapid.Uint64Range(1, 1_000), 1, 60, rapid.ID[uint64]).Draw(t, "ids")
		for _, id := range ids {
			side := rapid.SampledFrom([]Side{BUY, SELL}).Draw(t, "side")
			price := rapid.Int32Range(90, 110).Draw(t, "price")
			qty := rapid.Uint32Range(1, 50).Draw(t, "qty")
			ob.AddOrder(NewOrder(GTC, OrderID(id), side, Price(price), Quantity(qty)))
		}
		checkBook(t, ob)

		for _, id := range ids {
			ob.CancelOrder(OrderID(id))
		}
		checkBook(t, ob)

		if ob.Size() != 0 {
			t.Fatalf("expected empty book after cancelling everything, got %d", ob.Size())
		}
		infos := ob.GetOrderInfos()
		if len(infos.Bids) != 0 || len(infos.Asks) != 0 {
			t.Fatalf("expected no levels, got %+v", infos)
		}
	})
}
