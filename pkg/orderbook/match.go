package orderbook

// TradeInfo is one side of an execution. Price is the order's own limit price.
type TradeInfo struct {
	OrderID  OrderID
	Price    Price
	Quantity Quantity
}

// Trade pairs the bid and ask side of a single execution.
type Trade struct {
	BidTrade TradeInfo
	AskTrade TradeInfo
}

func newTrade(bid, ask *Order, qty Quantity) Trade {
	return Trade{
		BidTrade: TradeInfo{OrderID: bid.ID(), Price: bid.Price(), Quantity: qty},
		AskTrade: TradeInfo{OrderID: ask.ID(), Price: ask.Price(), Quantity: qty},
	}
}

// Quantity is the executed quantity, identical on both sides.
func (t Trade) Quantity() Quantity {
	return t.BidTrade.Quantity
}
