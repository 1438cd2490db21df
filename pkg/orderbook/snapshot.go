package orderbook

// LevelInfo is the aggregated remaining quantity at one price.
type LevelInfo struct {
	Price    Price
	Quantity uint64
}

// OrderbookLevelInfos is a depth snapshot, each side best price first.
type OrderbookLevelInfos struct {
	Bids []LevelInfo
	Asks []LevelInfo
}

// GetOrderInfos aggregates both ladders. It never mutates the book.
func (ob *OrderBook) GetOrderInfos() OrderbookLevelInfos {
	return OrderbookLevelInfos{
		Bids: ob.bids.levelInfos(),
		Asks: ob.asks.levelInfos(),
	}
}
