package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeReport is one execution as published downstream. Each side carries
// its own limit price.
type TradeReport struct {
	TradeID     string          `json:"trade_id"`
	BuyOrderID  uint64          `json:"buy_order_id"`
	BuyPrice    decimal.Decimal `json:"buy_price"`
	SellOrderID uint64          `json:"sell_order_id"`
	SellPrice   decimal.Decimal `json:"sell_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Timestamp   time.Time       `json:"timestamp"`
}

// PriceLevel is one aggregated level of a depth snapshot.
type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

type Depth struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}
