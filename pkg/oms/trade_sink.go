package oms

import (
	"context"

	"github.com/joripage/orderbook-core/pkg/oms/model"
)

// TradeSink receives the trades of every book call, in execution order. It
// is called with the OMS lock held and must not call back into the OMS.
type TradeSink interface {
	PublishTrades(ctx context.Context, trades []model.TradeReport) error
}

type NopSink struct{}

func (NopSink) PublishTrades(context.Context, []model.TradeReport) error { return nil }
