package oms

import (
	"context"

	"github.com/joripage/orderbook-core/pkg/oms/model"
	"github.com/joripage/orderbook-core/pkg/orderbook"
)

type IOMS interface {
	AddOrder(ctx context.Context, addOrder *model.AddOrder) ([]orderbook.Trade, error)
	ModifyOrder(ctx context.Context, modifyOrder *model.ModifyOrder) ([]orderbook.Trade, error)
	CancelOrder(ctx context.Context, cancelOrder *model.CancelOrder) error
	Snapshot() orderbook.OrderbookLevelInfos
	Depth() model.Depth
	Size() int
	ClOrdChain(clOrdID string) []string
}

var _ IOMS = (*OMS)(nil)
