// Package worker follows the trade topic and keeps a running tape of what
// the book executed.
package worker

import (
	"context"
	"sync"

	kafkawrapper "github.com/joripage/orderbook-core/pkg/kafka_wrapper"
	"github.com/joripage/orderbook-core/pkg/logging"
	"github.com/joripage/orderbook-core/pkg/oms/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Tape is the running summary of consumed trades.
type Tape struct {
	Trades        int
	Volume        decimal.Decimal
	LastBuyPrice  decimal.Decimal
	LastSellPrice decimal.Decimal
	Skipped       int
}

type Worker struct {
	logger *logging.Logger

	mu   sync.Mutex
	tape Tape
}

func NewWorker(logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Wrap(nil)
	}
	return &Worker{logger: logger, tape: Tape{Volume: decimal.Zero}}
}

// HandleBatch applies one batch from the consumer. Undecodable messages are
// skipped and counted, so a bad record never blocks the partition.
func (w *Worker) HandleBatch(ctx context.Context, msgs []kafkawrapper.Message) error {
	trades := make([]model.TradeReport, 0, len(msgs))
	skipped := 0
	for _, m := range msgs {
		trade, err := kafkawrapper.DecodeTradeReport(m)
		if err != nil {
			skipped++
			w.logger.Warn(ctx, "skip trade message", zap.Int64("offset", m.Offset), zap.Error(err))
			continue
		}
		trades = append(trades, trade)
	}

	w.mu.Lock()
	for _, t := range trades {
		w.tape.Trades++
		w.tape.Volume = w.tape.Volume.Add(t.Quantity)
		w.tape.LastBuyPrice = t.BuyPrice
		w.tape.LastSellPrice = t.SellPrice
	}
	w.tape.Skipped += skipped
	tape := w.tape
	w.mu.Unlock()

	w.logger.Info(ctx, "trades consumed",
		zap.Int("batch", len(trades)),
		zap.Int("total_trades", tape.Trades),
		zap.String("total_volume", tape.Volume.String()),
	)
	return nil
}

func (w *Worker) Tape() Tape {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tape
}

// Run consumes cg until ctx is done.
func (w *Worker) Run(ctx context.Context, cg *kafkawrapper.ConsumerGroup) error {
	return cg.Run(ctx, w.HandleBatch)
}
