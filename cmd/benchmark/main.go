package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joripage/orderbook-core/config"
	kafkawrapper "github.com/joripage/orderbook-core/pkg/kafka_wrapper"
	"github.com/joripage/orderbook-core/pkg/logging"
	"github.com/joripage/orderbook-core/pkg/oms"
	"github.com/joripage/orderbook-core/pkg/oms/model"
	kafka "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type workload struct {
	rng      *rand.Rand
	cfg      config.BenchmarkConfig
	minTicks int64
	maxTicks int64
	tick     decimal.Decimal
	live     []uint64
	nextID   uint64
}

func newWorkload(cfg config.BenchmarkConfig, tick decimal.Decimal) (*workload, error) {
	minPrice, err := decimal.NewFromString(cfg.MinPrice)
	if err != nil {
		return nil, fmt.Errorf("benchmark.min_price: %w", err)
	}
	maxPrice, err := decimal.NewFromString(cfg.MaxPrice)
	if err != nil {
		return nil, fmt.Errorf("benchmark.max_price: %w", err)
	}
	w := &workload{
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		cfg:      cfg,
		minTicks: minPrice.Div(tick).Ceil().IntPart(),
		maxTicks: maxPrice.Div(tick).Floor().IntPart(),
		tick:     tick,
	}
	if w.minTicks < 1 || w.maxTicks < w.minTicks {
		return nil, errors.New("benchmark price range is empty")
	}
	if cfg.MaxQty < 1 {
		return nil, errors.New("benchmark.max_qty must be positive")
	}
	return w, nil
}

func (w *workload) side() model.OrderSide {
	if w.rng.Intn(2) == 0 {
		return model.OrderSideSell
	}
	return model.OrderSideBuy
}

func (w *workload) price() decimal.Decimal {
	ticks := w.minTicks + w.rng.Int63n(w.maxTicks-w.minTicks+1)
	return w.tick.Mul(decimal.NewFromInt(ticks))
}

func (w *workload) qty() decimal.Decimal {
	return decimal.NewFromInt(w.rng.Int63n(w.cfg.MaxQty) + 1)
}

func (w *workload) newOrder() *model.AddOrder {
	w.nextID++
	tif := model.OrderTimeInForceGTC
	if w.rng.Float64() < w.cfg.FakRatio {
		tif = model.OrderTimeInForceIOC
	} else {
		w.live = append(w.live, w.nextID)
	}
	return &model.AddOrder{
		OrderID:      w.nextID,
		ClOrdID:      fmt.Sprintf("ORD-%08d", w.nextID),
		Side:         w.side(),
		TimeInForce:  tif,
		Price:        w.price(),
		Quantity:     w.qty(),
		TransactTime: time.Now(),
	}
}

// pick returns a previously submitted GTC id; it may have traded away since.
func (w *workload) pick() (uint64, bool) {
	if len(w.live) == 0 {
		return 0, false
	}
	i := w.rng.Intn(len(w.live))
	id := w.live[i]
	w.live[i] = w.live[len(w.live)-1]
	w.live = w.live[:len(w.live)-1]
	return id, true
}

type result struct {
	added, cancels, modifies int
	rejected, notFound       int
}

func run(ctx context.Context, s *oms.OMS, w *workload, logger *logging.Logger) result {
	var res result
	for i := 0; i < w.cfg.NumOrders; i++ {
		var err error
		switch r := w.rng.Intn(100); {
		case r < 5:
			if id, ok := w.pick(); ok {
				res.cancels++
				err = s.CancelOrder(ctx, &model.CancelOrder{OrderID: id, ClOrdID: fmt.Sprintf("CXL-%08d", i)})
			}
		case r < 10:
			if id, ok := w.pick(); ok {
				res.modifies++
				_, err = s.ModifyOrder(ctx, &model.ModifyOrder{
					OrderID:     id,
					ClOrdID:     fmt.Sprintf("MOD-%08d", i),
					Side:        w.side(),
					NewPrice:    w.price(),
					NewQuantity: w.qty(),
				})
				if err == nil {
					w.live = append(w.live, id)
				}
			}
		default:
			res.added++
			_, err = s.AddOrder(ctx, w.newOrder())
		}

		if err != nil {
			if oms.IsOrderNotFound(err) {
				res.notFound++
				continue
			}
			res.rejected++
			if res.rejected <= 5 {
				logger.Warn(ctx, "request rejected", zap.Error(err))
			}
		}
	}
	return res
}

func main() {
	configFile := flag.String("config-file", "", "path to the yaml config, defaults to $CONFIG_FILE")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	level, err := logging.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(level).Named(cfg.ServiceName)
	defer logger.Sync() //nolint:errcheck

	ctx := logging.NewRequestID(context.Background())

	tick, err := cfg.Book.TickSizeDecimal()
	if err != nil {
		logger.Fatal(ctx, "invalid tick size", zap.Error(err))
	}
	ticks, err := model.NewTickConverter(tick)
	if err != nil {
		logger.Fatal(ctx, "invalid tick size", zap.Error(err))
	}
	rules, err := cfg.Book.RiskRules()
	if err != nil {
		logger.Fatal(ctx, "invalid risk rules", zap.Error(err))
	}

	opts := []oms.Option{oms.WithLogger(logger), oms.WithRiskRules(rules...)}
	var publisher *kafkawrapper.TradePublisher
	if p := cfg.TradePublisher; p != nil && p.Enabled {
		producer := kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{
			Brokers:      p.Brokers,
			BatchSize:    p.BatchSize,
			BatchTimeout: p.BatchTimeout(),
			RequiredAcks: kafka.RequireOne,
			Async:        true,
		})
		publisher = kafkawrapper.NewTradePublisher(producer, p.Topic)
		defer publisher.Close() //nolint:errcheck
		opts = append(opts, oms.WithTradeSink(publisher))
		logger.Info(ctx, "publishing trades", zap.Strings("brokers", p.Brokers), zap.String("topic", p.Topic))
	}
	s := oms.NewOMS(ticks, opts...)

	w, err := newWorkload(cfg.Benchmark, tick)
	if err != nil {
		logger.Fatal(ctx, "invalid benchmark config", zap.Error(err))
	}

	start := time.Now()
	res := run(ctx, s, w, logger)
	elapsed := time.Since(start)

	matchCount, matchQty := s.Stats()
	depth := s.Depth()
	top := func(levels []model.PriceLevel) string {
		if len(levels) == 0 {
			return "-"
		}
		return levels[0].Quantity.String() + " @ " + levels[0].Price.String()
	}

	logger.Info(ctx, "benchmark finished",
		zap.Int("requests", cfg.Benchmark.NumOrders),
		zap.Int("added", res.added),
		zap.Int("cancels", res.cancels),
		zap.Int("modifies", res.modifies),
		zap.Int("rejected", res.rejected),
		zap.Int("not_found", res.notFound),
		zap.Uint64("matches", matchCount),
		zap.Uint64("matched_qty", matchQty),
		zap.Int("resting", s.Size()),
		zap.Int("events", s.EventCount()),
		zap.Int("bid_levels", len(depth.Bids)),
		zap.Int("ask_levels", len(depth.Asks)),
		zap.Duration("elapsed", elapsed),
	)

	if publisher != nil {
		if err := publisher.PublishDepth(ctx, depth); err != nil {
			logger.Warn(ctx, "publish depth failed", zap.Error(err))
		}
	}

	fmt.Println("--------")
	fmt.Printf("Total Requests   : %d\n", cfg.Benchmark.NumOrders)
	fmt.Printf("Total Matches    : %d\n", matchCount)
	fmt.Printf("Total Matched Qty: %d\n", matchQty)
	fmt.Printf("Resting Orders   : %d\n", s.Size())
	fmt.Printf("Recorded Events  : %d\n", s.EventCount())
	fmt.Printf("Best Bid         : %s\n", top(depth.Bids))
	fmt.Printf("Best Ask         : %s\n", top(depth.Asks))
	fmt.Printf("Time Taken       : %s\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("Throughput       : %.0f req/s\n", float64(cfg.Benchmark.NumOrders)/elapsed.Seconds())
	}
}
