package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joripage/orderbook-core/config"
	kafkawrapper "github.com/joripage/orderbook-core/pkg/kafka_wrapper"
	"github.com/joripage/orderbook-core/pkg/logging"
	"github.com/joripage/orderbook-core/pkg/oms/worker"
	"go.uber.org/zap"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	level, err := logging.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(level).Named(cfg.ServiceName + ".worker")
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.NewRequestID(ctx)

	p := cfg.TradePublisher
	if p == nil || len(p.Brokers) == 0 || p.Topic == "" {
		logger.Fatal(ctx, "trade_publisher brokers and topic are required to follow trades")
	}

	c := cfg.TradeConsumer
	cg := kafkawrapper.NewConsumerGroup(kafkawrapper.ConsumerConfig{
		Brokers:      p.Brokers,
		GroupID:      c.GroupID,
		Topic:        p.Topic,
		MaxRetries:   c.MaxRetries,
		BatchSize:    c.BatchSize,
		BatchTimeout: c.BatchTimeout(),
	})
	defer cg.Close() //nolint:errcheck

	w := worker.NewWorker(logger)
	logger.Info(ctx, "following trades", zap.String("topic", p.Topic), zap.String("group_id", c.GroupID))

	if err := w.Run(ctx, cg); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "consumer stopped", zap.Error(err))
	}

	tape := w.Tape()
	logger.Info(ctx, "worker stopped",
		zap.Int("trades", tape.Trades),
		zap.String("volume", tape.Volume.String()),
		zap.Int("skipped", tape.Skipped),
	)
}
