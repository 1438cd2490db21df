package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	ServiceName    string                `yaml:"service_name"`
	LogLevel       string                `yaml:"log_level"`
	Book           BookConfig            `yaml:"book"`
	TradePublisher *TradePublisherConfig `yaml:"trade_publisher"`
	TradeConsumer  TradeConsumerConfig   `yaml:"trade_consumer"`
	Benchmark      BenchmarkConfig       `yaml:"benchmark"`
}

// BookConfig holds prices as decimal strings so they survive yaml untouched.
type BookConfig struct {
	TickSize    string           `yaml:"tick_size"`
	MaxQuantity int64            `yaml:"max_quantity"` // 0 = no limit
	PriceFloor  string           `yaml:"price_floor"`
	PriceCeil   string           `yaml:"price_ceil"`
	TickBands   []TickBandConfig `yaml:"tick_bands"`
}

type TickBandConfig struct {
	MaxPrice string `yaml:"max_price"` // empty = no limit
	Step     string `yaml:"step"`
}

type TradePublisherConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Brokers        []string `yaml:"brokers"`
	Topic          string   `yaml:"topic"`
	BatchSize      int      `yaml:"batch_size"`
	BatchTimeoutMs int      `yaml:"batch_timeout_ms"`
}

// TradeConsumerConfig reads the topic the publisher writes to.
type TradeConsumerConfig struct {
	GroupID        string `yaml:"group_id"`
	MaxRetries     int    `yaml:"max_retries"`
	BatchSize      int    `yaml:"batch_size"`
	BatchTimeoutMs int    `yaml:"batch_timeout_ms"`
}

type BenchmarkConfig struct {
	NumOrders int     `yaml:"num_orders"`
	MinPrice  string  `yaml:"min_price"`
	MaxPrice  string  `yaml:"max_price"`
	MaxQty    int64   `yaml:"max_qty"`
	FakRatio  float64 `yaml:"fak_ratio"`
	Seed      int64   `yaml:"seed"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := Default()

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		sugar.Errorw("Invalid config", "error", err)
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}

// Default is used as the base that the yaml file overrides.
func Default() *AppConfig {
	return &AppConfig{
		ServiceName: "orderbook",
		LogLevel:    "info",
		Book: BookConfig{
			TickSize: "0.01",
		},
		TradeConsumer: TradeConsumerConfig{
			GroupID:    "orderbook-trade-tape",
			MaxRetries: 3,
		},
		Benchmark: BenchmarkConfig{
			NumOrders: 100_000,
			MinPrice:  "99.00",
			MaxPrice:  "101.00",
			MaxQty:    100,
			FakRatio:  0.1,
			Seed:      1,
		},
	}
}

func (c *AppConfig) Validate() error {
	var errs []error

	tick, err := c.Book.TickSizeDecimal()
	if err != nil {
		errs = append(errs, err)
	} else if !tick.IsPositive() {
		errs = append(errs, fmt.Errorf("book.tick_size must be positive, got %s", tick))
	}
	if c.Book.MaxQuantity < 0 {
		errs = append(errs, errors.New("book.max_quantity must not be negative"))
	}
	for _, s := range []string{c.Book.PriceFloor, c.Book.PriceCeil} {
		if _, err := parseOptional(s); err != nil {
			errs = append(errs, fmt.Errorf("book price limit: %w", err))
		}
	}
	for i, b := range c.Book.TickBands {
		if _, err := decimal.NewFromString(b.Step); err != nil {
			errs = append(errs, fmt.Errorf("book.tick_bands[%d].step: %w", i, err))
		}
		if _, err := parseOptional(b.MaxPrice); err != nil {
			errs = append(errs, fmt.Errorf("book.tick_bands[%d].max_price: %w", i, err))
		}
	}

	if p := c.TradePublisher; p != nil && p.Enabled {
		if len(p.Brokers) == 0 {
			errs = append(errs, errors.New("trade_publisher.brokers is required when enabled"))
		}
		if p.Topic == "" {
			errs = append(errs, errors.New("trade_publisher.topic is required when enabled"))
		}
	}

	b := c.Benchmark
	if b.NumOrders < 0 || b.MaxQty < 0 {
		errs = append(errs, errors.New("benchmark sizes must not be negative"))
	}
	if b.FakRatio < 0 || b.FakRatio > 1 {
		errs = append(errs, fmt.Errorf("benchmark.fak_ratio must be in [0, 1], got %v", b.FakRatio))
	}

	return errors.Join(errs...)
}

func (b BookConfig) TickSizeDecimal() (decimal.Decimal, error) {
	tick, err := decimal.NewFromString(b.TickSize)
	if err != nil {
		return decimal.Zero, fmt.Errorf("book.tick_size: %w", err)
	}
	return tick, nil
}

// PriceLimits returns the configured floor and ceil, zero when unset.
func (b BookConfig) PriceLimits() (floor, ceil decimal.Decimal) {
	floor, _ = parseOptional(b.PriceFloor)
	ceil, _ = parseOptional(b.PriceCeil)
	return floor, ceil
}

func (p *TradePublisherConfig) BatchTimeout() time.Duration {
	return time.Duration(p.BatchTimeoutMs) * time.Millisecond
}

func (c TradeConsumerConfig) BatchTimeout() time.Duration {
	return time.Duration(c.BatchTimeoutMs) * time.Millisecond
}

func parseOptional(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
