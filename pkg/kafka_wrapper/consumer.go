package kafkawrapper

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Time      time.Time
	Headers   map[string]string
}

type ConsumerConfig struct {
	Brokers    []string
	GroupID    string
	Topic      string
	MaxRetries int
	BackoffMin time.Duration
	BackoffMax time.Duration
	// Batch options
	BatchSize    int           // max messages per handler call
	BatchTimeout time.Duration // max time to wait for a batch to fill
}

// messageReader is the part of *kafka.Reader the consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerGroup reads a topic in batches. A batch is committed once the
// handler accepts it or retries are exhausted.
type ConsumerGroup struct {
	r   messageReader
	cfg ConsumerConfig
}

func NewConsumerGroup(cfg ConsumerConfig) *ConsumerGroup {
	rd := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MaxWait:     500 * time.Millisecond,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	})
	return newConsumerGroup(rd, cfg)
}

func newConsumerGroup(r messageReader, cfg ConsumerConfig) *ConsumerGroup {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BackoffMin == 0 {
		cfg.BackoffMin = 100 * time.Millisecond
	}
	if cfg.BackoffMax == 0 {
		cfg.BackoffMax = 10 * time.Second
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 200 * time.Millisecond
	}
	return &ConsumerGroup{r: r, cfg: cfg}
}

func (cg *ConsumerGroup) Close() error {
	if cg == nil || cg.r == nil {
		return nil
	}
	return cg.r.Close()
}

// Run delivers batches to handler in offset order until ctx is done.
func (cg *ConsumerGroup) Run(ctx context.Context, handler func(context.Context, []Message) error) error {
	if cg == nil || cg.r == nil {
		return errors.New("consumer not initialized")
	}

	for {
		batch, err := cg.fetchBatch(ctx)
		if len(batch) > 0 {
			if herr := cg.handle(ctx, batch, handler); herr != nil {
				return herr
			}
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return fmt.Errorf("fetch error: %w", err)
		}
	}
}

// fetchBatch blocks for the first message, then collects up to BatchSize
// messages until BatchTimeout has passed since the first one.
func (cg *ConsumerGroup) fetchBatch(ctx context.Context) ([]kafka.Message, error) {
	first, err := cg.r.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	return cg.fillBatch(ctx, []kafka.Message{first})
}

func (cg *ConsumerGroup) fillBatch(ctx context.Context, buf []kafka.Message) ([]kafka.Message, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, cg.cfg.BatchTimeout)
	defer cancel()

	for len(buf) < cg.cfg.BatchSize {
		m, err := cg.r.FetchMessage(fetchCtx)
		if err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				return buf, nil
			}
			return buf, err
		}
		buf = append(buf, m)
	}
	return buf, nil
}

func (cg *ConsumerGroup) handle(ctx context.Context, ms []kafka.Message, handler func(context.Context, []Message) error) error {
	wrapped := make([]Message, len(ms))
	for i, m := range ms {
		wrapped[i] = wrapMessage(m)
	}

	for attempt := 1; ; attempt++ {
		if err := handler(ctx, wrapped); err == nil || attempt > cg.cfg.MaxRetries {
			// give up on a poison batch rather than stall the partition
			return cg.r.CommitMessages(ctx, ms...)
		}
		select {
		case <-time.After(backoffDuration(cg.cfg.BackoffMin, cg.cfg.BackoffMax, attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func wrapMessage(m kafka.Message) Message {
	return Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Time:      m.Time,
		Headers:   headersToMap(m.Headers),
	}
}

func backoffDuration(min, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	pow := math.Pow(2, float64(attempt-1))
	d := time.Duration(float64(min) * pow)
	if d > max {
		d = max
	}
	if d > 0 {
		d = time.Duration(rand.Int63n(int64(d)))
	}
	return d
}
