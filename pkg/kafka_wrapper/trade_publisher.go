package kafkawrapper

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/joripage/orderbook-core/pkg/oms/model"
	kafka "github.com/segmentio/kafka-go"
)

const (
	headerEventType = "event_type"
	eventTypeTrade  = "trade"
	eventTypeDepth  = "depth"

	depthTopicSuffix = ".depth"
)

// TradePublisher writes trade reports to one topic, keyed by the buy order
// id so every execution of an order lands on the same partition.
type TradePublisher struct {
	producer *Producer
	topic    string
}

func NewTradePublisher(producer *Producer, topic string) *TradePublisher {
	return &TradePublisher{producer: producer, topic: topic}
}

// PublishTrades sends the reports of one book call in a single write.
func (p *TradePublisher) PublishTrades(ctx context.Context, trades []model.TradeReport) error {
	if len(trades) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(trades))
	for i := range trades {
		msg, err := encodeTradeReport(p.topic, &trades[i])
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.producer.Publish(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d trades to %s: %w", len(msgs), p.topic, err)
	}
	return nil
}

// PublishDepth sends a depth snapshot to the companion "<topic>.depth" topic.
func (p *TradePublisher) PublishDepth(ctx context.Context, depth model.Depth) error {
	return p.producer.PublishJSON(ctx, p.topic+depthTopicSuffix, eventTypeDepth, depth,
		map[string]string{headerEventType: eventTypeDepth})
}

func (p *TradePublisher) Close() error {
	return p.producer.Close()
}

func encodeTradeReport(topic string, trade *model.TradeReport) (kafka.Message, error) {
	b, err := json.Marshal(trade)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode trade %s: %w", trade.TradeID, err)
	}
	return kafka.Message{
		Topic:   topic,
		Key:     []byte(strconv.FormatUint(trade.BuyOrderID, 10)),
		Value:   b,
		Headers: []kafka.Header{{Key: headerEventType, Value: []byte(eventTypeTrade)}},
		Time:    trade.Timestamp,
	}, nil
}

// DecodeTradeReport is the inverse of the publisher's encoding.
func DecodeTradeReport(msg Message) (model.TradeReport, error) {
	var trade model.TradeReport
	if t := msg.Headers[headerEventType]; t != "" && t != eventTypeTrade {
		return trade, fmt.Errorf("unexpected event type %q", t)
	}
	if err := json.Unmarshal(msg.Value, &trade); err != nil {
		return trade, fmt.Errorf("decode trade at offset %d: %w", msg.Offset, err)
	}
	return trade, nil
}
