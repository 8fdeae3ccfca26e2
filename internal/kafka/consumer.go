package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// ConsumeEvents decodes each message as a BookingEvent. Messages that do not
// decode are logged and skipped.
func (c *Consumer) ConsumeEvents(ctx context.Context, handler func(context.Context, BookingEvent) error) error {
	return c.Consume(ctx, func(ctx context.Context, msg kafka.Message) error {
		event, err := DecodeEvent(msg.Value)
		if err != nil {
			c.log.Warn("decode event failed", zap.Error(err), zap.Int64("offset", msg.Offset))
			return nil
		}
		return handler(ctx, event)
	})
}

func DecodeEvent(data []byte) (BookingEvent, error) {
	var event BookingEvent
	err := json.Unmarshal(data, &event)
	return event, err
}
