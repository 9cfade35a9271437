package kafkax

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// NewWriter returns a writer that routes by message Topic, so one writer serves every event type.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// NewMessage builds a keyed event message with meta and trace headers.
func NewMessage(ctx context.Context, topic, key string, meta EventMeta, payload []byte) kafka.Message {
	headers := []kafka.Header{
		{Key: HeaderEventID, Value: []byte(meta.EventID)},
		{Key: HeaderEventType, Value: []byte(meta.EventType)},
	}
	return kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   payload,
		Headers: InjectTraceHeaders(ctx, headers),
	}
}
