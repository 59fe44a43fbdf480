package notify

import (
	"context"       // Context for writes
	"encoding/json" // Event encoding
	"fmt"           // Error wrapping

	"github.com/segmentio/kafka-go" // Kafka client
	"github.com/sirupsen/logrus"    // Logging library
)

// Publisher sends keyed events to a message broker
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// KafkaPublisher writes JSON events to one topic. Writes are asynchronous; delivery
// failures are logged by the writer.
type KafkaPublisher struct {
	w *kafka.Writer
}

// NewKafkaPublisher returns a publisher for topic on brokers
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:        kafka.TCP(brokers...),
		Topic:       topic,
		Balancer:    &kafka.Hash{}, // Same key, same partition
		Async:       true,
		ErrorLogger: kafka.LoggerFunc(logrus.Errorf),
	}}
}

// Publish encodes event as JSON and queues it under key
func (p *KafkaPublisher) Publish(ctx context.Context, key string, event any) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}

// Close flushes pending messages
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Discard drops every event. Used when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, string, any) error { return nil }
