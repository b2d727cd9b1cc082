// Package kafkabridge mirrors the management event stream to a Kafka topic
// for the analytics pipeline. By the routing policy the management channel
// sees every order event, so subscribing the bridge there captures the
// complete history without a second wildcard firehose.
package kafkabridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"tableside/internal/core/domain/services"

	"github.com/twmb/franz-go/pkg/kgo"
)

const subscriberID = "kafka-bridge"

// Bridge produces order events to a Kafka topic.
// It implements the registry's Subscriber interface.
type Bridge struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// New creates a Kafka producer for the given brokers and topic. A nil logger
// falls back to slog.Default.
func New(brokers []string, topic string, logger *slog.Logger) (*Bridge, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}

	return &Bridge{client: client, topic: topic, logger: logger}, nil
}

// ID identifies the bridge in the channel registry.
func (b *Bridge) ID() string {
	return subscriberID
}

// Send produces the event keyed by order ID, so per-order ordering survives
// partitioning. Production is asynchronous; broker errors are logged by the
// delivery callback, never surfaced to the publisher.
func (b *Bridge) Send(ctx context.Context, notification services.Notification) error {
	value, err := json.Marshal(notification.Event)
	if err != nil {
		return err
	}

	record := &kgo.Record{
		Topic: b.topic,
		Key:   []byte(notification.Event.Order.ID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(notification.Event.Type)},
			{Key: "channel", Value: []byte(notification.Channel)},
		},
		Timestamp: time.Now(),
	}

	b.client.Produce(ctx, record, func(record *kgo.Record, produceErr error) {
		if produceErr != nil {
			b.logger.Warn("kafka produce failed",
				slog.String("order_id", string(record.Key)),
				slog.Any("error", produceErr))
		}
	})

	return nil
}

// Close flushes pending records and shuts down the producer.
func (b *Bridge) Close() {
	b.client.Close()
}
