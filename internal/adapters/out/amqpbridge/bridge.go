// Package amqpbridge relays routed order events to a RabbitMQ topic exchange
// so out-of-process consumers (display boards, the printer service) follow
// the same stream the in-process dashboards see. The bridge subscribes to the
// registry with the "*" pattern and uses the audience channel as the routing
// key, so a consumer binds "kitchen", "table.*" style keys as it pleases.
package amqpbridge

import (
	"context"
	"encoding/json"
	"time"

	"tableside/internal/core/domain/services"

	amqp "github.com/rabbitmq/amqp091-go"
)

const subscriberID = "amqp-bridge"

// Bridge publishes every notification it receives to a topic exchange.
// It implements the registry's Subscriber interface.
type Bridge struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Dial connects to RabbitMQ and declares the durable topic exchange the
// bridge publishes to.
func Dial(url, exchange string) (*Bridge, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err = ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Bridge{conn: conn, ch: ch, exchange: exchange}, nil
}

// ID identifies the bridge in the channel registry.
func (b *Bridge) ID() string {
	return subscriberID
}

// Send publishes the notification's event as a persistent JSON message with
// the channel name as routing key. Failures are returned to the registry,
// which logs and drops the delivery; the broker stream is best-effort like
// every other subscriber.
func (b *Bridge) Send(ctx context.Context, notification services.Notification) error {
	body, err := json.Marshal(notification.Event)
	if err != nil {
		return err
	}

	return b.ch.PublishWithContext(ctx, b.exchange, notification.Channel, false, false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			ContentType:  "application/json",
			Type:         string(notification.Event.Type),
			Body:         body,
		})
}

// Close shuts down the channel and connection.
func (b *Bridge) Close() {
	if b == nil {
		return
	}
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn != nil {
		_ = b.conn.Close()
	}
}
