package realtime

import (
	"context"
	"errors"
	"sync"

	"tableside/internal/core/domain/services"

	"github.com/google/uuid"
)

var (
	// ErrSubscriberClosed is returned by Send after Close has been called.
	ErrSubscriberClosed = errors.New("subscriber is closed")

	// ErrSubscriberLagging is returned by Send when the subscriber's buffer
	// is full. The delivery is dropped; the consumer resynchronizes via the
	// snapshot endpoint like any reconnecting dashboard.
	ErrSubscriberLagging = errors.New("subscriber buffer is full")
)

// ChannelSubscriber adapts a buffered Go channel to the Subscriber interface.
// Connection handlers create one per live connection, register it with the
// registry, and drain Events into the wire.
type ChannelSubscriber struct {
	id        string
	events    chan services.Notification
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelSubscriber creates a subscriber with the given buffer capacity.
// Each subscriber gets a unique ID, so every connection is its own
// registration even when one dashboard opens several.
func NewChannelSubscriber(buffer int) *ChannelSubscriber {
	return &ChannelSubscriber{
		id:     uuid.NewString(),
		events: make(chan services.Notification, buffer),
		done:   make(chan struct{}),
	}
}

// ID returns the subscriber's unique identifier.
func (s *ChannelSubscriber) ID() string {
	return s.id
}

// Events returns the channel the connection handler drains.
func (s *ChannelSubscriber) Events() <-chan services.Notification {
	return s.events
}

// Done is closed when the subscriber is closed.
func (s *ChannelSubscriber) Done() <-chan struct{} {
	return s.done
}

// Send enqueues the notification without blocking. A full buffer means the
// consumer stopped draining; the event is dropped and the consumer is
// expected to resynchronize from current state.
func (s *ChannelSubscriber) Send(_ context.Context, notification services.Notification) error {
	select {
	case <-s.done:
		return ErrSubscriberClosed
	default:
	}

	select {
	case s.events <- notification:
		return nil
	default:
		return ErrSubscriberLagging
	}
}

// Close marks the subscriber as closed. Safe to call more than once. The
// events channel stays open so a concurrent Send never panics; consumers
// select on Done to stop draining.
func (s *ChannelSubscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
