// Package realtime implements the in-process channel registry that fans
// routed order events out to live subscribers: SSE connections, the message
// broker bridges, and the snapshot cache.
//
// Membership is process-local and in-memory only. It is never persisted and
// is rebuilt from live connections after a restart; dashboards are expected
// to reconnect and resynchronize.
package realtime

import (
	"context"
	"log/slog"
	"path"
	"sync"

	"tableside/internal/core/domain/services"
)

// Subscriber receives notifications for the channel patterns it subscribed
// with. Send must not block indefinitely; a subscriber that cannot keep up
// should fail fast and let the caller drop the delivery.
type Subscriber interface {
	// ID identifies the subscriber. Subscribing the same ID to the same
	// pattern twice keeps a single registration.
	ID() string

	// Send delivers one notification. Errors are logged by the registry and
	// never affect delivery to other subscribers.
	Send(ctx context.Context, notification services.Notification) error
}

// Registry maintains subscriber sets per channel pattern and delivers
// published notifications to every matching subscriber. It implements
// ports.EventPublisher.
//
// Patterns are either literal channel names ("kitchen", "table:7") or
// wildcard patterns in path.Match syntax ("table:*", "*"). A subscriber
// registered under several matching patterns receives each notification once.
//
// All methods are safe for concurrent use.
type Registry struct {
	logger *slog.Logger

	mu sync.RWMutex
	// pattern -> subscriber ID -> subscriber
	patterns map[string]map[string]Subscriber
}

// NewRegistry creates an empty registry. A nil logger falls back to
// slog.Default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		logger:   logger,
		patterns: make(map[string]map[string]Subscriber),
	}
}

// Subscribe registers subscriber under pattern. Subscribing the same
// subscriber ID to the same pattern again is a no-op, so connection handlers
// may retry without creating duplicate deliveries.
func (r *Registry) Subscribe(pattern string, subscriber Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.patterns[pattern]
	if !ok {
		set = make(map[string]Subscriber)
		r.patterns[pattern] = set
	}

	set[subscriber.ID()] = subscriber
}

// Unsubscribe removes the subscriber from every pattern it is registered
// under. Unsubscribing an unknown subscriber is a no-op.
func (r *Registry) Unsubscribe(subscriber Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for pattern, set := range r.patterns {
		delete(set, subscriber.ID())
		if len(set) == 0 {
			delete(r.patterns, pattern)
		}
	}
}

// SubscriberCount reports how many distinct subscribers would currently
// receive a notification on the given channel.
func (r *Registry) SubscriberCount(channel string) int {
	return len(r.matching(channel))
}

// Publish delivers the notification to every subscriber whose pattern
// matches the notification's channel. A channel with no subscribers is a
// silent no-op. Delivery failures are logged per subscriber and never
// propagated: one slow or broken connection must not affect the others, and
// the mutation that produced the event is already committed.
//
// Publish always returns nil; the error return satisfies
// ports.EventPublisher.
func (r *Registry) Publish(ctx context.Context, notification services.Notification) error {
	for _, subscriber := range r.matching(notification.Channel) {
		if err := subscriber.Send(ctx, notification); err != nil {
			r.logger.WarnContext(ctx, "dropping event delivery",
				slog.String("channel", notification.Channel),
				slog.String("subscriber", subscriber.ID()),
				slog.String("event", string(notification.Event.Type)),
				slog.Any("error", err))
		}
	}

	return nil
}

// matching snapshots the distinct subscribers for a channel so delivery runs
// without holding the registry lock.
func (r *Registry) matching(channel string) map[string]Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make(map[string]Subscriber)
	for pattern, set := range r.patterns {
		if !patternMatches(pattern, channel) {
			continue
		}
		for id, subscriber := range set {
			matched[id] = subscriber
		}
	}

	return matched
}

// patternMatches reports whether a subscription pattern covers a channel
// name. Literal names compare by string equality; anything else goes through
// path.Match, which gives "table:*" and "*" the expected meaning since
// channel names never contain separators.
func patternMatches(pattern, channel string) bool {
	if pattern == channel {
		return true
	}

	ok, err := path.Match(pattern, channel)
	return err == nil && ok
}
