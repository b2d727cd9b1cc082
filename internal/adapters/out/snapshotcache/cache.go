// Package snapshotcache keeps the latest order snapshot per audience channel
// in Redis. It subscribes to the registry with the "*" pattern, so every
// routed event refreshes the cache, and serves the resync endpoint that
// reconnecting dashboards hit before resuming their event stream.
package snapshotcache

import (
	"context"
	"encoding/json"
	"time"

	"tableside/internal/core/domain/model/order"
	"tableside/internal/core/domain/services"

	"github.com/redis/go-redis/v9"
)

const (
	subscriberID = "snapshot-cache"
	keyPrefix    = "snapshots:"
)

// Cache stores, per channel, a hash of order ID to the last event seen for
// that order. Completed orders are evicted: a dashboard resyncing after the
// final event has nothing left to show for them.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache on the given Redis client. ttl bounds how long a stale
// channel hash survives without traffic; zero disables expiry.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// ID identifies the cache in the channel registry.
func (c *Cache) ID() string {
	return subscriberID
}

func channelKey(channel string) string {
	return keyPrefix + channel
}

// Send folds the notification into the channel's hash. Errors surface to the
// registry, which logs and drops the delivery; the cache catches up on the
// order's next event.
func (c *Cache) Send(ctx context.Context, notification services.Notification) error {
	key := channelKey(notification.Channel)

	if notification.Event.Order.Status == order.Completed.String() {
		return c.client.HDel(ctx, key, notification.Event.Order.ID).Err()
	}

	value, err := json.Marshal(notification.Event)
	if err != nil {
		return err
	}

	if err = c.client.HSet(ctx, key, notification.Event.Order.ID, value).Err(); err != nil {
		return err
	}

	if c.ttl > 0 {
		return c.client.Expire(ctx, key, c.ttl).Err()
	}

	return nil
}

// Latest returns the last cached event per active order on a channel. The
// result is unordered; dashboards sort by the snapshot's creation time.
func (c *Cache) Latest(ctx context.Context, channel string) ([]services.Event, error) {
	entries, err := c.client.HGetAll(ctx, channelKey(channel)).Result()
	if err != nil {
		return nil, err
	}

	events := make([]services.Event, 0, len(entries))
	for _, raw := range entries {
		var event services.Event
		if err = json.Unmarshal([]byte(raw), &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}
