package http

import (
	"encoding/json"
	"net/http"
	"time"

	"tableside/internal/adapters/out/realtime"
	"tableside/internal/adapters/out/snapshotcache"
	"tableside/internal/core/domain/services"

	"github.com/labstack/echo/v4"
)

// subscriberBuffer is how many undelivered events one connection may lag
// behind before deliveries to it are dropped.
const subscriberBuffer = 64

// keepaliveInterval paces SSE comment lines that keep idle connections from
// being reaped by proxies.
const keepaliveInterval = 15 * time.Second

// StreamServer serves the dashboard-facing event streams: a server-sent
// events endpoint whose connection lifecycle drives registry membership, and
// a snapshot endpoint reconnecting dashboards hit to resynchronize before
// resuming the stream.
type StreamServer struct {
	registry *realtime.Registry
	cache    *snapshotcache.Cache
}

// NewStreamServer creates the stream endpoints on the given registry.
// cache may be nil when no snapshot store is configured; the snapshot
// endpoint then reports the feature unavailable.
func NewStreamServer(registry *realtime.Registry, cache *snapshotcache.Cache) *StreamServer {
	return &StreamServer{registry: registry, cache: cache}
}

// RegisterRoutes attaches the stream routes to the echo instance.
func (s *StreamServer) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.GET("/streams/:channel", s.Stream)
	api.GET("/streams/:channel/snapshot", s.Snapshot)
}

// Stream handles GET /api/v1/streams/:channel - a server-sent events
// subscription to one audience channel. The subscriber is registered for the
// lifetime of the connection and removed from the registry when the client
// disconnects; missed events are not replayed.
func (s *StreamServer) Stream(ctx echo.Context) error {
	channel := ctx.Param("channel")
	if !services.IsAudienceChannel(channel) {
		return badRequest(ctx, "Unknown channel: "+channel)
	}

	subscriber := realtime.NewChannelSubscriber(subscriberBuffer)
	s.registry.Subscribe(channel, subscriber)
	defer func() {
		s.registry.Unsubscribe(subscriber)
		subscriber.Close()
	}()

	response := ctx.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set(echo.HeaderCacheControl, "no-cache")
	response.Header().Set(echo.HeaderConnection, "keep-alive")
	response.WriteHeader(http.StatusOK)
	response.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	requestDone := ctx.Request().Context().Done()
	for {
		select {
		case <-requestDone:
			return nil

		case <-keepalive.C:
			if _, err := response.Write([]byte(": keepalive\n\n")); err != nil {
				return nil
			}
			response.Flush()

		case notification := <-subscriber.Events():
			if err := writeEvent(response, notification); err != nil {
				return nil
			}
			response.Flush()
		}
	}
}

// writeEvent emits one notification in SSE framing, typed by the event's
// wire discriminator.
func writeEvent(response *echo.Response, notification services.Notification) error {
	data, err := json.Marshal(notification.Event)
	if err != nil {
		return err
	}

	if _, err = response.Write([]byte("event: " + string(notification.Event.Type) + "\n")); err != nil {
		return err
	}
	if _, err = response.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err = response.Write(data); err != nil {
		return err
	}
	_, err = response.Write([]byte("\n\n"))
	return err
}

// Snapshot handles GET /api/v1/streams/:channel/snapshot - the latest cached
// event per active order on the channel, for dashboards resynchronizing
// after a reconnect.
func (s *StreamServer) Snapshot(ctx echo.Context) error {
	channel := ctx.Param("channel")
	if !services.IsAudienceChannel(channel) {
		return badRequest(ctx, "Unknown channel: "+channel)
	}

	if s.cache == nil {
		return ctx.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Code:    http.StatusServiceUnavailable,
			Message: "Snapshot cache is not configured",
		})
	}

	events, err := s.cache.Latest(ctx.Request().Context(), channel)
	if err != nil {
		return internalError(ctx, "Failed to load channel snapshot")
	}

	return ctx.JSON(http.StatusOK, events)
}
