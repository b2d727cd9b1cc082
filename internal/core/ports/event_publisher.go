package ports

import (
	"context"

	"tableside/internal/core/domain/services"
)

// EventPublisher delivers a routed notification to every subscriber of its
// audience channel.
//
// Publishing is best-effort and strictly decoupled from persistence: the
// caller invokes Publish only after the mutation's write is committed, and a
// failed delivery to one subscriber never affects other subscribers, other
// channels, or the already-committed write. Publishing to a channel with no
// subscribers is a silent no-op.
type EventPublisher interface {
	Publish(ctx context.Context, notification services.Notification) error
}
