package ports

import (
	"context"

	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Updates are per-document atomic: the store applies a read-modify-write to
// exactly one order row and returns the post-write state.
type OrderRepository interface {
	// Add persists a newly placed order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order and locks its row until the enclosing
	// transaction ends. Status transitions must read through this method so
	// concurrent mutations of the same order are serialized and the state
	// machine always observes the true persisted status.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
