package queries

import (
	"context"

	"tableside/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler retrieves in-progress orders from the database.
// Filters out completed orders so dashboards see only the current workload.
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveOrdersQueryHandler creates a handler for active order queries.
// Requires a GORM database connection for query execution.
func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

// Handle executes the query to retrieve all non-completed orders.
// Results are sorted oldest first, matching the order the kitchen works in.
func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT `+orderViewColumns+`
		FROM orders
		WHERE status != ?
		ORDER BY created_at, id
	`, order.Completed).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrderViews(rows)
}
