package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetTableOrdersQueryHandler retrieves one table's orders from the database.
type GetTableOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetTableOrdersQueryHandler creates a handler for per-table order queries.
// Requires a GORM database connection for query execution.
func NewGetTableOrdersQueryHandler(db *gorm.DB) GetTableOrdersQueryHandler {
	return GetTableOrdersQueryHandler{db: db}
}

// Handle executes the query to retrieve every order for the given table,
// newest first. Completed orders are included so the table sees its full
// visit history.
func (h GetTableOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetTableOrdersQuery,
) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT `+orderViewColumns+`
		FROM orders
		WHERE table_number = ?
		ORDER BY created_at DESC, id
	`, query.TableNumber().Value()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrderViews(rows)
}
