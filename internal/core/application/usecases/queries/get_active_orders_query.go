package queries

import (
	"errors"

	"tableside/internal/pkg/guard"
)

var ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
	"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
)

// GetActiveOrdersQuery retrieves all orders still moving through the
// lifecycle, i.e. everything not yet completed. Dashboards load this set on
// startup and on reconnect, then stay current through channel events.
//
// Example:
//
//	query := NewGetActiveOrdersQuery()
//	handler := NewGetActiveOrdersQueryHandler(db)
//
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get active orders: %w", err)
//	}
//	fmt.Printf("%d orders in progress\n", len(orders))
type GetActiveOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetActiveOrdersQuery creates a query to retrieve in-progress orders.
// This is a parameterless query that fetches all non-completed orders.
func NewGetActiveOrdersQuery() GetActiveOrdersQuery {
	return GetActiveOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetActiveOrdersQueryIsNotConstructed if validation fails.
func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}
