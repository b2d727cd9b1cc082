package queries

import (
	"errors"

	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/pkg/guard"
)

var ErrGetTableOrdersQueryIsNotConstructed = errors.New(
	"GetTableOrdersQuery must be created via NewGetTableOrdersQuery constructor",
)

// GetTableOrdersQuery retrieves the orders placed for a single table. The
// table dashboard loads this on connect so a guest re-scanning the QR code
// sees their earlier orders too.
type GetTableOrdersQuery struct { //nolint:recvcheck //using for validation
	tableNumber kernel.TableNumber

	guard guard.ConstructorGuard
}

// NewGetTableOrdersQuery creates a query for one table's orders.
// Validates the table number. Returns an error if validation fails.
func NewGetTableOrdersQuery(tableNumber kernel.TableNumber) (GetTableOrdersQuery, error) {
	tableQuery := GetTableOrdersQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := tableQuery.setTableNumber(tableNumber); err != nil {
		return GetTableOrdersQuery{}, err
	}

	return tableQuery, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetTableOrdersQueryIsNotConstructed if validation fails.
func (q GetTableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetTableOrdersQueryIsNotConstructed)
}

// TableNumber returns the table whose orders are requested.
func (q GetTableOrdersQuery) TableNumber() kernel.TableNumber {
	return q.tableNumber
}

func (q *GetTableOrdersQuery) setTableNumber(tableNumber kernel.TableNumber) error {
	if err := tableNumber.Validate(); err != nil {
		return err
	}

	q.tableNumber = tableNumber
	return nil
}
