// Package queries contains read-only operations for retrieving system state.
// Implements the Query side of the CQRS architecture: handlers read the
// database directly and return flat view models, bypassing the aggregate
// construction that write operations require.
package queries

import (
	"database/sql"
	"encoding/json"
	"time"

	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// ItemView is one order line as read models expose it.
type ItemView struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// OrderView is the flat read model of an order row.
// CustomerID is nil for anonymous QR-scan orders.
type OrderView struct {
	ID            kernel.UUID
	TableNumber   int
	Items         []ItemView
	CustomerID    *kernel.UUID
	Status        order.Status
	PaymentMethod string
	PaymentPaid   bool
	CreatedAt     time.Time
}

// orderViewColumns is the select list scanOrderViews expects, in order.
const orderViewColumns = `
	id,
	table_number,
	items,
	customer_id,
	status,
	payment_method,
	payment_paid,
	created_at
`

// scanOrderViews drains rows selected with orderViewColumns into view models.
func scanOrderViews(rows *sql.Rows) ([]OrderView, error) {
	views := make([]OrderView, 0)

	for rows.Next() {
		var (
			view       OrderView
			id         uuid.UUID
			customerID uuid.NullUUID
			itemsJSON  []byte
		)

		if err := rows.Scan(
			&id,
			&view.TableNumber,
			&itemsJSON,
			&customerID,
			&view.Status,
			&view.PaymentMethod,
			&view.PaymentPaid,
			&view.CreatedAt,
		); err != nil {
			return nil, err
		}

		orderID, err := kernel.UUIDFromBytes(id[:])
		if err != nil {
			return nil, err
		}
		view.ID = orderID

		if customerID.Valid {
			cID, cErr := kernel.UUIDFromBytes(customerID.UUID[:])
			if cErr != nil {
				return nil, cErr
			}
			view.CustomerID = &cID
		}

		if err = json.Unmarshal(itemsJSON, &view.Items); err != nil {
			return nil, err
		}

		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return views, nil
}
