// Package orderrepo implements order aggregate persistence on PostgreSQL.
// It handles the conversion between the order domain aggregate and its
// relational representation; order lines are stored denormalized in a jsonb
// column since they are immutable after placement and never queried alone.
package orderrepo

import (
	"time"

	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Indexed by table number for the per-table order listing and by status for
// the active-order and backlog queries.
type OrderDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TableNumber int        `gorm:"index"`
	Items       []ItemDTO  `gorm:"type:jsonb;serializer:json"`
	CustomerID  *uuid.UUID `gorm:"type:uuid;index"`
	Status      int        `gorm:"index"`
	Payment     PaymentDTO `gorm:"embedded;embeddedPrefix:payment_"`
	CreatedAt   time.Time
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO is one order line inside the jsonb items column. The JSON field
// names match the wire format so read models can decode the column directly.
type ItemDTO struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// PaymentDTO represents the embedded payment terms within the order table.
type PaymentDTO struct {
	Method string
	Paid   bool
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var customerID *uuid.UUID
	if id := aggregate.Customer(); id != nil {
		raw := id.Bytes()
		customerID = &raw
	}

	items := make([]ItemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, ItemDTO{
			Name:     item.Name(),
			Price:    item.Price(),
			Quantity: item.Quantity(),
		})
	}

	return OrderDTO{
		ID:          aggregate.ID().Bytes(),
		TableNumber: aggregate.TableNumber().Value(),
		Items:       items,
		CustomerID:  customerID,
		Status:      int(aggregate.Status()),
		Payment: PaymentDTO{
			Method: string(aggregate.Payment().Method()),
			Paid:   aggregate.Payment().Paid(),
		},
		CreatedAt: aggregate.CreatedAt(),
	}
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including status and creation time
// using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	tableNumber, err := kernel.NewTableNumber(dto.TableNumber)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := order.NewItem(itemDTO.Name, itemDTO.Price, itemDTO.Quantity)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	var customerID *kernel.UUID
	if dto.CustomerID != nil {
		cID, customerErr := kernel.UUIDFromBytes((*dto.CustomerID)[:])
		if customerErr != nil {
			return nil, customerErr
		}

		customerID = &cID
	}

	payment, err := order.NewPayment(order.PaymentMethod(dto.Payment.Method), dto.Payment.Paid)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id, tableNumber, items, customerID, payment,
		order.Status(dto.Status), dto.CreatedAt)
}
