package order

import (
	"errors"
	"time"

	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through the NewOrder or RestoreOrder factory methods. This ensures all
// orders are properly validated.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

// Order represents a placed order in the system. It is the aggregate root that
// manages the order lifecycle from placement through kitchen preparation to
// completion.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and table number
//   - Must have at least one item; items never change after placement
//   - Status transitions follow the lifecycle state machine in Status
//   - Can only be created through NewOrder or RestoreOrder
//
// The struct uses private fields to ensure encapsulation and maintains its
// invariants through validated methods.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// tableNumber identifies the physical table; immutable after creation
	tableNumber kernel.TableNumber

	// items are the order lines, set at creation
	items []Item

	// customerID references the placing user (nil for anonymous QR-scan orders)
	customerID *kernel.UUID

	// payment holds the settlement terms chosen at placement
	payment Payment

	// status is the current state in the order lifecycle
	status Status

	// createdAt is set once when the order is placed
	createdAt time.Time

	// isConstructed ensures the order was created via a factory method
	isConstructed bool
}

// NewOrder creates a new Order in Received status with validation. This is
// the only way to place a valid order, ensuring all business invariants hold.
//
// customerID may be nil for anonymous QR-scan orders; when present it must be
// a valid UUID. createdAt is stamped with the current UTC time.
//
// Example:
//
//	table, _ := kernel.NewTableNumber(7)
//	soup, _ := order.NewItem("Soup", 100, 2)
//	payment, _ := order.NewPayment(order.PaymentCash, false)
//	o, err := order.NewOrder(kernel.NewUUID(), table, []order.Item{soup}, nil, payment)
func NewOrder(
	id kernel.UUID,
	tableNumber kernel.TableNumber,
	items []Item,
	customerID *kernel.UUID,
	payment Payment,
) (*Order, error) {
	order := &Order{
		status:        Received,
		createdAt:     time.Now().UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setTableNumber(tableNumber),
		order.setItems(items),
		order.setCustomerID(customerID),
		order.setPayment(payment),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder reconstructs an Order from persisted state. Unlike NewOrder it
// accepts any valid status and the original creation timestamp. It is used by
// repository implementations and must not be called with unvalidated input.
func RestoreOrder(
	id kernel.UUID,
	tableNumber kernel.TableNumber,
	items []Item,
	customerID *kernel.UUID,
	payment Payment,
	status Status,
	createdAt time.Time,
) (*Order, error) {
	order := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setTableNumber(tableNumber),
		order.setItems(items),
		order.setCustomerID(customerID),
		order.setPayment(payment),
		order.setStatus(status),
		order.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate ensures the Order instance was properly constructed through a
// factory method. This prevents bypassing validation by directly
// instantiating the struct.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// TableNumber returns the table the order belongs to.
func (o *Order) TableNumber() kernel.TableNumber {
	return o.tableNumber
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

// Customer returns the placing user's ID.
// Returns nil for anonymous QR-scan orders.
func (o *Order) Customer() *kernel.UUID {
	return o.customerID
}

// Payment returns the settlement terms chosen at placement.
func (o *Order) Payment() Payment {
	return o.payment
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// CreatedAt returns when the order was placed.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// ChangeStatus advances the order to the requested status.
//
// The transition must be the single legal successor of the current status;
// see Status.ValidateTransition. The method must be invoked on an aggregate
// read from the store under the same transaction that will persist the
// change, so the state machine always observes the true current status.
//
// Returns:
//   - nil on a legal transition, with the status updated
//   - *IllegalTransitionError otherwise, with the status unchanged
func (o *Order) ChangeStatus(requested Status) error {
	if err := o.status.ValidateTransition(requested); err != nil {
		return err
	}

	o.status = requested
	return nil
}

// setID validates and sets the order's unique identifier.
// This is a private method used only during construction.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setTableNumber validates and sets the order's table.
func (o *Order) setTableNumber(tableNumber kernel.TableNumber) error {
	if err := tableNumber.Validate(); err != nil {
		return err
	}
	o.tableNumber = tableNumber
	return nil
}

// setItems validates and sets the order lines. Items must be non-empty and
// each item properly constructed.
func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

// setCustomerID validates and sets the optional customer reference.
func (o *Order) setCustomerID(customerID *kernel.UUID) error {
	if customerID == nil {
		o.customerID = nil
		return nil
	}

	if err := customerID.Validate(); err != nil {
		return err
	}

	id := *customerID
	o.customerID = &id
	return nil
}

// setPayment validates and sets the payment terms.
func (o *Order) setPayment(payment Payment) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	o.payment = payment
	return nil
}

// setStatus validates and sets the status during restoration.
func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

// setCreatedAt validates and sets the creation timestamp during restoration.
func (o *Order) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	o.createdAt = createdAt
	return nil
}
