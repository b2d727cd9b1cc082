package commands

import (
	"errors"

	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/core/domain/model/order"
	"tableside/internal/pkg/errs"
	"tableside/internal/pkg/guard"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// PlaceOrderCommand represents a request to place a new order for a table.
// Encapsulates the order draft: table, items, optional customer, and payment
// terms. The order identifier is generated here so callers can correlate the
// eventual aggregate before the command is handled.
//
// Example:
//
//	table, _ := kernel.NewTableNumber(7)
//	soup, _ := order.NewItem("Soup", 120, 2)
//	payment, _ := order.NewPayment(order.PaymentCash, false)
//	cmd, err := NewPlaceOrderCommand(table, []order.Item{soup}, nil, payment)
//	if err != nil {
//	    return fmt.Errorf("invalid order draft: %w", err)
//	}
//
//	placed, err := handler.Handle(ctx, cmd)
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	tableNumber kernel.TableNumber
	items       []order.Item
	customerID  *kernel.UUID
	payment     order.Payment

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand creates a command to place a new order.
// Validates the table number, requires at least one properly constructed
// item, accepts a nil customer for anonymous QR-scan orders, and validates
// the payment terms. Returns an error if any validation fails.
func NewPlaceOrderCommand(
	tableNumber kernel.TableNumber,
	items []order.Item,
	customerID *kernel.UUID,
	payment order.Payment,
) (PlaceOrderCommand, error) {
	placeCommand := PlaceOrderCommand{
		orderID: kernel.NewUUID(),
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		placeCommand.setTableNumber(tableNumber),
		placeCommand.setItems(items),
		placeCommand.setCustomerID(customerID),
		placeCommand.setPayment(payment),
	); err != nil {
		return PlaceOrderCommand{}, err
	}

	return placeCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrPlaceOrderCommandIsNotConstructed if validation fails.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

// OrderID returns the identifier generated for the order being placed.
func (c PlaceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// TableNumber returns the table the order is placed for.
func (c PlaceOrderCommand) TableNumber() kernel.TableNumber {
	return c.tableNumber
}

// Items returns a copy of the requested order lines.
func (c PlaceOrderCommand) Items() []order.Item {
	items := make([]order.Item, len(c.items))
	copy(items, c.items)
	return items
}

// CustomerID returns the placing user's ID, nil for anonymous orders.
func (c PlaceOrderCommand) CustomerID() *kernel.UUID {
	return c.customerID
}

// Payment returns the settlement terms chosen for the order.
func (c PlaceOrderCommand) Payment() order.Payment {
	return c.payment
}

func (c *PlaceOrderCommand) setTableNumber(tableNumber kernel.TableNumber) error {
	if err := tableNumber.Validate(); err != nil {
		return err
	}

	c.tableNumber = tableNumber
	return nil
}

func (c *PlaceOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	c.items = make([]order.Item, len(items))
	copy(c.items, items)
	return nil
}

func (c *PlaceOrderCommand) setCustomerID(customerID *kernel.UUID) error {
	if customerID == nil {
		return nil
	}

	if err := customerID.Validate(); err != nil {
		return err
	}

	id := *customerID
	c.customerID = &id
	return nil
}

func (c *PlaceOrderCommand) setPayment(payment order.Payment) error {
	if err := payment.Validate(); err != nil {
		return err
	}

	c.payment = payment
	return nil
}
