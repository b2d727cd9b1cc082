package commands

import (
	"errors"

	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/core/domain/model/order"
	"tableside/internal/pkg/guard"
)

var ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
	"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
)

// ChangeOrderStatusCommand represents a request to advance an order to the
// next stage of its lifecycle. The requested status must name a known
// lifecycle stage; whether the transition is legal from the order's current
// status is decided by the aggregate inside the handler's transaction.
type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	status  order.Status

	guard guard.ConstructorGuard
}

// NewChangeOrderStatusCommand creates a command to change an order's status.
// Validates that the order ID is valid and the status is a known lifecycle
// stage. Returns an error if any validation fails.
func NewChangeOrderStatusCommand(orderID kernel.UUID, status order.Status) (ChangeOrderStatusCommand, error) {
	statusCommand := ChangeOrderStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		statusCommand.setOrderID(orderID),
		statusCommand.setStatus(status),
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return statusCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrChangeOrderStatusCommandIsNotConstructed if validation fails.
func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to mutate.
func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Status returns the requested target status.
func (c ChangeOrderStatusCommand) Status() order.Status {
	return c.status
}

func (c *ChangeOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ChangeOrderStatusCommand) setStatus(status order.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}

	c.status = status
	return nil
}
