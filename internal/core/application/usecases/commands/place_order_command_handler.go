package commands

import (
	"context"

	"tableside/internal/core/domain/model/order"
	"tableside/internal/core/domain/services"
	"tableside/internal/core/ports"
)

// PlaceOrderCommandHandler handles the business logic for placing orders.
// Persists a new order in "received" status and, once the write is committed,
// routes the created event to its audience channels.
//
// Example:
//
//	handler := NewPlaceOrderCommandHandler(uowFactory, publisher)
//	cmd, _ := NewPlaceOrderCommand(table, items, nil, payment)
//
//	placed, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order placement failed: %w", err)
//	}
//	fmt.Printf("Order %s received", placed.ID())
type PlaceOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	router     services.EventRouter
}

// NewPlaceOrderCommandHandler creates a handler for order placement.
// Requires an OrderUoWFactory for transactional persistence and an
// EventPublisher for post-commit notification delivery.
func NewPlaceOrderCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		router:     services.NewEventRouter(),
	}
}

// Handle processes the order placement command.
//
// The new aggregate starts in "received" status. Events are routed strictly
// after the transaction commits: if any step before or including the commit
// fails, nothing is published. Publish failures do not fail the command; the
// order is already durable at that point and delivery is best-effort.
func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	placed, err := order.NewOrder(
		cmd.OrderID(), cmd.TableNumber(), cmd.Items(), cmd.CustomerID(), cmd.Payment())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, placed); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	notifications, err := h.router.Route(placed, services.TriggerOrderCreated)
	if err != nil {
		return nil, err
	}

	for _, notification := range notifications {
		// The write is committed; subscriber-side failures are handled and
		// logged by the publisher and must not fail the placement.
		_ = h.publisher.Publish(ctx, notification)
	}

	return placed, nil
}
