package commands

import (
	"context"

	"tableside/internal/core/domain/model/order"
	"tableside/internal/core/domain/services"
	"tableside/internal/core/ports"
)

// ChangeOrderStatusCommandHandler handles order lifecycle transitions.
//
// Transitions are serialized per order: the aggregate is read with a row
// lock (GetForUpdate), so when two dashboards race to advance the same order
// the second read observes the first write and the state machine rejects the
// now-illegal transition. The transition is validated against that locked
// read, persisted, and only after the commit is the status-changed event
// routed to its audience channels.
type ChangeOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	router     services.EventRouter
}

// NewChangeOrderStatusCommandHandler creates a handler for status transitions.
// Requires an OrderUoWFactory for transactional persistence and an
// EventPublisher for post-commit notification delivery.
func NewChangeOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		router:     services.NewEventRouter(),
	}
}

// Handle processes the status change command.
//
// Returns the order with its new status on success. A missing order surfaces
// as *errs.ObjectNotFoundError before any transition validation; an illegal
// transition surfaces as *order.IllegalTransitionError carrying the current
// and requested statuses. On any error the transaction rolls back and no
// event is published.
func (h *ChangeOrderStatusCommandHandler) Handle(
	ctx context.Context, cmd ChangeOrderStatusCommand,
) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	aggregate, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if err = aggregate.ChangeStatus(cmd.Status()); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	notifications, err := h.router.Route(aggregate, services.TriggerStatusChanged)
	if err != nil {
		return nil, err
	}

	for _, notification := range notifications {
		// The write is committed; subscriber-side failures are handled and
		// logged by the publisher and must not fail the transition.
		_ = h.publisher.Publish(ctx, notification)
	}

	return aggregate, nil
}
