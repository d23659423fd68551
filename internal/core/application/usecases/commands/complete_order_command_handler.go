package commands

import (
	"context"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// CompleteOrderCommandHandler moves an order from ACCEPTED to the terminal
// DELIVERED status on behalf of its assigned driver. Persisted as a
// conditional write keyed on the ACCEPTED status.
type CompleteOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
}

// NewCompleteOrderCommandHandler creates a handler for order completion.
func NewCompleteOrderCommandHandler(uowFactory OrderUoWFactory, publisher ports.EventPublisher) CompleteOrderCommandHandler {
	return CompleteOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the completion command.
// Returns ErrOrderNotAssignedToDriver when the acting driver is not the
// order's driver, order.ErrInvalidTransition when the order is not ACCEPTED,
// and errs.ErrConcurrentUpdate when the conditional write loses a race.
func (h CompleteOrderCommandHandler) Handle(ctx context.Context, cmd CompleteOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if aggregate.Driver() == nil || !aggregate.Driver().IsEqual(cmd.DriverID()) {
		return ErrOrderNotAssignedToDriver
	}

	if err = aggregate.Complete(); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate, order.Accepted); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.PublishOrder(aggregate)
	return nil
}
