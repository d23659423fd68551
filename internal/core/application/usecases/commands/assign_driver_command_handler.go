package commands

import (
	"context"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// AssignDriverCommandHandler orchestrates order-to-driver assignment.
//
// The handler verifies that both the order and the driver exist, applies the
// assignment on the aggregate, and persists it with a conditional write keyed
// on the order still being PENDING. Two dispatchers racing over the same
// order therefore resolve to exactly one winner; the loser surfaces
// errs.ErrConcurrentUpdate and nothing of theirs is stored.
type AssignDriverCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
}

// NewAssignDriverCommandHandler creates a handler for assignment operations.
// Requires a UoWFactory because it reads the driver and writes the order in
// one transaction.
func NewAssignDriverCommandHandler(uowFactory UoWFactory, publisher ports.EventPublisher) AssignDriverCommandHandler {
	return AssignDriverCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the assignment command.
// Returns errs.ObjectNotFoundError when the order or the driver does not
// exist, order.ErrDriverAlreadyAssigned or order.ErrInvalidTransition when
// the order is past PENDING, and errs.ErrConcurrentUpdate when the
// conditional write loses a race.
func (h AssignDriverCommandHandler) Handle(ctx context.Context, cmd AssignDriverCommand) error {
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

	// The driver must exist, but nothing about them gates the assignment.
	if _, err = uow.DriverRepository().Get(ctx, cmd.DriverID()); err != nil {
		return err
	}

	if err = aggregate.Assign(cmd.DriverID()); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate, order.Pending); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.PublishOrder(aggregate)
	return nil
}
