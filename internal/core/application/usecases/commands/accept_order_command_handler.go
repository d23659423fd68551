package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// ErrOrderNotAssignedToDriver is returned when a driver tries to act on an
// order that is assigned to somebody else (or to nobody).
var ErrOrderNotAssignedToDriver = errors.New("order is not assigned to this driver")

// AcceptOrderCommandHandler moves an order from ASSIGNED to ACCEPTED on
// behalf of its assigned driver. Persisted as a conditional write keyed on
// the ASSIGNED status so a concurrent transition cannot be overwritten.
type AcceptOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
}

// NewAcceptOrderCommandHandler creates a handler for order acceptance.
func NewAcceptOrderCommandHandler(uowFactory OrderUoWFactory, publisher ports.EventPublisher) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the acceptance command.
// Returns ErrOrderNotAssignedToDriver when the acting driver is not the
// order's driver, order.ErrInvalidTransition when the order is not ASSIGNED,
// and errs.ErrConcurrentUpdate when the conditional write loses a race.
func (h AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) error {
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

	if err = aggregate.Accept(); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate, order.Assigned); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.PublishOrder(aggregate)
	return nil
}
