package commands

import (
	"context"
	"time"

	"dispatch/internal/core/ports"
)

// ReportPositionCommandHandler records a driver's position sample and fans
// the fresh snapshot out to position subscribers.
//
// There is exactly one writer per driver record (the driver's own device),
// so the persistence is a plain last-write-wins update; losing an
// intermediate sample to a faster successor is acceptable by contract.
type ReportPositionCommandHandler struct {
	uowFactory DriverUoWFactory
	publisher  ports.EventPublisher
}

// NewReportPositionCommandHandler creates a handler for position reports.
func NewReportPositionCommandHandler(uowFactory DriverUoWFactory, publisher ports.EventPublisher) ReportPositionCommandHandler {
	return ReportPositionCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the position report.
// Returns errs.ObjectNotFoundError when the driver is not registered.
func (h ReportPositionCommandHandler) Handle(ctx context.Context, cmd ReportPositionCommand) error {
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

	aggregate, err := uow.DriverRepository().Get(ctx, cmd.DriverID())
	if err != nil {
		return err
	}

	if err = aggregate.ReportPosition(cmd.Position(), time.Now().UTC()); err != nil {
		return err
	}

	if err = uow.DriverRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.PublishDriver(aggregate)
	return nil
}
