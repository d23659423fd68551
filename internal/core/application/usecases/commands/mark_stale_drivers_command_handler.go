package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/ports"
)

// MarkStaleDriversCommandHandler sweeps the driver directory and marks every
// driver whose last position report is older than the staleness window as
// OFFLINE. The flag is informational; a driver's next report clears it.
type MarkStaleDriversCommandHandler struct {
	uowFactory      DriverUoWFactory
	publisher       ports.EventPublisher
	stalenessWindow time.Duration
}

// NewMarkStaleDriversCommandHandler creates a handler for the staleness sweep.
func NewMarkStaleDriversCommandHandler(
	uowFactory DriverUoWFactory,
	publisher ports.EventPublisher,
	stalenessWindow time.Duration,
) MarkStaleDriversCommandHandler {
	return MarkStaleDriversCommandHandler{
		uowFactory:      uowFactory,
		publisher:       publisher,
		stalenessWindow: stalenessWindow,
	}
}

// Handle processes the sweep command. Drivers already OFFLINE are skipped so
// repeated sweeps do not republish unchanged snapshots.
func (h MarkStaleDriversCommandHandler) Handle(ctx context.Context, cmd MarkStaleDriversCommand) error {
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

	drivers, err := uow.DriverRepository().GetAll(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var flipped []*driver.Driver

	for _, aggregate := range drivers {
		if aggregate.Status() == driver.Offline {
			continue
		}
		if !aggregate.IsStale(now, h.stalenessWindow) {
			continue
		}

		aggregate.MarkOffline()
		if err = uow.DriverRepository().Update(ctx, aggregate); err != nil {
			return err
		}
		flipped = append(flipped, aggregate)
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, aggregate := range flipped {
		h.publisher.PublishDriver(aggregate)
	}
	return nil
}
