package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrReportPositionCommandIsNotConstructed = errors.New(
	"ReportPositionCommand must be created via NewReportPositionCommand constructor",
)

// ReportPositionCommand carries one GPS sample from a driver's device.
// Samples are accepted as sent: the device owns their quality and cadence,
// so any numeric coordinate pair is valid.
type ReportPositionCommand struct { //nolint:recvcheck //using for validation
	driverID kernel.UUID
	position kernel.Coordinates

	guard guard.ConstructorGuard
}

// NewReportPositionCommand creates a command to record a position sample.
func NewReportPositionCommand(driverID kernel.UUID, latitude, longitude float64) (ReportPositionCommand, error) {
	reportCommand := ReportPositionCommand{
		position: kernel.NewCoordinates(latitude, longitude),
		guard:    guard.NewConstructorGuard(),
	}

	if err := reportCommand.setDriverID(driverID); err != nil {
		return ReportPositionCommand{}, err
	}

	return reportCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c ReportPositionCommand) Validate() error {
	return c.guard.Validate(ErrReportPositionCommandIsNotConstructed)
}

// DriverID returns the reporting driver's identifier.
func (c ReportPositionCommand) DriverID() kernel.UUID {
	return c.driverID
}

// Position returns the reported coordinates.
func (c ReportPositionCommand) Position() kernel.Coordinates {
	return c.position
}

func (c *ReportPositionCommand) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	c.driverID = driverID
	return nil
}
