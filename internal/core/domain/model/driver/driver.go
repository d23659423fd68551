package driver

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for driver operations.
var (
	// ErrNameIsRequired is returned when attempting to register a driver without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrDriverIsNotConstructed is returned when using an improperly initialized Driver.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver constructor")
)

// Driver represents a registered delivery driver and their last known position.
//
// The driver record is the source the Location Tracker reads from: the
// driver's own device is the only writer of the position fields, pushing a
// sample on a sensor-driven cadence, while any number of observers read them
// concurrently through snapshots. Position updates never touch order state;
// the two streams are correlated only by the driver ID at read time.
//
// Business rules:
//   - A driver must have a valid UUID and a non-empty name
//   - The position is absent until the device's first report
//   - Each report overwrites the previous position and its timestamp
//   - A driver whose reports stop beyond the staleness window is considered
//     stale; their position must be treated as unknown, never extrapolated
//   - The record is never deleted during a session
type Driver struct {
	// id uniquely identifies the driver
	id kernel.UUID
	// name is the human-readable name shown on dispatcher and customer surfaces
	name string
	// status is the informational availability flag
	status Status
	// position is the last reported location (nil until the first report)
	position *kernel.Coordinates
	// lastUpdated is the time of the last position report (zero until then)
	lastUpdated time.Time
	// guard ensures the driver was properly constructed
	guard guard.ConstructorGuard
}

// NewDriver registers a new driver with the given identity.
// The driver starts Idle with no known position.
func NewDriver(id kernel.UUID, name string) (*Driver, error) {
	driver := &Driver{
		status: Idle,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		driver.setID(id),
		driver.setName(name),
	); err != nil {
		return nil, err
	}

	return driver, nil
}

// RestoreDriver reconstructs a Driver aggregate from persistent storage,
// including its last known position and report timestamp.
func RestoreDriver(
	id kernel.UUID,
	name string,
	status Status,
	position *kernel.Coordinates,
	lastUpdated time.Time,
) (*Driver, error) {
	driver := &Driver{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		driver.setID(id),
		driver.setName(name),
		driver.setStatus(status),
		driver.setPosition(position, lastUpdated),
	); err != nil {
		return nil, err
	}

	return driver, nil
}

// Validate checks if the Driver was properly constructed via a factory method.
func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

// IsEqual compares two drivers by their unique identifiers.
func (d *Driver) IsEqual(other *Driver) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the driver's unique identifier.
func (d *Driver) ID() kernel.UUID {
	return d.id
}

// Name returns the driver's display name.
func (d *Driver) Name() string {
	return d.name
}

// Status returns the informational availability status.
func (d *Driver) Status() Status {
	return d.status
}

// Position returns the last reported position, or nil if the driver has
// never reported one.
func (d *Driver) Position() *kernel.Coordinates {
	return d.position
}

// LastUpdated returns the time of the last position report.
// The zero time means the driver has never reported a position.
func (d *Driver) LastUpdated() time.Time {
	return d.lastUpdated
}

// ReportPosition overwrites the driver's position with a fresh GPS sample.
//
// Any numeric pair is accepted; sample quality and cadence are owned by the
// device. A report from an Offline driver brings them back to Idle, since
// staleness is defined purely by report recency.
func (d *Driver) ReportPosition(position kernel.Coordinates, reportedAt time.Time) error {
	if err := position.Validate(); err != nil {
		return err
	}
	if reportedAt.IsZero() {
		return errs.NewValueIsRequiredError("reportedAt")
	}

	d.position = &position
	d.lastUpdated = reportedAt
	if d.status == Offline {
		d.status = Idle
	}
	return nil
}

// IsStale reports whether the driver's position can no longer be trusted:
// either no position was ever reported, or the last report is older than the
// staleness window. Stale positions are surfaced as unknown to the ETA
// computation rather than extrapolated.
func (d *Driver) IsStale(now time.Time, window time.Duration) bool {
	if d.position == nil || d.lastUpdated.IsZero() {
		return true
	}
	return now.Sub(d.lastUpdated) > window
}

// MarkOffline records that the driver's reports stopped beyond the staleness
// window. Purely informational; an Offline driver can still be assigned.
func (d *Driver) MarkOffline() {
	d.status = Offline
}

// setID sets the driver's unique identifier with validation.
func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	d.id = id
	return nil
}

// setName sets the driver's name with validation.
func (d *Driver) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}

	d.name = name
	return nil
}

// setStatus restores the persisted availability status.
func (d *Driver) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}

	d.status = status
	return nil
}

// setPosition restores the persisted position and report timestamp.
// Both must be present together or absent together.
func (d *Driver) setPosition(position *kernel.Coordinates, lastUpdated time.Time) error {
	if position == nil {
		if !lastUpdated.IsZero() {
			return errs.NewValueIsInvalidError("lastUpdated without position")
		}
		return nil
	}

	if err := position.Validate(); err != nil {
		return err
	}
	if lastUpdated.IsZero() {
		return errs.NewValueIsRequiredError("lastUpdated")
	}

	p := *position
	d.position = &p
	d.lastUpdated = lastUpdated
	return nil
}
