package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetDriverETAQueryIsNotConstructed = errors.New(
	"GetDriverETAQuery must be created via NewGetDriverETAQuery constructor",
)

// GetDriverETAQuery computes the arrival estimate from one driver's last
// reported position to a destination, typically the delivery address the
// customer is watching.
type GetDriverETAQuery struct {
	driverID    kernel.UUID
	destination kernel.Coordinates

	guard guard.ConstructorGuard
}

// NewGetDriverETAQuery creates a query for one driver's arrival estimate.
func NewGetDriverETAQuery(driverID kernel.UUID, destination kernel.Coordinates) (GetDriverETAQuery, error) {
	if err := driverID.Validate(); err != nil {
		return GetDriverETAQuery{}, err
	}
	if err := destination.Validate(); err != nil {
		return GetDriverETAQuery{}, err
	}

	return GetDriverETAQuery{
		driverID:    driverID,
		destination: destination,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDriverETAQuery) Validate() error {
	return q.guard.Validate(ErrGetDriverETAQueryIsNotConstructed)
}

// DriverID returns the driver whose estimate is requested.
func (q GetDriverETAQuery) DriverID() kernel.UUID {
	return q.driverID
}

// Destination returns the point the estimate is computed against.
func (q GetDriverETAQuery) Destination() kernel.Coordinates {
	return q.destination
}

// ETAResponse is the read model of an arrival estimate. When Available is
// false the position was stale or never reported and ETA holds "unknown";
// the other fields are zero.
type ETAResponse struct {
	Available  bool
	DistanceKm float64
	Distance   string
	ETA        string
}
