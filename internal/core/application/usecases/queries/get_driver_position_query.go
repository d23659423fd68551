package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetDriverPositionQueryIsNotConstructed = errors.New(
	"GetDriverPositionQuery must be created via NewGetDriverPositionQuery constructor",
)

// GetDriverPositionQuery retrieves one driver's last known position. Used to
// seed a tracking view before its live subscription takes over.
type GetDriverPositionQuery struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetDriverPositionQuery creates a query for a single driver's position.
func NewGetDriverPositionQuery(driverID kernel.UUID) (GetDriverPositionQuery, error) {
	if err := driverID.Validate(); err != nil {
		return GetDriverPositionQuery{}, err
	}

	return GetDriverPositionQuery{
		driverID: driverID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDriverPositionQuery) Validate() error {
	return q.guard.Validate(ErrGetDriverPositionQueryIsNotConstructed)
}

// DriverID returns the driver whose position is requested.
func (q GetDriverPositionQuery) DriverID() kernel.UUID {
	return q.driverID
}
