package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetDriverETAQueryHandler restores the driver from the read store and runs
// the domain estimator against it.
type GetDriverETAQueryHandler struct {
	db        *gorm.DB
	estimator services.ETAEstimator
}

// NewGetDriverETAQueryHandler creates a handler for arrival estimates.
func NewGetDriverETAQueryHandler(db *gorm.DB, estimator services.ETAEstimator) GetDriverETAQueryHandler {
	return GetDriverETAQueryHandler{db: db, estimator: estimator}
}

// Handle executes the estimate.
// Returns errs.ObjectNotFoundError when the driver is not registered.
func (h GetDriverETAQueryHandler) Handle(ctx context.Context, query GetDriverETAQuery) (ETAResponse, error) {
	if err := query.Validate(); err != nil {
		return ETAResponse{}, err
	}

	var (
		name        string
		status      int
		latitude    sql.NullFloat64
		longitude   sql.NullFloat64
		lastUpdated sql.NullTime
	)

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			name,
			status,
			latitude,
			longitude,
			last_updated
		FROM drivers
		WHERE id = ?
	`, query.DriverID().String()).Row()

	err := row.Scan(&name, &status, &latitude, &longitude, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return ETAResponse{}, errs.NewObjectNotFoundError("driverID", query.DriverID())
	}
	if err != nil {
		return ETAResponse{}, err
	}

	var (
		position *kernel.Coordinates
		updated  time.Time
	)
	if latitude.Valid && longitude.Valid && lastUpdated.Valid {
		coords := kernel.NewCoordinates(latitude.Float64, longitude.Float64)
		position = &coords
		updated = lastUpdated.Time
	}

	aggregate, err := driver.RestoreDriver(query.DriverID(), name, driver.Status(status), position, updated)
	if err != nil {
		return ETAResponse{}, err
	}

	estimate, err := h.estimator.Estimate(aggregate, query.Destination(), time.Now().UTC())
	if err != nil {
		return ETAResponse{}, err
	}

	return ETAResponse{
		Available:  estimate.Available,
		DistanceKm: estimate.DistanceKm,
		Distance:   estimate.Distance,
		ETA:        estimate.ETA,
	}, nil
}
