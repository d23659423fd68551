package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetDriverPositionQueryHandler reads a single driver's directory entry.
type GetDriverPositionQueryHandler struct {
	db              *gorm.DB
	stalenessWindow time.Duration
}

// NewGetDriverPositionQueryHandler creates a handler for single-driver
// position lookups.
func NewGetDriverPositionQueryHandler(db *gorm.DB, stalenessWindow time.Duration) GetDriverPositionQueryHandler {
	return GetDriverPositionQueryHandler{db: db, stalenessWindow: stalenessWindow}
}

// Handle executes the lookup.
// Returns errs.ObjectNotFoundError when the driver is not registered.
func (h GetDriverPositionQueryHandler) Handle(ctx context.Context, query GetDriverPositionQuery) (DriverResponse, error) {
	if err := query.Validate(); err != nil {
		return DriverResponse{}, err
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
		return DriverResponse{}, errs.NewObjectNotFoundError("driverID", query.DriverID())
	}
	if err != nil {
		return DriverResponse{}, err
	}

	resp := DriverResponse{
		ID:     query.DriverID(),
		Name:   name,
		Status: driver.Status(status).String(),
		Stale:  true,
	}

	if latitude.Valid && longitude.Valid && lastUpdated.Valid {
		position := kernel.NewCoordinates(latitude.Float64, longitude.Float64)
		updated := lastUpdated.Time
		resp.Position = &position
		resp.LastUpdated = &updated
		resp.Stale = time.Now().UTC().Sub(updated) > h.stalenessWindow
	}

	return resp, nil
}
