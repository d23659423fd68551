package queries

import (
	"context"
	"database/sql"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAllDriversQueryHandler reads the driver directory from the database.
// The staleness flag is computed at read time against the configured window,
// so a directory snapshot is accurate even between sweep runs.
type GetAllDriversQueryHandler struct {
	db              *gorm.DB
	stalenessWindow time.Duration
}

// NewGetAllDriversQueryHandler creates a handler for the driver directory.
func NewGetAllDriversQueryHandler(db *gorm.DB, stalenessWindow time.Duration) GetAllDriversQueryHandler {
	return GetAllDriversQueryHandler{db: db, stalenessWindow: stalenessWindow}
}

// Handle executes the directory query. Drivers are sorted by name for a
// stable board layout.
func (h GetAllDriversQueryHandler) Handle(ctx context.Context, query GetAllDriversQuery) ([]DriverResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			status,
			latitude,
			longitude,
			last_updated
		FROM drivers
		ORDER BY name
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	drivers := make([]DriverResponse, 0)

	for rows.Next() {
		resp, scanErr := scanDriverRow(rows, now, h.stalenessWindow)
		if scanErr != nil {
			return nil, scanErr
		}
		drivers = append(drivers, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return drivers, nil
}

// scanDriverRow maps one drivers row onto the read model and computes the
// staleness flag.
func scanDriverRow(rows *sql.Rows, now time.Time, window time.Duration) (DriverResponse, error) {
	var (
		id          uuid.UUID
		status      int
		latitude    sql.NullFloat64
		longitude   sql.NullFloat64
		lastUpdated sql.NullTime
		resp        DriverResponse
	)

	if err := rows.Scan(
		&id,
		&resp.Name,
		&status,
		&latitude,
		&longitude,
		&lastUpdated,
	); err != nil {
		return DriverResponse{}, err
	}

	driverID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return DriverResponse{}, err
	}
	resp.ID = driverID
	resp.Status = driver.Status(status).String()

	if latitude.Valid && longitude.Valid && lastUpdated.Valid {
		position := kernel.NewCoordinates(latitude.Float64, longitude.Float64)
		updated := lastUpdated.Time
		resp.Position = &position
		resp.LastUpdated = &updated
		resp.Stale = now.Sub(updated) > window
	} else {
		// Never reported: position unknown, therefore stale.
		resp.Stale = true
	}

	return resp, nil
}
