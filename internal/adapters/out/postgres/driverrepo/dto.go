// Package driverrepo provides data transfer objects and mapping functions for driver persistence.
// Handles the conversion between the driver domain aggregate and its database representation.
package driverrepo

import (
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DriverDTO represents the database structure for persisting driver aggregates.
// Position columns are nullable: a registered driver has no coordinates until
// the first report from their device.
type DriverDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(255)"`
	Status      int       `gorm:"index"`
	Latitude    *float64
	Longitude   *float64
	LastUpdated *time.Time `gorm:"index"`
}

// TableName specifies the database table name for driver entities.
func (DriverDTO) TableName() string {
	return "drivers"
}

// fromDomain converts a driver domain aggregate to its database representation.
func fromDomain(aggregate *driver.Driver) DriverDTO {
	dto := DriverDTO{
		ID:     aggregate.ID().Bytes(),
		Name:   aggregate.Name(),
		Status: int(aggregate.Status()),
	}

	if position := aggregate.Position(); position != nil {
		latitude := position.Latitude()
		longitude := position.Longitude()
		lastUpdated := aggregate.LastUpdated()
		dto.Latitude = &latitude
		dto.Longitude = &longitude
		dto.LastUpdated = &lastUpdated
	}

	return dto
}

// toDomain converts a database DTO to a driver domain aggregate using RestoreDriver.
func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var (
		position    *kernel.Coordinates
		lastUpdated time.Time
	)
	if dto.Latitude != nil && dto.Longitude != nil && dto.LastUpdated != nil {
		coords := kernel.NewCoordinates(*dto.Latitude, *dto.Longitude)
		position = &coords
		lastUpdated = *dto.LastUpdated
	}

	return driver.RestoreDriver(id, dto.Name, driver.Status(dto.Status), position, lastUpdated)
}
