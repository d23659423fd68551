package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/guard"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// ErrCoordinatesAreNotConstructed is returned when attempting to use an improperly
// initialized Coordinates value. Coordinates must be created via NewCoordinates.
var ErrCoordinatesAreNotConstructed = errors.New("Coordinates must be created via NewCoordinates constructor")

// Coordinates represents a geographic position as a latitude/longitude pair
// in decimal degrees. It is an immutable value object.
//
// Coordinates deliberately performs no bounds validation: position samples come
// from a trusted GPS collaborator and are stored as reported. The zero value is
// invalid only in the constructor-guard sense, to distinguish "no position yet"
// from a genuine report at (0,0).
//
// Example:
//
//	pos := kernel.NewCoordinates(41.3111, 69.2797)
//	fmt.Println(pos) // Output: Coordinates(41.311100,69.279700)
type Coordinates struct {
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewCoordinates creates a Coordinates value from a latitude/longitude pair.
// Any numeric pair is accepted; the GPS collaborator owns sample quality.
func NewCoordinates(latitude, longitude float64) Coordinates {
	return Coordinates{
		latitude:  latitude,
		longitude: longitude,
		guard:     guard.NewConstructorGuard(),
	}
}

// Validate checks if the Coordinates value was created via NewCoordinates.
// The zero value fails this validation.
func (c Coordinates) Validate() error {
	return c.guard.Validate(ErrCoordinatesAreNotConstructed)
}

// Latitude returns the latitude in decimal degrees.
func (c Coordinates) Latitude() float64 {
	return c.latitude
}

// Longitude returns the longitude in decimal degrees.
func (c Coordinates) Longitude() float64 {
	return c.longitude
}

// String returns a human-readable representation of the coordinates.
// This method implements the fmt.Stringer interface.
func (c Coordinates) String() string {
	return fmt.Sprintf("Coordinates(%f,%f)", c.latitude, c.longitude)
}

// IsEqual compares two coordinate pairs for exact equality.
// Both values must be properly constructed for the comparison to succeed.
func (c Coordinates) IsEqual(other Coordinates) (bool, error) {
	if err := errors.Join(c.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return c.latitude == other.latitude && c.longitude == other.longitude, nil
}

// DistanceKmTo calculates the great-circle distance in kilometers between two
// coordinate pairs using the haversine formula with a mean Earth radius of 6371 km.
//
// The calculation is deterministic and symmetric: a.DistanceKmTo(b) equals
// b.DistanceKmTo(a) within floating-point tolerance, and the distance from a
// point to itself is 0. Both values must be properly constructed.
func (c Coordinates) DistanceKmTo(other Coordinates) (float64, error) {
	if err := errors.Join(c.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	dLat := toRadians(other.latitude - c.latitude)
	dLon := toRadians(other.longitude - c.longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(c.latitude))*math.Cos(toRadians(other.latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	angle := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * angle, nil
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
