package services

import (
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// Estimate is the result of an ETA computation for a single driver.
//
// When Available is false the driver's position could not be trusted (never
// reported, or older than the staleness window) and ETA holds the sentinel
// "unknown"; the numeric fields are zero and must not be rendered.
type Estimate struct {
	// Available reports whether the driver's position was fresh enough to use.
	Available bool
	// DistanceKm is the straight-line distance to the destination, in kilometers.
	DistanceKm float64
	// Distance is the human-readable distance, e.g. "850m" or "3.2km".
	Distance string
	// ETA is the human-readable arrival estimate, e.g. "12 mins away".
	ETA string
}

// ETAEstimator is a domain service that turns a driver's last reported
// position into a customer-facing arrival estimate.
//
// Business rules:
//   - Distance is straight-line; no routing or road network is consulted
//   - Travel time assumes the fixed average courier speed
//   - A stale position is never extrapolated: the estimate degrades to
//     "unknown" instead of showing a confident wrong number
type ETAEstimator struct {
	stalenessWindow time.Duration
}

// NewETAEstimator creates an estimator that treats positions older than
// stalenessWindow as unusable.
func NewETAEstimator(stalenessWindow time.Duration) ETAEstimator {
	return ETAEstimator{stalenessWindow: stalenessWindow}
}

// Estimate computes the distance and ETA from the driver's last reported
// position to the destination as of now.
func (e ETAEstimator) Estimate(d *driver.Driver, destination kernel.Coordinates, now time.Time) (Estimate, error) {
	if err := d.Validate(); err != nil {
		return Estimate{}, err
	}
	if err := destination.Validate(); err != nil {
		return Estimate{}, err
	}

	if d.IsStale(now, e.stalenessWindow) {
		return Estimate{ETA: "unknown"}, nil
	}

	distanceKm, err := d.Position().DistanceKmTo(destination)
	if err != nil {
		return Estimate{}, err
	}

	return Estimate{
		Available:  true,
		DistanceKm: distanceKm,
		Distance:   kernel.FormatDistance(distanceKm),
		ETA:        kernel.EstimateETA(distanceKm),
	}, nil
}
