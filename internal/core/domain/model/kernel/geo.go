package kernel

import (
	"fmt"
	"math"
)

// avgSpeedKmh is the assumed constant average courier speed in city traffic.
const avgSpeedKmh = 30.0

// EstimateETA converts a distance in kilometers into a human-readable arrival
// estimate, assuming a constant average speed of 30 km/h. Travel time is
// rounded up to whole minutes.
//
// Returns "Arriving now" below one minute, "1 min away" at exactly one minute,
// and "{n} mins away" otherwise.
func EstimateETA(distanceKm float64) string {
	timeHours := distanceKm / avgSpeedKmh
	timeMinutes := int(math.Ceil(timeHours * 60))

	if timeMinutes < 1 {
		return "Arriving now"
	}
	if timeMinutes == 1 {
		return "1 min away"
	}
	return fmt.Sprintf("%d mins away", timeMinutes)
}

// FormatDistance renders a distance in kilometers for display.
// Distances below one kilometer are shown as whole meters ("850m"),
// everything else with one decimal place ("3.2km").
func FormatDistance(distanceKm float64) string {
	if distanceKm < 1 {
		return fmt.Sprintf("%dm", int(math.Round(distanceKm*1000)))
	}
	return fmt.Sprintf("%.1fkm", distanceKm)
}
