package services_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestETAEstimator_Estimate(t *testing.T) {
	now := time.Now().UTC()
	window := 90 * time.Second
	estimator := services.NewETAEstimator(window)
	destination := kernel.NewCoordinates(40.4168, -3.7038)

	newReportingDriver := func(t *testing.T, pos kernel.Coordinates, at time.Time) *driver.Driver {
		t.Helper()
		d, err := driver.NewDriver(kernel.NewUUID(), "Alex Rider")
		require.NoError(t, err)
		require.NoError(t, d.ReportPosition(pos, at))
		return d
	}

	t.Run("fresh position yields distance and eta", func(t *testing.T) {
		// Roughly 0.1 degrees of latitude north of the destination, ~11.1 km.
		d := newReportingDriver(t, kernel.NewCoordinates(40.5168, -3.7038), now.Add(-10*time.Second))

		est, err := estimator.Estimate(d, destination, now)

		require.NoError(t, err)
		assert.True(t, est.Available)
		assert.InDelta(t, 11.12, est.DistanceKm, 0.1)
		assert.Equal(t, "11.1km", est.Distance)
		// 11.12 km at 30 km/h is ~22.2 minutes, rounded up.
		assert.Equal(t, "23 mins away", est.ETA)
	})

	t.Run("driver at the destination is arriving now", func(t *testing.T) {
		d := newReportingDriver(t, destination, now)

		est, err := estimator.Estimate(d, destination, now)

		require.NoError(t, err)
		assert.True(t, est.Available)
		assert.Equal(t, "Arriving now", est.ETA)
		assert.Equal(t, "0m", est.Distance)
	})

	t.Run("stale position degrades to unknown", func(t *testing.T) {
		d := newReportingDriver(t, destination, now.Add(-window-time.Second))

		est, err := estimator.Estimate(d, destination, now)

		require.NoError(t, err)
		assert.False(t, est.Available)
		assert.Equal(t, "unknown", est.ETA)
		assert.Empty(t, est.Distance)
	})

	t.Run("driver that never reported is unknown", func(t *testing.T) {
		d, err := driver.NewDriver(kernel.NewUUID(), "Alex Rider")
		require.NoError(t, err)

		est, err := estimator.Estimate(d, destination, now)

		require.NoError(t, err)
		assert.False(t, est.Available)
		assert.Equal(t, "unknown", est.ETA)
	})

	t.Run("unconstructed driver is rejected", func(t *testing.T) {
		var d driver.Driver

		_, err := estimator.Estimate(&d, destination, now)

		require.Error(t, err)
	})
}
