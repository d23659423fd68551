package kernel_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinates(t *testing.T) {
	t.Run("should accept any numeric pair", func(t *testing.T) {
		pairs := [][2]float64{
			{0, 0},
			{41.3111, 69.2797},
			{-90, 180},
			{123.456, -543.21}, // out of geographic bounds, still accepted
		}

		for _, p := range pairs {
			coords := kernel.NewCoordinates(p[0], p[1])

			require.NoError(t, coords.Validate())
			assert.InDelta(t, p[0], coords.Latitude(), 0)
			assert.InDelta(t, p[1], coords.Longitude(), 0)
		}
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var coords kernel.Coordinates

		err := coords.Validate()

		require.Error(t, err)
		assert.Equal(t, kernel.ErrCoordinatesAreNotConstructed, err)
	})
}

func TestCoordinates_IsEqual(t *testing.T) {
	t.Run("equal pairs", func(t *testing.T) {
		a := kernel.NewCoordinates(41.3111, 69.2797)
		b := kernel.NewCoordinates(41.3111, 69.2797)

		equal, err := a.IsEqual(b)

		require.NoError(t, err)
		assert.True(t, equal)
	})

	t.Run("different pairs", func(t *testing.T) {
		a := kernel.NewCoordinates(41.3111, 69.2797)
		b := kernel.NewCoordinates(41.2995, 69.2401)

		equal, err := a.IsEqual(b)

		require.NoError(t, err)
		assert.False(t, equal)
	})

	t.Run("zero value fails", func(t *testing.T) {
		a := kernel.NewCoordinates(1, 2)
		var b kernel.Coordinates

		_, err := a.IsEqual(b)

		require.Error(t, err)
	})
}

func TestCoordinates_DistanceKmTo(t *testing.T) {
	t.Run("distance to itself is zero", func(t *testing.T) {
		points := []kernel.Coordinates{
			kernel.NewCoordinates(0, 0),
			kernel.NewCoordinates(41.3111, 69.2797),
			kernel.NewCoordinates(-33.8688, 151.2093),
		}

		for _, p := range points {
			distance, err := p.DistanceKmTo(p)

			require.NoError(t, err)
			assert.InDelta(t, 0, distance, 1e-9)
		}
	})

	t.Run("is symmetric", func(t *testing.T) {
		a := kernel.NewCoordinates(41.3111, 69.2797)
		b := kernel.NewCoordinates(40.7831, 72.3442)

		ab, err := a.DistanceKmTo(b)
		require.NoError(t, err)
		ba, err := b.DistanceKmTo(a)
		require.NoError(t, err)

		assert.InDelta(t, ab, ba, 1e-9)
	})

	t.Run("one degree of latitude is about 111 km", func(t *testing.T) {
		a := kernel.NewCoordinates(10, 20)
		b := kernel.NewCoordinates(11, 20)

		distance, err := a.DistanceKmTo(b)

		require.NoError(t, err)
		// within 1% of the canonical value
		assert.InDelta(t, 111.19, distance, 1.12)
	})

	t.Run("zero value fails", func(t *testing.T) {
		a := kernel.NewCoordinates(1, 2)
		var b kernel.Coordinates

		_, err := a.DistanceKmTo(b)

		require.Error(t, err)
	})
}

func TestCoordinates_String(t *testing.T) {
	coords := kernel.NewCoordinates(41.5, -69.25)

	assert.Equal(t, "Coordinates(41.500000,-69.250000)", coords.String())
}
