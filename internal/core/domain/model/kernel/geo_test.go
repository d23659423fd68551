package kernel_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
)

func TestEstimateETA(t *testing.T) {
	t.Run("zero distance arrives now", func(t *testing.T) {
		assert.Equal(t, "Arriving now", kernel.EstimateETA(0))
	})

	t.Run("one minute", func(t *testing.T) {
		// 0.5 km at 30 km/h = 1 minute; any positive travel time rounds up,
		// so this is the shortest non-zero estimate.
		assert.Equal(t, "1 min away", kernel.EstimateETA(0.5))
		assert.Equal(t, "1 min away", kernel.EstimateETA(0.2))
	})

	t.Run("15 km at 30 km/h is 30 minutes", func(t *testing.T) {
		assert.Equal(t, "30 mins away", kernel.EstimateETA(15))
	})

	t.Run("fractional minutes round up", func(t *testing.T) {
		// 5.1 km -> 10.2 minutes -> 11
		assert.Equal(t, "11 mins away", kernel.EstimateETA(5.1))
	})
}

func TestFormatDistance(t *testing.T) {
	t.Run("below one km uses meters", func(t *testing.T) {
		assert.Equal(t, "850m", kernel.FormatDistance(0.85))
		assert.Equal(t, "0m", kernel.FormatDistance(0))
		assert.Equal(t, "999m", kernel.FormatDistance(0.9994))
	})

	t.Run("one km and above uses one decimal", func(t *testing.T) {
		assert.Equal(t, "3.2km", kernel.FormatDistance(3.2))
		assert.Equal(t, "1.0km", kernel.FormatDistance(1.0))
		assert.Equal(t, "12.5km", kernel.FormatDistance(12.46))
	})
}
