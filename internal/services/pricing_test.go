package services_test

import (
	"math"
	"testing"

	"apotek/internal/models"
	"apotek/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestEstimateMinutes_Bounds(t *testing.T) {
	for _, km := range []float64{0, 0.1, 2.4, 5, 7.5, 14.9, 15, 40, 1000} {
		m := services.EstimateMinutes(km)
		assert.GreaterOrEqual(t, m, services.MinDeliveryMinutes, "km=%v", km)
		assert.LessOrEqual(t, m, services.MaxDeliveryMinutes, "km=%v", km)
	}
	assert.Equal(t, 10, services.EstimateMinutes(0))
	assert.Equal(t, 12, services.EstimateMinutes(6))
	assert.Equal(t, 15, services.EstimateMinutes(7.4))
	assert.Equal(t, 30, services.EstimateMinutes(100))
	assert.Equal(t, 10, services.EstimateMinutes(math.NaN()))
}

func TestStandardMultiplier(t *testing.T) {
	assert.Equal(t, 1.2, services.StandardMultiplier(12))
	assert.Equal(t, 1.2, services.StandardMultiplier(15))
	assert.Equal(t, 1.0, services.StandardMultiplier(16))
	assert.Equal(t, 1.0, services.StandardMultiplier(20))
}

func TestEmergencyMultiplier(t *testing.T) {
	assert.Equal(t, 1.5, services.EmergencyMultiplier(models.UrgencyCritical))
	assert.Equal(t, 1.2, services.EmergencyMultiplier(models.UrgencyHigh))
}

func TestDynamicPrice_RoundsToCents(t *testing.T) {
	assert.Equal(t, 12.0, services.DynamicPrice(10, 1.2))
	assert.Equal(t, 29.99, services.DynamicPrice(19.99, 1.5))
	assert.Equal(t, 4.0, services.DynamicPrice(3.33, 1.2))
	assert.Equal(t, 0.0, services.DynamicPrice(0, 1.5))
}

func TestQuoteStandard(t *testing.T) {
	// 6 km -> 12 minutes -> express surcharge
	q := services.QuoteStandard(6, 10)
	assert.Equal(t, 12, q.EstimatedMinutes)
	assert.Equal(t, 1.2, q.Multiplier)
	assert.Equal(t, 12.0, q.Price)

	// 10 km -> 20 minutes -> base price
	q = services.QuoteStandard(10, 10)
	assert.Equal(t, 20, q.EstimatedMinutes)
	assert.Equal(t, 1.0, q.Multiplier)
	assert.Equal(t, 10.0, q.Price)

	q = services.QuoteStandard(3.14159, 10)
	assert.Equal(t, 3.14, q.DistanceKm)
}

func TestQuoteEmergency(t *testing.T) {
	q := services.QuoteEmergency(50, models.UrgencyCritical, 20)
	assert.Equal(t, 30, q.EstimatedMinutes)
	assert.Equal(t, 30.0, q.Price)

	q = services.QuoteEmergency(1, models.UrgencyHigh, 20)
	assert.Equal(t, 24.0, q.Price)
}
