package services

import (
	"math"

	"apotek/internal/models"

	"github.com/shopspring/decimal"
)

// Delivery time model: two minutes per kilometre, clamped to a window.
const (
	MinutesPerKm       = 2
	MinDeliveryMinutes = 10
	MaxDeliveryMinutes = 30

	// FastDeliveryMinutes is the upper bound for the express surcharge.
	FastDeliveryMinutes = 15
)

// Quote is a priced delivery estimate.
type Quote struct {
	EstimatedMinutes int     `json:"estimated_time_minutes"`
	DistanceKm       float64 `json:"estimated_distance_km"`
	Multiplier       float64 `json:"multiplier"`
	Price            float64 `json:"dynamic_price"`
}

// EstimateMinutes converts a travel distance into delivery minutes.
func EstimateMinutes(distanceKm float64) int {
	if math.IsNaN(distanceKm) || distanceKm < 0 {
		return MinDeliveryMinutes
	}
	minutes := math.Round(distanceKm * MinutesPerKm)
	if minutes < MinDeliveryMinutes {
		return MinDeliveryMinutes
	}
	if minutes > MaxDeliveryMinutes {
		return MaxDeliveryMinutes
	}
	return int(minutes)
}

// StandardMultiplier applies the express surcharge to short deliveries.
func StandardMultiplier(minutes int) float64 {
	if minutes <= FastDeliveryMinutes {
		return 1.2
	}
	return 1.0
}

// EmergencyMultiplier prices emergency requests by urgency.
func EmergencyMultiplier(urgency models.Urgency) float64 {
	if urgency == models.UrgencyCritical {
		return 1.5
	}
	return 1.2
}

// DynamicPrice is base × multiplier rounded half away from zero to cents.
func DynamicPrice(base, multiplier float64) float64 {
	return decimal.NewFromFloat(base).
		Mul(decimal.NewFromFloat(multiplier)).
		Round(2).
		InexactFloat64()
}

// RoundKm rounds a distance to two decimals for display.
func RoundKm(km float64) float64 {
	return decimal.NewFromFloat(km).Round(2).InexactFloat64()
}

// QuoteStandard prices a standard delivery of distanceKm.
func QuoteStandard(distanceKm, basePrice float64) Quote {
	minutes := EstimateMinutes(distanceKm)
	m := StandardMultiplier(minutes)
	return Quote{
		EstimatedMinutes: minutes,
		DistanceKm:       RoundKm(distanceKm),
		Multiplier:       m,
		Price:            DynamicPrice(basePrice, m),
	}
}

// QuoteEmergency prices an emergency delivery. Time still follows distance;
// the multiplier follows urgency only.
func QuoteEmergency(distanceKm float64, urgency models.Urgency, basePrice float64) Quote {
	m := EmergencyMultiplier(urgency)
	return Quote{
		EstimatedMinutes: EstimateMinutes(distanceKm),
		DistanceKm:       RoundKm(distanceKm),
		Multiplier:       m,
		Price:            DynamicPrice(basePrice, m),
	}
}
