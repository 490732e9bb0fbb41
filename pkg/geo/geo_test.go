package geo_test

import (
	"math"
	"testing"

	"apotek/pkg/geo"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	// Same point
	assert.Equal(t, 0.0, geo.DistanceKm(12.97, 77.59, 12.97, 77.59))

	// One degree of latitude along a meridian is ~111.19 km
	assert.InDelta(t, 111.19, geo.DistanceKm(0, 0, 1, 0), 0.01)

	// London -> Paris
	assert.InDelta(t, 343.5, geo.DistanceKm(51.5074, -0.1278, 48.8566, 2.3522), 1.0)

	// Symmetric
	assert.InDelta(t,
		geo.DistanceKm(10, 20, 11, 21),
		geo.DistanceKm(11, 21, 10, 20),
		1e-9)
}

func TestDistanceKm_NaN(t *testing.T) {
	assert.True(t, math.IsNaN(geo.DistanceKm(math.NaN(), 0, 1, 1)))
}

func TestPointFrom(t *testing.T) {
	lat, lon := 1.5, 2.5

	p, ok := geo.PointFrom(&lat, &lon)
	assert.True(t, ok)
	assert.Equal(t, geo.Point{Lat: 1.5, Lon: 2.5}, p)

	_, ok = geo.PointFrom(nil, &lon)
	assert.False(t, ok)
	_, ok = geo.PointFrom(&lat, nil)
	assert.False(t, ok)
}
