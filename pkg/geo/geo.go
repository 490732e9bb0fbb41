package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// PointFrom builds a Point from nullable coordinates. ok is false when
// either coordinate is missing, in which case no distance can be computed.
func PointFrom(lat, lon *float64) (Point, bool) {
	if lat == nil || lon == nil {
		return Point{}, false
	}
	return Point{Lat: *lat, Lon: *lon}, true
}

// DistanceKm returns the great-circle (haversine) distance between two
// coordinates in kilometres. NaN inputs produce NaN.
func DistanceKm(latA, lonA, latB, lonB float64) float64 {
	dLat := radians(latB - latA)
	dLon := radians(lonB - lonA)
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(radians(latA))*math.Cos(radians(latB))*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))
	return EarthRadiusKm * c
}

// Distance is DistanceKm for two Points.
func Distance(a, b Point) float64 {
	return DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
