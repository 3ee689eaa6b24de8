package geo

import (
	"CivicPulse/internal/core/domain"
	"math"
)

// EarthRadiusMeters is the mean radius of the spherical earth model.
const EarthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between a and b using
// the haversine formula.
func DistanceMeters(a, b domain.Location) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*sinLon*sinLon

	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(math.Max(h, 0), 1)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// Within reports the distance from anchor to p and whether it is inside radius meters.
func Within(anchor, p domain.Location, radius float64) (float64, bool) {
	d := DistanceMeters(anchor, p)
	return d, d <= radius
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
