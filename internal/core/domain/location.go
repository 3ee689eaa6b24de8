package domain

import "math"

// Location is a latitude/longitude pair in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that the coordinates are finite and inside the WGS84 ranges.
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || math.IsInf(l.Latitude, 0) || l.Latitude < -90 || l.Latitude > 90 {
		return NewError(KindValidation, "latitude must be between -90 and 90")
	}
	if math.IsNaN(l.Longitude) || math.IsInf(l.Longitude, 0) || l.Longitude < -180 || l.Longitude > 180 {
		return NewError(KindValidation, "longitude must be between -180 and 180")
	}
	return nil
}
