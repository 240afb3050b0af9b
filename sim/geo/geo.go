// Package geo provides the two distance measures used by the network builders:
// great-circle (haversine) distance on geographic coordinates and plain
// Euclidean distance on planar coordinates.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for all haversine
// calculations (kilometres).
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometres between two
// (latitude, longitude) points given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Euclidean returns the straight-line distance between two planar points.
func Euclidean(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return math.Sqrt(dx*dx + dy*dy)
}
