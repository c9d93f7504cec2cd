package kernel

import "math"

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometres between a and b
// on a sphere of radius EarthRadiusKm.
//
// The function is pure and total: it never fails, Haversine(a, b) == Haversine(b, a),
// and Haversine(a, a) == 0. Provenance does not influence the result.
//
// Example:
//
//	pickup, _ := kernel.NewLocation(6.5244, 3.3792)
//	rider, _ := kernel.NewLocation(6.5514, 3.3792)
//	km := kernel.Haversine(pickup, rider) // ~3.0
func Haversine(a, b Location) float64 {
	lat1 := toRadians(a.latitude)
	lat2 := toRadians(b.latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.longitude - a.longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// rounding can push h marginally past 1 for antipodal points
	h = math.Min(1, h)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
