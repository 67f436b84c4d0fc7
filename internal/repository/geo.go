package repository

import "math"

const (
	earthRadiusKm = 6371.0
	metersPerMile = 1609.34

	// SearchRadiusMeters is the radius of the point filter on city listings
	SearchRadiusMeters = 10 * metersPerMile

	// NearestMaxSquaredDegrees bounds the planar squared distance, in degrees,
	// accepted by the nearest-city lookup.
	NearestMaxSquaredDegrees = 0.25
)

// calculateDistance returns the great-circle (haversine) distance in km
func calculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)
	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// boundingBox returns a lat/lng box that contains every point within
// radiusKm of (lat, lng). It over-approximates; callers refine with
// calculateDistance.
func boundingBox(lat, lng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radiusKm / earthRadiusKm * 180.0 / math.Pi
	// Widest longitude span is at the box edge closest to a pole.
	cosLat := math.Cos((math.Abs(lat) + dLat) * math.Pi / 180.0)
	dLng := 180.0
	if cosLat > 1e-6 {
		dLng = math.Min(180.0, dLat/cosLat)
	}
	return lat - dLat, lat + dLat, lng - dLng, lng + dLng
}
