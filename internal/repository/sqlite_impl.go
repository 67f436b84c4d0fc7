package repository

import (
	"github.com/alexivanou/communes-api/internal/model"
)

// --- SQLite dialect ---

type sqliteDialect struct{}

// unicode_lower is registered by the database package's sqlite driver
func (sqliteDialect) like(column string) string {
	return "unicode_lower(" + column + ") LIKE unicode_lower(?)"
}

// withinRadius narrows to a bounding box; SQLite has no trigonometry by default
func (sqliteDialect) withinRadius(c *cityConditions, point model.Coordinate, radiusMeters float64) {
	minLat, maxLat, minLng, maxLng := boundingBox(point.Lat, point.Lng, radiusMeters/1000)
	c.add("latitude_mairie BETWEEN ? AND ? AND longitude_mairie BETWEEN ? AND ?",
		minLat, maxLat, minLng, maxLng)
}

func (sqliteDialect) refine(cities []model.City, point model.Coordinate, radiusMeters float64) []model.City {
	filtered := make([]model.City, 0, len(cities))
	for _, city := range cities {
		if city.LatitudeMairie == nil || city.LongitudeMairie == nil {
			continue
		}
		dist := calculateDistance(point.Lat, point.Lng, *city.LatitudeMairie, *city.LongitudeMairie) * 1000
		if dist <= radiusMeters {
			filtered = append(filtered, city)
		}
	}
	return filtered
}

// batch size of 100 * 15 params stays well within SQLite variable limits
func (sqliteDialect) insertChunkSize() int {
	return 100
}
