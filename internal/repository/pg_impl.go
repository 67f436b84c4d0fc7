package repository

import (
	"github.com/alexivanou/communes-api/internal/model"
)

// --- PostgreSQL dialect ---

type postgresDialect struct{}

func (postgresDialect) like(column string) string {
	return column + " ILIKE ?"
}

// withinRadius evaluates the haversine distance in SQL
func (postgresDialect) withinRadius(c *cityConditions, point model.Coordinate, radiusMeters float64) {
	c.add(`(latitude_mairie IS NOT NULL AND longitude_mairie IS NOT NULL AND
		2 * 6371000 * asin(sqrt(
			power(sin(radians(latitude_mairie - ?) / 2), 2) +
			cos(radians(?)) * cos(radians(latitude_mairie)) *
			power(sin(radians(longitude_mairie - ?) / 2), 2)
		)) <= ?)`,
		point.Lat, point.Lat, point.Lng, radiusMeters,
	)
}

func (postgresDialect) refine(cities []model.City, _ model.Coordinate, _ float64) []model.City {
	return cities
}

// Chunking to stay under the 65535 parameter limit
func (postgresDialect) insertChunkSize() int {
	return 2000
}
