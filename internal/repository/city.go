package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/jmoiron/sqlx"
)

const (
	cityColumns = `code_insee, nom_standard, reg_code, reg_nom, dep_code, dep_nom, academie_nom,
		population, superficie_km2, densite, altitude_moyenne, latitude_mairie, longitude_mairie,
		url_wikipedia, url_villedereve`

	// defaultCityName is listed when a city query carries no active filter
	defaultCityName = "Paris"
)

// cityDialect isolates the SQL that differs between Postgres and SQLite
type cityDialect interface {
	// like renders a case-insensitive pattern match of column against one placeholder
	like(column string) string
	// withinRadius appends the point predicate for a radius in meters
	withinRadius(c *cityConditions, point model.Coordinate, radiusMeters float64)
	// refine post-filters rows the SQL predicate could only approximate
	refine(cities []model.City, point model.Coordinate, radiusMeters float64) []model.City
	// insertChunkSize bounds rows per bulk insert statement
	insertChunkSize() int
}

type cityRepository struct {
	db      *sqlx.DB
	dialect cityDialect
	// intn returns a uniform int in [0, n)
	intn func(n int) int
}

func newCityRepository(db *sqlx.DB, dialect cityDialect) *cityRepository {
	return &cityRepository{db: db, dialect: dialect, intn: rand.IntN}
}

// ListCities resolves a filter into matching cities. A code filter wins over
// everything else; an empty filter yields the default city.
func (r *cityRepository) ListCities(ctx context.Context, f model.CityFilter) ([]model.City, error) {
	if f.Insee != nil {
		city, err := r.GetCityByCode(ctx, *f.Insee)
		if err != nil {
			return nil, err
		}
		if city == nil {
			return []model.City{}, nil
		}
		return []model.City{*city}, nil
	}

	if f.IsEmpty() {
		return r.selectCities(ctx, " WHERE nom_standard = ?", defaultCityName)
	}

	c := buildCityConditions(f, r.dialect.like)
	if c.point != nil {
		r.dialect.withinRadius(&c, *c.point, SearchRadiusMeters)
	}

	cities, err := r.selectCities(ctx, c.where(), c.args...)
	if err != nil {
		return nil, err
	}
	if c.point != nil {
		cities = r.dialect.refine(cities, *c.point, SearchRadiusMeters)
	}
	return cities, nil
}

func (r *cityRepository) selectCities(ctx context.Context, where string, args ...interface{}) ([]model.City, error) {
	q := "SELECT " + cityColumns + " FROM cities" + where +
		" ORDER BY population DESC NULLS LAST, code_insee"
	cities := []model.City{}
	if err := r.db.SelectContext(ctx, &cities, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *cityRepository) GetCityByCode(ctx context.Context, code string) (*model.City, error) {
	var city model.City
	q := r.db.Rebind("SELECT " + cityColumns + " FROM cities WHERE code_insee = ?")
	if err := r.db.GetContext(ctx, &city, q, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

// FindNearestCity minimizes the planar squared degree distance to the mairie
// coordinate, within NearestMaxSquaredDegrees. Ties go to the lowest code.
func (r *cityRepository) FindNearestCity(ctx context.Context, lat, lng float64) (*model.City, error) {
	const d2 = `((latitude_mairie - ?) * (latitude_mairie - ?) + (longitude_mairie - ?) * (longitude_mairie - ?))`
	q := `SELECT ` + cityColumns + ` FROM cities
		WHERE latitude_mairie IS NOT NULL AND longitude_mairie IS NOT NULL
		AND ` + d2 + ` <= ?
		ORDER BY ` + d2 + `, code_insee
		LIMIT 1`

	var city model.City
	err := r.db.GetContext(ctx, &city, r.db.Rebind(q),
		lat, lat, lng, lng, NearestMaxSquaredDegrees,
		lat, lat, lng, lng,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

// SearchCities matches input literally as a case-insensitive substring of the
// name. Names starting with input rank first, then by population.
func (r *cityRepository) SearchCities(ctx context.Context, input string, limit int) ([]model.City, error) {
	escaped := escapeLike(input)
	match := r.dialect.like("nom_standard") + ` ESCAPE '\'`
	q := `SELECT ` + cityColumns + ` FROM cities
		WHERE ` + match + `
		ORDER BY CASE WHEN ` + match + ` THEN 0 ELSE 1 END,
			population DESC NULLS LAST,
			nom_standard
		LIMIT ?`

	cities := []model.City{}
	err := r.db.SelectContext(ctx, &cities, r.db.Rebind(q), "%"+escaped+"%", escaped+"%", limit)
	if err != nil {
		return nil, err
	}
	return cities, nil
}

// RandomCity draws a uniform offset over a live row count
func (r *cityRepository) RandomCity(ctx context.Context) (*model.City, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM cities"); err != nil {
		return nil, fmt.Errorf("count cities: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	offset := r.intn(count)
	q := r.db.Rebind("SELECT " + cityColumns + " FROM cities ORDER BY code_insee LIMIT 1 OFFSET ?")
	var city model.City
	if err := r.db.GetContext(ctx, &city, q, offset); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Rows were deleted between the count and the read.
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *cityRepository) GetFacets(ctx context.Context) (*model.Facets, error) {
	facets := &model.Facets{}
	targets := []struct {
		column string
		dest   *[]string
	}{
		{"reg_nom", &facets.Regions},
		{"dep_nom", &facets.Departments},
		{"academie_nom", &facets.Academies},
	}
	for _, t := range targets {
		q := "SELECT DISTINCT " + t.column + " FROM cities WHERE " + t.column +
			" IS NOT NULL AND " + t.column + " <> '' ORDER BY " + t.column
		values := []string{}
		if err := r.db.SelectContext(ctx, &values, q); err != nil {
			return nil, fmt.Errorf("select %s: %w", t.column, err)
		}
		*t.dest = values
	}
	return facets, nil
}

func (r *cityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	chunkSize := r.dialect.insertChunkSize()
	for i := 0; i < len(cities); i += chunkSize {
		end := i + chunkSize
		if end > len(cities) {
			end = len(cities)
		}
		batch := cities[i:end]

		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cities (code_insee, nom_standard, reg_code, reg_nom, dep_code, dep_nom, academie_nom,
			population, superficie_km2, densite, altitude_moyenne, latitude_mairie, longitude_mairie,
			url_wikipedia, url_villedereve)
		VALUES (:code_insee, :nom_standard, :reg_code, :reg_nom, :dep_code, :dep_nom, :academie_nom,
			:population, :superficie_km2, :densite, :altitude_moyenne, :latitude_mairie, :longitude_mairie,
			:url_wikipedia, :url_villedereve)
		ON CONFLICT (code_insee) DO NOTHING`,
			batch)
		if err != nil {
			return err
		}
	}
	return nil
}
