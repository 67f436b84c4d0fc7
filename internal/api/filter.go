package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/alexivanou/communes-api/internal/service"
)

// anyValue is what the filter form sends for an unset dropdown
const anyValue = "any"

// Slider ceilings. A maximum at the ceiling means "no upper bound".
const (
	populationCeiling = 800000
	altitudeCeiling   = 1600
	densityCeiling    = 20000
)

// parseCityFilter turns the /cities query string into a filter record.
// Sentinels are resolved here so the repository only sees real bounds.
func parseCityFilter(q url.Values) (model.CityFilter, error) {
	var f model.CityFilter

	if insee := categorical(q, "insee"); insee != nil {
		f.Insee = insee
		return f, nil
	}

	if location := strings.TrimSpace(q.Get("location")); location != "" {
		f.Location = &location
	}

	var err error
	if f.Population, err = parseRange(q, "populationMin", "populationMax", populationCeiling); err != nil {
		return f, err
	}
	if f.Altitude, err = parseRange(q, "altitudeMin", "altitudeMax", altitudeCeiling); err != nil {
		return f, err
	}
	if f.Density, err = parseRange(q, "densityMin", "densityMax", densityCeiling); err != nil {
		return f, err
	}

	f.Region = categorical(q, "region")
	f.Department = categorical(q, "department")
	f.Academie = categorical(q, "academie")

	// A point needs both coordinates; one alone is ignored.
	if q.Get("latitude") != "" && q.Get("longitude") != "" {
		lat, err := parseFloat(q, "latitude")
		if err != nil {
			return f, err
		}
		lng, err := parseFloat(q, "longitude")
		if err != nil {
			return f, err
		}
		f.Point = &model.Coordinate{Lat: *lat, Lng: *lng}
	}

	return f, nil
}

func categorical(q url.Values, key string) *string {
	v := strings.TrimSpace(q.Get(key))
	if v == "" || v == anyValue {
		return nil
	}
	return &v
}

func parseRange(q url.Values, minKey, maxKey string, ceiling float64) (model.Range, error) {
	var r model.Range
	var err error
	if r.Min, err = parseFloat(q, minKey); err != nil {
		return r, err
	}
	if r.Max, err = parseFloat(q, maxKey); err != nil {
		return r, err
	}
	if r.Max != nil && *r.Max == ceiling {
		r.Max = nil
	}
	return r, nil
}

// parseFloat returns nil for an absent parameter
func parseFloat(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid %s parameter %q: %w", key, raw, service.ErrInvalidInput)
	}
	return &v, nil
}

// requireFloat parses a mandatory number from a query or path value
func requireFloat(name, raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("parameter %s is required: %w", name, service.ErrInvalidInput)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s parameter %q: %w", name, raw, service.ErrInvalidInput)
	}
	return v, nil
}
