package api

import (
	"net/url"
	"testing"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/alexivanou/communes-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestParseCityFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected model.CityFilter
	}{
		{
			name:     "empty",
			query:    "",
			expected: model.CityFilter{},
		},
		{
			name:     "any everywhere",
			query:    "region=any&department=any&academie=any&insee=any",
			expected: model.CityFilter{},
		},
		{
			name:  "insee short-circuits",
			query: "insee=69123&region=Bretagne&populationMin=oops",
			expected: model.CityFilter{
				Insee: ptr("69123"),
			},
		},
		{
			name:  "ceilings mean unbounded",
			query: "populationMin=0&populationMax=800000&altitudeMax=1600&densityMax=20000",
			expected: model.CityFilter{
				Population: model.Range{Min: ptr(0.0)},
			},
		},
		{
			name:  "below ceilings kept",
			query: "populationMax=799999&altitudeMin=100&altitudeMax=1599&densityMax=19999.5",
			expected: model.CityFilter{
				Population: model.Range{Max: ptr(799999.0)},
				Altitude:   model.Range{Min: ptr(100.0), Max: ptr(1599.0)},
				Density:    model.Range{Max: ptr(19999.5)},
			},
		},
		{
			name:  "categorical and location",
			query: "location=Saint-%25&region=Bretagne&department=Finist%C3%A8re&academie=Rennes",
			expected: model.CityFilter{
				Location:   ptr("Saint-%"),
				Region:     ptr("Bretagne"),
				Department: ptr("Finistère"),
				Academie:   ptr("Rennes"),
			},
		},
		{
			name:  "point",
			query: "latitude=48.85&longitude=2.35",
			expected: model.CityFilter{
				Point: &model.Coordinate{Lat: 48.85, Lng: 2.35},
			},
		},
		{
			name:     "half a point is ignored",
			query:    "latitude=48.85",
			expected: model.CityFilter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			f, err := parseCityFilter(q)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestParseCityFilter_SentinelEquivalence(t *testing.T) {
	with, err := parseCityFilter(url.Values{"populationMax": {"800000"}, "region": {"any"}})
	require.NoError(t, err)
	without, err := parseCityFilter(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, without, with)
	assert.True(t, with.IsEmpty())
}

func TestParseCityFilter_Invalid(t *testing.T) {
	for _, query := range []string{
		"populationMin=many",
		"altitudeMax=NaN",
		"densityMin=Inf",
		"latitude=north&longitude=2.35",
	} {
		t.Run(query, func(t *testing.T) {
			q, err := url.ParseQuery(query)
			require.NoError(t, err)

			_, err = parseCityFilter(q)
			assert.ErrorIs(t, err, service.ErrInvalidInput)
		})
	}
}
