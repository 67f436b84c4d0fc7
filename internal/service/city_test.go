package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_GetCity(t *testing.T) {
	svc, m := newMockedService()
	ctx := context.Background()

	m.city.On("GetCityByCode", ctx, "69123").Return(lyon, nil)
	m.city.On("GetCityByCode", ctx, "99999").Return(nil, nil)

	city, err := svc.GetCity(ctx, "69123")
	require.NoError(t, err)
	assert.Equal(t, "Lyon", city.NomStandard)

	_, err = svc.GetCity(ctx, "99999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListCities(t *testing.T) {
	svc, m := newMockedService()
	ctx := context.Background()
	region := "Bretagne"
	filter := model.CityFilter{Region: &region}

	m.city.On("ListCities", ctx, filter).Return([]model.City{{CodeInsee: "35238", NomStandard: "Rennes"}}, nil)

	cities, err := svc.ListCities(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, cities, 1)

	m.city.On("ListCities", ctx, model.CityFilter{}).Return(nil, errors.New("db down"))
	_, err = svc.ListCities(ctx, model.CityFilter{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestService_FindNearestCity(t *testing.T) {
	svc, m := newMockedService()
	ctx := context.Background()

	m.city.On("FindNearestCity", ctx, 45.76, 4.83).Return(lyon, nil)
	m.city.On("FindNearestCity", ctx, 0.0, 0.0).Return(nil, nil)

	city, err := svc.FindNearestCity(ctx, 45.76, 4.83)
	require.NoError(t, err)
	assert.Equal(t, "69123", city.CodeInsee)

	_, err = svc.FindNearestCity(ctx, 0, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.FindNearestCity(ctx, 91, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.FindNearestCity(ctx, 0, -181)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_SearchCities(t *testing.T) {
	svc, m := newMockedService()
	ctx := context.Background()

	m.city.On("SearchCities", ctx, "lyo", SearchLimit).Return([]model.City{*lyon}, nil)

	cities, err := svc.SearchCities(ctx, "  lyo ")
	require.NoError(t, err)
	assert.Len(t, cities, 1)

	cities, err = svc.SearchCities(ctx, "   ")
	require.NoError(t, err)
	assert.NotNil(t, cities)
	assert.Empty(t, cities)
	m.city.AssertNumberOfCalls(t, "SearchCities", 1)
}

func TestService_RandomCity(t *testing.T) {
	t.Run("Loaded", func(t *testing.T) {
		svc, m := newMockedService()
		m.city.On("RandomCity", mock.Anything).Return(lyon, nil)
		city, err := svc.RandomCity(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Lyon", city.NomStandard)
	})

	t.Run("Empty table", func(t *testing.T) {
		svc, m := newMockedService()
		m.city.On("RandomCity", mock.Anything).Return(nil, nil)
		_, err := svc.RandomCity(context.Background())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_GetImages(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown city", func(t *testing.T) {
		svc, m := newMockedService()
		m.city.On("GetCityByCode", ctx, "99999").Return(nil, nil)
		_, err := svc.GetImages(ctx, "99999")
		assert.ErrorIs(t, err, ErrNotFound)
		m.images.AssertNotCalled(t, "CityImages", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("No images is an empty list", func(t *testing.T) {
		svc, m := newMockedService()
		m.city.On("GetCityByCode", ctx, "69123").Return(lyon, nil)
		m.images.On("CityImages", ctx, "Lyon", "Rhône").Return(nil)
		resp, err := svc.GetImages(ctx, "69123")
		require.NoError(t, err)
		assert.NotNil(t, resp.Images)
		assert.Empty(t, resp.Images)
	})

	t.Run("Images", func(t *testing.T) {
		svc, m := newMockedService()
		m.city.On("GetCityByCode", ctx, "69123").Return(lyon, nil)
		m.images.On("CityImages", ctx, "Lyon", "Rhône").Return([]model.Image{{URL: "https://upload.wikimedia.org/lyon.jpg"}})
		resp, err := svc.GetImages(ctx, "69123")
		require.NoError(t, err)
		assert.Len(t, resp.Images, 1)
	})
}

func TestService_GetWeather(t *testing.T) {
	ctx := context.Background()

	t.Run("Forecast", func(t *testing.T) {
		svc, m := newMockedService()
		m.weather.On("Forecast", ctx, 45.76, 4.83).Return(&model.Weather{Location: "Lyon"}, nil)
		w, err := svc.GetWeather(ctx, 45.76, 4.83)
		require.NoError(t, err)
		assert.Equal(t, "Lyon", w.Location)
	})

	t.Run("Provider failure", func(t *testing.T) {
		svc, m := newMockedService()
		m.weather.On("Forecast", ctx, 45.76, 4.83).Return(nil, errors.New("status 500"))
		_, err := svc.GetWeather(ctx, 45.76, 4.83)
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("Invalid coordinate", func(t *testing.T) {
		svc, m := newMockedService()
		_, err := svc.GetWeather(ctx, 100, 4.83)
		assert.ErrorIs(t, err, ErrInvalidInput)
		m.weather.AssertNotCalled(t, "Forecast", mock.Anything, mock.Anything, mock.Anything)
	})
}
