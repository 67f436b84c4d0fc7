package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexivanou/communes-api/internal/model"
)

// SearchLimit caps search suggestions
const SearchLimit = 15

// ListCities returns the cities matching an already normalized filter
func (s *Service) ListCities(ctx context.Context, filter model.CityFilter) ([]model.City, error) {
	cities, err := s.cityRepo.ListCities(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

// GetCity retrieves a city by INSEE code
func (s *Service) GetCity(ctx context.Context, code string) (*model.City, error) {
	city, err := s.cityRepo.GetCityByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	if city == nil {
		return nil, fmt.Errorf("city %s: %w", code, ErrNotFound)
	}
	return city, nil
}

// FindNearestCity finds the closest city to the given coordinates
func (s *Service) FindNearestCity(ctx context.Context, lat, lng float64) (*model.City, error) {
	if err := validateCoordinate(lat, lng); err != nil {
		return nil, err
	}

	city, err := s.cityRepo.FindNearestCity(ctx, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearest city: %w", err)
	}
	if city == nil {
		return nil, fmt.Errorf("no city near %g,%g: %w", lat, lng, ErrNotFound)
	}
	return city, nil
}

// SearchCities returns up to SearchLimit suggestions for a name fragment
func (s *Service) SearchCities(ctx context.Context, input string) ([]model.City, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return []model.City{}, nil
	}

	cities, err := s.cityRepo.SearchCities(ctx, input, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search cities: %w", err)
	}
	return cities, nil
}

// RandomCity picks a city uniformly at random
func (s *Service) RandomCity(ctx context.Context) (*model.City, error) {
	city, err := s.cityRepo.RandomCity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to pick random city: %w", err)
	}
	if city == nil {
		return nil, fmt.Errorf("no cities loaded: %w", ErrNotFound)
	}
	return city, nil
}

// GetFacets lists the values available to the categorical filters
func (s *Service) GetFacets(ctx context.Context) (*model.Facets, error) {
	facets, err := s.cityRepo.GetFacets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get facets: %w", err)
	}
	return facets, nil
}

func validateCoordinate(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("coordinate %g,%g out of range: %w", lat, lng, ErrInvalidInput)
	}
	return nil
}
