package service

import (
	"context"
	"fmt"

	"github.com/alexivanou/communes-api/internal/model"
)

// GetImages returns photos of a city. An empty list is a valid answer.
func (s *Service) GetImages(ctx context.Context, code string) (*model.ImagesResponse, error) {
	if code == "" {
		return nil, fmt.Errorf("insee is required: %w", ErrInvalidInput)
	}
	city, err := s.GetCity(ctx, code)
	if err != nil {
		return nil, err
	}

	images := s.images.CityImages(ctx, city.NomStandard, city.DepNom)
	if images == nil {
		images = []model.Image{}
	}
	return &model.ImagesResponse{Images: images}, nil
}

// GetWeather returns the forecast at a coordinate
func (s *Service) GetWeather(ctx context.Context, lat, lng float64) (*model.Weather, error) {
	if err := validateCoordinate(lat, lng); err != nil {
		return nil, err
	}
	w, err := s.weather.Forecast(ctx, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return w, nil
}
