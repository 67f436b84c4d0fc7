package service

import (
	"context"

	"github.com/alexivanou/communes-api/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	ListCities(ctx context.Context, filter model.CityFilter) ([]model.City, error)
	GetCity(ctx context.Context, code string) (*model.City, error)
	FindNearestCity(ctx context.Context, lat, lng float64) (*model.City, error)
	SearchCities(ctx context.Context, input string) ([]model.City, error)
	RandomCity(ctx context.Context) (*model.City, error)
	GetFacets(ctx context.Context) (*model.Facets, error)

	GetDescription(ctx context.Context, code, lang string) (*model.DescriptionResponse, error)
	DeleteDescription(ctx context.Context, code, lang string) error
	GetImages(ctx context.Context, code string) (*model.ImagesResponse, error)
	GetWeather(ctx context.Context, lat, lng float64) (*model.Weather, error)

	GetUser(ctx context.Context, externalID string) (*model.User, error)
	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	UpdateUser(ctx context.Context, externalID string, update model.UserUpdate) (*model.User, error)

	ListBookmarks(ctx context.Context, externalID string) ([]model.BookmarkedCity, error)
	AddBookmark(ctx context.Context, externalID, code string) error
	DeleteBookmark(ctx context.Context, externalID, code string) error
	HasBookmark(ctx context.Context, userID int, code string) (bool, error)

	GetRatingSummary(ctx context.Context, code string) (*model.RatingSummary, error)
	RateCity(ctx context.Context, externalID, code string, score int) error
	GetHeatmap(ctx context.Context) ([]model.HeatmapPoint, error)
}
