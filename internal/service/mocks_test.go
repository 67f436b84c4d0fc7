package service

import (
	"context"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/alexivanou/communes-api/internal/repository"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockCityRepository implements repository.CityRepository interface
type MockCityRepository struct {
	mock.Mock
}

func (m *MockCityRepository) ListCities(ctx context.Context, filter model.CityFilter) ([]model.City, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.City), args.Error(1)
}

func (m *MockCityRepository) GetCityByCode(ctx context.Context, code string) (*model.City, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

func (m *MockCityRepository) FindNearestCity(ctx context.Context, lat, lng float64) (*model.City, error) {
	args := m.Called(ctx, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

func (m *MockCityRepository) SearchCities(ctx context.Context, input string, limit int) ([]model.City, error) {
	args := m.Called(ctx, input, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.City), args.Error(1)
}

func (m *MockCityRepository) RandomCity(ctx context.Context) (*model.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

func (m *MockCityRepository) GetFacets(ctx context.Context) (*model.Facets, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Facets), args.Error(1)
}

func (m *MockCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	args := m.Called(ctx, cities)
	return args.Error(0)
}

// MockDescriptionRepository implements repository.DescriptionRepository interface
type MockDescriptionRepository struct {
	mock.Mock
}

func (m *MockDescriptionRepository) GetDescription(ctx context.Context, code, lang string) (*model.Description, error) {
	args := m.Called(ctx, code, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Description), args.Error(1)
}

func (m *MockDescriptionRepository) InsertDescription(ctx context.Context, code, lang, text string) (*model.Description, bool, error) {
	args := m.Called(ctx, code, lang, text)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*model.Description), args.Bool(1), args.Error(2)
}

func (m *MockDescriptionRepository) DeleteDescription(ctx context.Context, code, lang string) (bool, error) {
	args := m.Called(ctx, code, lang)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository implements repository.UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, externalID string, update model.UserUpdate) (*model.User, error) {
	args := m.Called(ctx, externalID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockBookmarkRepository implements repository.BookmarkRepository interface
type MockBookmarkRepository struct {
	mock.Mock
}

func (m *MockBookmarkRepository) ListBookmarks(ctx context.Context, userID int) ([]model.BookmarkedCity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BookmarkedCity), args.Error(1)
}

func (m *MockBookmarkRepository) AddBookmark(ctx context.Context, userID int, code string) error {
	return m.Called(ctx, userID, code).Error(0)
}

func (m *MockBookmarkRepository) DeleteBookmark(ctx context.Context, userID int, code string) (bool, error) {
	args := m.Called(ctx, userID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookmarkRepository) HasBookmark(ctx context.Context, userID int, code string) (bool, error) {
	args := m.Called(ctx, userID, code)
	return args.Bool(0), args.Error(1)
}

// MockRatingRepository implements repository.RatingRepository interface
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) GetRatingSummary(ctx context.Context, code string) (*model.RatingSummary, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RatingSummary), args.Error(1)
}

func (m *MockRatingRepository) UpsertRating(ctx context.Context, rating model.Rating) error {
	return m.Called(ctx, rating).Error(0)
}

func (m *MockRatingRepository) GetHeatmap(ctx context.Context) ([]model.HeatmapPoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.HeatmapPoint), args.Error(1)
}

// MockGenerator implements Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (*model.DescriptionSections, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DescriptionSections), args.Error(1)
}

func (m *MockGenerator) Structured() bool {
	return true
}

// MockImageSource implements ImageSource
type MockImageSource struct {
	mock.Mock
}

func (m *MockImageSource) CityImages(ctx context.Context, name, department string) []model.Image {
	args := m.Called(ctx, name, department)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Image)
}

// MockForecaster implements Forecaster
type MockForecaster struct {
	mock.Mock
}

func (m *MockForecaster) Forecast(ctx context.Context, lat, lng float64) (*model.Weather, error) {
	args := m.Called(ctx, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Weather), args.Error(1)
}

type mocks struct {
	city        *MockCityRepository
	description *MockDescriptionRepository
	user        *MockUserRepository
	bookmark    *MockBookmarkRepository
	rating      *MockRatingRepository
	generator   *MockGenerator
	images      *MockImageSource
	weather     *MockForecaster
}

func newMockedService() (*Service, *mocks) {
	m := &mocks{
		city:        new(MockCityRepository),
		description: new(MockDescriptionRepository),
		user:        new(MockUserRepository),
		bookmark:    new(MockBookmarkRepository),
		rating:      new(MockRatingRepository),
		generator:   new(MockGenerator),
		images:      new(MockImageSource),
		weather:     new(MockForecaster),
	}
	repos := &repository.Container{
		City:        m.city,
		Description: m.description,
		User:        m.user,
		Bookmark:    m.bookmark,
		Rating:      m.rating,
	}
	return NewService(repos, m.generator, m.images, m.weather, zap.NewNop()), m
}
