package service

import (
	"context"
	"time"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/alexivanou/communes-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Generator produces description sections from a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (*model.DescriptionSections, error)
	Structured() bool
}

// ImageSource finds photos of a city. It degrades to fewer images instead of failing.
type ImageSource interface {
	CityImages(ctx context.Context, name, department string) []model.Image
}

// Forecaster fetches a forecast for a coordinate
type Forecaster interface {
	Forecast(ctx context.Context, lat, lng float64) (*model.Weather, error)
}

// Service provides business logic for the API
type Service struct {
	cityRepo        repository.CityRepository
	descriptionRepo repository.DescriptionRepository
	userRepo        repository.UserRepository
	bookmarkRepo    repository.BookmarkRepository
	ratingRepo      repository.RatingRepository

	generator Generator
	images    ImageSource
	weather   Forecaster
	logger    *zap.Logger

	// descriptionGroup collapses concurrent generations of the same cold key
	descriptionGroup  singleflight.Group
	generationTimeout time.Duration
}

// DefaultGenerationTimeout bounds a description generation unless overridden
const DefaultGenerationTimeout = 90 * time.Second

// NewService creates a new service instance
func NewService(
	repos *repository.Container,
	generator Generator,
	images ImageSource,
	weather Forecaster,
	logger *zap.Logger,
) *Service {
	return &Service{
		cityRepo:        repos.City,
		descriptionRepo: repos.Description,
		userRepo:        repos.User,
		bookmarkRepo:    repos.Bookmark,
		ratingRepo:      repos.Rating,
		generator:       generator,
		images:          images,
		weather:         weather,
		logger:          logger,

		generationTimeout: DefaultGenerationTimeout,
	}
}

// GenerationTimeout returns the overall deadline of a description generation
func (s *Service) GenerationTimeout() time.Duration {
	return s.generationTimeout
}

// SetGenerationTimeout changes the overall deadline of a description
// generation, covering rate limiting, retries and malformed-output retries.
func (s *Service) SetGenerationTimeout(d time.Duration) {
	if d > 0 {
		s.generationTimeout = d
	}
}
