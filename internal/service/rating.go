package service

import (
	"context"
	"fmt"

	"github.com/alexivanou/communes-api/internal/model"
)

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// GetRatingSummary returns the average and count of ratings of a city
func (s *Service) GetRatingSummary(ctx context.Context, code string) (*model.RatingSummary, error) {
	summary, err := s.ratingRepo.GetRatingSummary(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings: %w", err)
	}
	return summary, nil
}

// RateCity records the score of an account for a city, replacing an earlier one
func (s *Service) RateCity(ctx context.Context, externalID, code string, score int) error {
	if score < MinRating || score > MaxRating {
		return fmt.Errorf("rating must be between %d and %d: %w", MinRating, MaxRating, ErrInvalidInput)
	}
	if code == "" {
		return fmt.Errorf("inseeCode is required: %w", ErrInvalidInput)
	}
	user, err := s.GetUser(ctx, externalID)
	if err != nil {
		return err
	}
	if _, err := s.GetCity(ctx, code); err != nil {
		return err
	}

	err = s.ratingRepo.UpsertRating(ctx, model.Rating{InseeCode: code, UserID: user.UserID, Rating: score})
	if err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}
	return nil
}

// GetHeatmap returns the average rating at each rated city
func (s *Service) GetHeatmap(ctx context.Context) ([]model.HeatmapPoint, error) {
	points, err := s.ratingRepo.GetHeatmap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get heatmap: %w", err)
	}
	return points, nil
}
