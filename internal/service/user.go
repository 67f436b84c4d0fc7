package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/alexivanou/communes-api/internal/repository"
	"go.uber.org/zap"
)

// GetUser looks up an account by identity-provider subject
func (s *Service) GetUser(ctx context.Context, externalID string) (*model.User, error) {
	user, err := s.userRepo.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", externalID, ErrNotFound)
	}
	return user, nil
}

// CreateUser returns the account of the subject, creating it if needed
func (s *Service) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	user.ExternalID = strings.TrimSpace(user.ExternalID)
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)

	if user.ExternalID == "" || user.Username == "" {
		return nil, fmt.Errorf("externalId and username are required: %w", ErrInvalidInput)
	}
	if err := validateEmail(user.Email); err != nil {
		return nil, err
	}

	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("username or email already in use: %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("User ready", zap.Int("user_id", created.UserID))
	return created, nil
}

// UpdateUser changes the username and/or email of an account
func (s *Service) UpdateUser(ctx context.Context, externalID string, update model.UserUpdate) (*model.User, error) {
	if update.Username == nil && update.Email == nil {
		return nil, fmt.Errorf("nothing to update: %w", ErrInvalidInput)
	}
	if update.Username != nil && strings.TrimSpace(*update.Username) == "" {
		return nil, fmt.Errorf("username cannot be empty: %w", ErrInvalidInput)
	}
	if update.Email != nil {
		if err := validateEmail(*update.Email); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.UpdateUser(ctx, externalID, update)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("username or email already in use: %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", externalID, ErrNotFound)
	}
	return user, nil
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email %q: %w", email, ErrInvalidInput)
	}
	return nil
}
