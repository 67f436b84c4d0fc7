package service

import (
	"context"
	"fmt"

	"github.com/alexivanou/communes-api/internal/model"
)

// ListBookmarks returns the saved cities of an account
func (s *Service) ListBookmarks(ctx context.Context, externalID string) ([]model.BookmarkedCity, error) {
	user, err := s.GetUser(ctx, externalID)
	if err != nil {
		return nil, err
	}
	bookmarks, err := s.bookmarkRepo.ListBookmarks(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// AddBookmark saves a city for an account. Saving twice is a no-op.
func (s *Service) AddBookmark(ctx context.Context, externalID, code string) error {
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
	if err := s.bookmarkRepo.AddBookmark(ctx, user.UserID, code); err != nil {
		return fmt.Errorf("failed to add bookmark: %w", err)
	}
	return nil
}

// DeleteBookmark removes a saved city
func (s *Service) DeleteBookmark(ctx context.Context, externalID, code string) error {
	if code == "" {
		return fmt.Errorf("inseeCode is required: %w", ErrInvalidInput)
	}
	user, err := s.GetUser(ctx, externalID)
	if err != nil {
		return err
	}
	deleted, err := s.bookmarkRepo.DeleteBookmark(ctx, user.UserID, code)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	if !deleted {
		return fmt.Errorf("bookmark %s: %w", code, ErrNotFound)
	}
	return nil
}

// HasBookmark reports whether the user with internal id userID saved the city
func (s *Service) HasBookmark(ctx context.Context, userID int, code string) (bool, error) {
	ok, err := s.bookmarkRepo.HasBookmark(ctx, userID, code)
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}
	return ok, nil
}
