package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexivanou/communes-api/internal/llm"
	"github.com/alexivanou/communes-api/internal/model"
	"go.uber.org/zap"
)

// generationAttempts bounds calls per cold key when the output is malformed
const generationAttempts = 2

// GetDescription returns the stored description of a city, generating and
// storing it on first access. Stored rows are returned as they are.
func (s *Service) GetDescription(ctx context.Context, code, lang string) (*model.DescriptionResponse, error) {
	if err := validateDescriptionKey(code, lang); err != nil {
		return nil, err
	}

	existing, err := s.descriptionRepo.GetDescription(ctx, code, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to get description: %w", err)
	}
	if existing != nil {
		return describe(existing), nil
	}

	city, err := s.GetCity(ctx, code)
	if err != nil {
		return nil, err
	}

	// Callers waiting on the same key share one generation. The work is
	// detached from the first caller's cancellation since others depend on it.
	key := code + ":" + lang
	v, err, shared := s.descriptionGroup.Do(key, func() (interface{}, error) {
		return s.generateDescription(context.WithoutCancel(ctx), city, lang)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("Shared description generation", zap.String("key", key))
	}
	return describe(v.(*model.Description)), nil
}

func (s *Service) generateDescription(ctx context.Context, city *model.City, lang string) (*model.Description, error) {
	// A concurrent flight may have stored the row since the first lookup.
	existing, err := s.descriptionRepo.GetDescription(ctx, city.CodeInsee, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to get description: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	prompt, err := llm.BuildPrompt(lang, city.NomStandard, city.DepNom, city.RegNom, s.generator.Structured())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.generationTimeout)
	defer cancel()

	var sections *model.DescriptionSections
	for attempt := 1; ; attempt++ {
		sections, err = s.generator.Generate(genCtx, prompt)
		if err == nil {
			break
		}
		if !errors.Is(err, llm.ErrMalformedOutput) || attempt >= generationAttempts || genCtx.Err() != nil {
			s.logger.Error("Description generation failed",
				zap.String("insee", city.CodeInsee),
				zap.String("lang", lang),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: failed to generate description: %w", ErrUpstream, err)
		}
		s.logger.Warn("Malformed description output, retrying",
			zap.String("insee", city.CodeInsee), zap.String("lang", lang), zap.Error(err))
	}

	d, created, err := s.descriptionRepo.InsertDescription(ctx, city.CodeInsee, lang, llm.RenderSections(*sections))
	if err != nil {
		return nil, fmt.Errorf("failed to store description: %w", err)
	}
	if !created {
		s.logger.Info("Description stored concurrently, using existing row",
			zap.String("insee", city.CodeInsee), zap.String("lang", lang))
	}
	return d, nil
}

// DeleteDescription drops a stored description so the next read regenerates it.
// Deleting an absent description is not an error.
func (s *Service) DeleteDescription(ctx context.Context, code, lang string) error {
	if err := validateDescriptionKey(code, lang); err != nil {
		return err
	}
	deleted, err := s.descriptionRepo.DeleteDescription(ctx, code, lang)
	if err != nil {
		return fmt.Errorf("failed to delete description: %w", err)
	}
	if deleted {
		s.logger.Info("Description deleted", zap.String("insee", code), zap.String("lang", lang))
	}
	return nil
}

func validateDescriptionKey(code, lang string) error {
	if code == "" {
		return fmt.Errorf("insee is required: %w", ErrInvalidInput)
	}
	if !llm.SupportedLanguage(lang) {
		return fmt.Errorf("unsupported language %q: %w", lang, ErrInvalidInput)
	}
	return nil
}

// describe attaches parsed sections when the stored text has them
func describe(d *model.Description) *model.DescriptionResponse {
	resp := &model.DescriptionResponse{Description: *d}
	if sections, err := llm.ParseSections(d.Description); err == nil {
		resp.Sections = sections
	}
	return resp
}
