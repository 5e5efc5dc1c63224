package services

import (
	"context"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/repositories"
	apperrors "github.com/dinescout/backend/pkg/errors"
)

// PreferenceService handles saved user dining preferences.
type PreferenceService struct {
	repo repositories.PreferenceRepository
}

// NewPreferenceService creates a new preference service.
func NewPreferenceService(repo repositories.PreferenceRepository) *PreferenceService {
	return &PreferenceService{repo: repo}
}

// Get returns the user's preferences, defaults included for users who
// have never saved any.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*entities.UserPreference, error) {
	prefs, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return entities.DefaultUserPreference(userID), nil
		}
		return nil, err
	}
	return prefs, nil
}

// Save validates and upserts the user's preferences.
func (s *PreferenceService) Save(ctx context.Context, prefs *entities.UserPreference) error {
	if prefs.UserID == "" {
		return apperrors.NewValidationError("user_id is required")
	}
	if prefs.PriceRange != "" && !entities.IsValidPricingTier(prefs.PriceRange) {
		return apperrors.NewValidationError("price_range must be one of $, $$, $$$, $$$$")
	}
	if prefs.SortPreference == "" {
		prefs.SortPreference = "rating"
	}
	return s.repo.Upsert(ctx, prefs)
}
