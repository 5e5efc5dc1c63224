package repositories

import (
	"context"

	"github.com/dinescout/backend/internal/domain/entities"
)

// PreferenceRepository defines the interface for user preference storage
type PreferenceRepository interface {
	// GetByUserID retrieves a user's saved preferences. Returns a NOT_FOUND
	// AppError when the user has never saved preferences.
	GetByUserID(ctx context.Context, userID string) (*entities.UserPreference, error)

	// Upsert creates or replaces a user's preferences
	Upsert(ctx context.Context, pref *entities.UserPreference) error
}
