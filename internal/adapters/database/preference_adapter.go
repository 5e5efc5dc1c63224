package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/repositories"
	"github.com/dinescout/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/dinescout/backend/pkg/errors"
)

// PreferenceAdapter implements the PreferenceRepository interface
type PreferenceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPreferenceAdapter creates a new preference adapter
func NewPreferenceAdapter(client *postgres.Client) repositories.PreferenceRepository {
	return &PreferenceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByUserID retrieves a user's saved preferences
func (a *PreferenceAdapter) GetByUserID(ctx context.Context, userID string) (*entities.UserPreference, error) {
	query := `
		SELECT user_id, cuisines, price_range, preferred_locations,
			dietary_needs, ambiance, sort_preference, updated_at
		FROM user_preferences
		WHERE user_id = $1
	`

	pref := &entities.UserPreference{}
	var cuisines, locations, dietary, ambiance pq.StringArray
	var priceRange, sortPreference sql.NullString

	err := a.client.DB().QueryRowContext(ctx, query, userID).Scan(
		&pref.UserID,
		&cuisines,
		&priceRange,
		&locations,
		&dietary,
		&ambiance,
		&sortPreference,
		&pref.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("preferences for user %s not found", userID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user preferences", err)
	}

	pref.Cuisines = []string(cuisines)
	pref.PriceRange = priceRange.String
	pref.PreferredLocations = []string(locations)
	pref.DietaryNeeds = []string(dietary)
	pref.Ambiance = []string(ambiance)
	pref.SortPreference = sortPreference.String
	if pref.SortPreference == "" {
		pref.SortPreference = "rating"
	}
	return pref, nil
}

// Upsert creates or replaces a user's preferences
func (a *PreferenceAdapter) Upsert(ctx context.Context, pref *entities.UserPreference) error {
	pref.UpdatedAt = time.Now()

	record := goqu.Record{
		"user_id":             pref.UserID,
		"cuisines":            pq.Array(pref.Cuisines),
		"price_range":         sql.NullString{String: pref.PriceRange, Valid: pref.PriceRange != ""},
		"preferred_locations": pq.Array(pref.PreferredLocations),
		"dietary_needs":       pq.Array(pref.DietaryNeeds),
		"ambiance":            pq.Array(pref.Ambiance),
		"sort_preference":     pref.SortPreference,
		"updated_at":          pref.UpdatedAt,
	}

	query, args, err := a.db.Insert("user_preferences").
		Rows(record).
		OnConflict(goqu.DoUpdate("user_id", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert user preferences", err)
	}
	return nil
}
