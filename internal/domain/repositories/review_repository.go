package repositories

import (
	"context"

	"github.com/dinescout/backend/internal/domain/entities"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	// Create creates a new review
	Create(ctx context.Context, review *entities.Review) error

	// ListByRestaurant retrieves reviews for a restaurant, newest first
	ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entities.Review, error)

	// RatingSummaries returns per-restaurant rating aggregates for the given
	// IDs. Restaurants with no reviews are absent from the result; callers
	// default to the zero summary.
	RatingSummaries(ctx context.Context, restaurantIDs []string) (map[string]entities.RatingSummary, error)
}
