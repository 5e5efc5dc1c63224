package repositories

import (
	"context"

	"github.com/dinescout/backend/internal/domain/entities"
)

// RestaurantRepository defines the interface for restaurant data operations
type RestaurantRepository interface {
	// Create creates a new restaurant
	Create(ctx context.Context, restaurant *entities.Restaurant) error

	// GetByID retrieves a restaurant by ID
	GetByID(ctx context.Context, id string) (*entities.Restaurant, error)

	// GetByName retrieves a restaurant by exact (case-insensitive) name
	GetByName(ctx context.Context, name string) (*entities.Restaurant, error)

	// Update updates a restaurant
	Update(ctx context.Context, restaurant *entities.Restaurant) error

	// Delete deletes a restaurant
	Delete(ctx context.Context, id string) error

	// List retrieves restaurants with filters
	List(ctx context.Context, filter RestaurantFilter) ([]*entities.Restaurant, error)

	// ListNames retrieves up to limit restaurant names, for mention scanning
	ListNames(ctx context.Context, limit int) ([]string, error)

	// SearchCandidates retrieves candidates for ranking using intent filters
	SearchCandidates(ctx context.Context, filter CandidateFilter) ([]*entities.Restaurant, error)
}

// RestaurantSearchRepository defines the interface for full-text catalog
// search (e.g. Typesense), used by the public listing endpoint only.
type RestaurantSearchRepository interface {
	// Search searches restaurants by free text
	Search(ctx context.Context, query string, limit int) ([]*entities.Restaurant, error)

	// Index indexes a restaurant
	Index(ctx context.Context, restaurant *entities.Restaurant) error

	// Delete removes a restaurant from the index
	Delete(ctx context.Context, id string) error
}

// RestaurantFilter defines filters for listing restaurants
type RestaurantFilter struct {
	CuisineType string
	City        string
	PricingTier string
	Limit       int
	Offset      int
}

// CandidateFilter defines the intent-derived filters for candidate search.
// Keywords are only applied by the adapter when Cuisines and Location are
// both empty; an already-targeted query must not be over-constrained by
// free text.
type CandidateFilter struct {
	Cuisines []string
	Location string
	Keywords []string
	Limit    int
}
