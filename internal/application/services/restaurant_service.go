package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/repositories"
	apperrors "github.com/dinescout/backend/pkg/errors"
)

// RestaurantService handles business logic for the restaurant catalog.
type RestaurantService struct {
	repo       repositories.RestaurantRepository
	reviewRepo repositories.ReviewRepository
	searchRepo repositories.RestaurantSearchRepository
}

// NewRestaurantService creates a new restaurant service. The search
// repository is optional; without it full-text search falls back to
// database listing.
func NewRestaurantService(
	repo repositories.RestaurantRepository,
	reviewRepo repositories.ReviewRepository,
	searchRepo repositories.RestaurantSearchRepository,
) *RestaurantService {
	return &RestaurantService{
		repo:       repo,
		reviewRepo: reviewRepo,
		searchRepo: searchRepo,
	}
}

// Create validates, persists and indexes a new restaurant.
func (s *RestaurantService) Create(ctx context.Context, restaurant *entities.Restaurant) error {
	if strings.TrimSpace(restaurant.Name) == "" {
		return apperrors.NewValidationError("restaurant name is required")
	}
	if restaurant.PricingTier != "" && !entities.IsValidPricingTier(restaurant.PricingTier) {
		return apperrors.NewValidationError("pricing tier must be one of $, $$, $$$, $$$$")
	}

	if restaurant.ID == "" {
		restaurant.ID = uuid.New().String()
	}
	now := time.Now()
	restaurant.CreatedAt = now
	restaurant.UpdatedAt = now
	restaurant.IsActive = true

	if err := s.repo.Create(ctx, restaurant); err != nil {
		return err
	}

	// Index errors don't fail the write, the catalog is the source of truth.
	if s.searchRepo != nil {
		if err := s.searchRepo.Index(ctx, restaurant); err != nil {
			log.Warn().Err(err).Str("restaurant_id", restaurant.ID).Msg("failed to index restaurant")
		}
	}
	return nil
}

// GetByID retrieves a restaurant with its rating summary attached.
func (s *RestaurantService) GetByID(ctx context.Context, id string) (*entities.Restaurant, entities.RatingSummary, error) {
	restaurant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, entities.RatingSummary{}, err
	}
	summaries, err := s.reviewRepo.RatingSummaries(ctx, []string{id})
	if err != nil {
		return nil, entities.RatingSummary{}, err
	}
	return restaurant, summaries[id], nil
}

// Update persists changes and refreshes the search index.
func (s *RestaurantService) Update(ctx context.Context, restaurant *entities.Restaurant) error {
	if restaurant.PricingTier != "" && !entities.IsValidPricingTier(restaurant.PricingTier) {
		return apperrors.NewValidationError("pricing tier must be one of $, $$, $$$, $$$$")
	}
	restaurant.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, restaurant); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Index(ctx, restaurant); err != nil {
			log.Warn().Err(err).Str("restaurant_id", restaurant.ID).Msg("failed to refresh restaurant index")
		}
	}
	return nil
}

// Delete removes a restaurant from the catalog and the search index.
func (s *RestaurantService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("restaurant_id", id).Msg("failed to remove restaurant from index")
		}
	}
	return nil
}

// List retrieves restaurants by structured filter.
func (s *RestaurantService) List(ctx context.Context, filter repositories.RestaurantFilter) ([]*entities.Restaurant, error) {
	return s.repo.List(ctx, filter)
}

// Search performs free-text catalog search, via the search engine when
// one is wired and the database otherwise.
func (s *RestaurantService) Search(ctx context.Context, query string, limit int) ([]*entities.Restaurant, error) {
	if s.searchRepo != nil {
		return s.searchRepo.Search(ctx, query, limit)
	}
	return s.repo.List(ctx, repositories.RestaurantFilter{Limit: limit})
}

// RatingSummaries returns aggregate ratings for a set of restaurants.
func (s *RestaurantService) RatingSummaries(ctx context.Context, ids []string) (map[string]entities.RatingSummary, error) {
	return s.reviewRepo.RatingSummaries(ctx, ids)
}
