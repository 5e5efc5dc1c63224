package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/repositories"
	apperrors "github.com/dinescout/backend/pkg/errors"
)

// ReviewService handles business logic for restaurant reviews.
type ReviewService struct {
	repo           repositories.ReviewRepository
	restaurantRepo repositories.RestaurantRepository
}

// NewReviewService creates a new review service.
func NewReviewService(repo repositories.ReviewRepository, restaurantRepo repositories.RestaurantRepository) *ReviewService {
	return &ReviewService{
		repo:           repo,
		restaurantRepo: restaurantRepo,
	}
}

// Create validates and stores a review for an existing restaurant.
func (s *ReviewService) Create(ctx context.Context, review *entities.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return apperrors.NewValidationError("rating must be between 1 and 5")
	}
	if review.RestaurantID == "" {
		return apperrors.NewValidationError("restaurant_id is required")
	}

	if _, err := s.restaurantRepo.GetByID(ctx, review.RestaurantID); err != nil {
		return err
	}

	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	review.CreatedAt = time.Now()
	return s.repo.Create(ctx, review)
}

// ListByRestaurant returns a restaurant's reviews, newest first.
func (s *ReviewService) ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entities.Review, error) {
	return s.repo.ListByRestaurant(ctx, restaurantID, limit, offset)
}
