package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/repositories"
	"github.com/dinescout/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/dinescout/backend/pkg/errors"
)

// ReviewAdapter implements the ReviewRepository interface
type ReviewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) repositories.ReviewRepository {
	return &ReviewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new review
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	record := goqu.Record{
		"id":            review.ID,
		"restaurant_id": review.RestaurantID,
		"user_id":       review.UserID,
		"rating":        review.Rating,
		"comment":       review.Comment,
		"created_at":    review.CreatedAt,
	}

	query, args, err := a.db.Insert("reviews").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create review", err)
	}
	return nil
}

// ListByRestaurant retrieves reviews for a restaurant, newest first
func (a *ReviewAdapter) ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entities.Review, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := a.client.DB().QueryContext(ctx, `
		SELECT id, restaurant_id, user_id, rating, comment, created_at
		FROM reviews
		WHERE restaurant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, restaurantID, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list reviews", err)
	}
	defer rows.Close()

	reviews := []*entities.Review{}
	for rows.Next() {
		review := &entities.Review{}
		err := rows.Scan(
			&review.ID,
			&review.RestaurantID,
			&review.UserID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan review", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate reviews", err)
	}
	return reviews, nil
}

// RatingSummaries returns per-restaurant rating aggregates. Averages are
// rounded to 2 decimals; restaurants without reviews are omitted.
func (a *ReviewAdapter) RatingSummaries(ctx context.Context, restaurantIDs []string) (map[string]entities.RatingSummary, error) {
	summaries := map[string]entities.RatingSummary{}
	if len(restaurantIDs) == 0 {
		return summaries, nil
	}

	rows, err := a.client.DB().QueryContext(ctx, `
		SELECT restaurant_id, ROUND(AVG(rating)::numeric, 2), COUNT(*)
		FROM reviews
		WHERE restaurant_id = ANY($1)
		GROUP BY restaurant_id
	`, pq.Array(restaurantIDs))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate ratings", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var summary entities.RatingSummary
		if err := rows.Scan(&id, &summary.AverageRating, &summary.ReviewCount); err != nil {
			return nil, apperrors.NewInternalError("failed to scan rating summary", err)
		}
		summaries[id] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate rating summaries", err)
	}
	return summaries, nil
}
