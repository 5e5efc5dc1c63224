package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/repositories"
	"github.com/dinescout/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/dinescout/backend/pkg/errors"
)

const restaurantColumns = `id, name, cuisine_type, pricing_tier, description,
	street, city, state, zip_code, phone, email, amenities, hours_json,
	is_active, created_at, updated_at`

// RestaurantAdapter implements the RestaurantRepository interface
type RestaurantAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRestaurantAdapter creates a new restaurant adapter
func NewRestaurantAdapter(client *postgres.Client) repositories.RestaurantRepository {
	return &RestaurantAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new restaurant
func (a *RestaurantAdapter) Create(ctx context.Context, restaurant *entities.Restaurant) error {
	hours, err := marshalHours(restaurant.Hours)
	if err != nil {
		return apperrors.NewInternalError("failed to encode restaurant hours", err)
	}

	record := goqu.Record{
		"id":           restaurant.ID,
		"name":         restaurant.Name,
		"cuisine_type": restaurant.CuisineType,
		"pricing_tier": restaurant.PricingTier,
		"description":  restaurant.Description,
		"street":       restaurant.Street,
		"city":         restaurant.City,
		"state":        restaurant.State,
		"zip_code":     restaurant.ZipCode,
		"phone":        restaurant.Phone,
		"email":        restaurant.Email,
		"amenities":    pq.Array(restaurant.Amenities),
		"hours_json":   hours,
		"is_active":    restaurant.IsActive,
		"created_at":   restaurant.CreatedAt,
		"updated_at":   restaurant.UpdatedAt,
	}

	query, args, err := a.db.Insert("restaurants").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create restaurant", err)
	}
	return nil
}

// GetByID retrieves a restaurant by ID
func (a *RestaurantAdapter) GetByID(ctx context.Context, id string) (*entities.Restaurant, error) {
	query := fmt.Sprintf(`SELECT %s FROM restaurants WHERE id = $1 AND is_active = true`, restaurantColumns)
	restaurant, err := a.scanOne(a.client.DB().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("restaurant with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get restaurant", err)
	}
	return restaurant, nil
}

// GetByName retrieves a restaurant by exact name, case-insensitively
func (a *RestaurantAdapter) GetByName(ctx context.Context, name string) (*entities.Restaurant, error) {
	query := fmt.Sprintf(`SELECT %s FROM restaurants WHERE name ILIKE $1 AND is_active = true LIMIT 1`, restaurantColumns)
	restaurant, err := a.scanOne(a.client.DB().QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("restaurant named %q not found", name))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get restaurant by name", err)
	}
	return restaurant, nil
}

// Update updates a restaurant
func (a *RestaurantAdapter) Update(ctx context.Context, restaurant *entities.Restaurant) error {
	hours, err := marshalHours(restaurant.Hours)
	if err != nil {
		return apperrors.NewInternalError("failed to encode restaurant hours", err)
	}

	restaurant.UpdatedAt = time.Now()

	record := goqu.Record{
		"name":         restaurant.Name,
		"cuisine_type": restaurant.CuisineType,
		"pricing_tier": restaurant.PricingTier,
		"description":  restaurant.Description,
		"street":       restaurant.Street,
		"city":         restaurant.City,
		"state":        restaurant.State,
		"zip_code":     restaurant.ZipCode,
		"phone":        restaurant.Phone,
		"email":        restaurant.Email,
		"amenities":    pq.Array(restaurant.Amenities),
		"hours_json":   hours,
		"is_active":    restaurant.IsActive,
		"updated_at":   restaurant.UpdatedAt,
	}

	query, args, err := a.db.Update("restaurants").Set(record).Where(goqu.Ex{"id": restaurant.ID}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update restaurant", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("restaurant with id %s not found", restaurant.ID))
	}
	return nil
}

// Delete deletes a restaurant (soft delete)
func (a *RestaurantAdapter) Delete(ctx context.Context, id string) error {
	query := `UPDATE restaurants SET is_active = false, updated_at = $2 WHERE id = $1`

	result, err := a.client.DB().ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return apperrors.NewInternalError("failed to delete restaurant", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("restaurant with id %s not found", id))
	}
	return nil
}

// List retrieves restaurants with filters
func (a *RestaurantAdapter) List(ctx context.Context, filter repositories.RestaurantFilter) ([]*entities.Restaurant, error) {
	ds := a.db.Select(goqu.L(restaurantColumns)).
		From("restaurants").
		Where(goqu.Ex{"is_active": true})

	if filter.CuisineType != "" {
		ds = ds.Where(goqu.I("cuisine_type").ILike("%" + filter.CuisineType + "%"))
	}
	if filter.City != "" {
		ds = ds.Where(goqu.I("city").ILike("%" + filter.City + "%"))
	}
	if filter.PricingTier != "" {
		ds = ds.Where(goqu.Ex{"pricing_tier": filter.PricingTier})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	ds = ds.Order(goqu.I("name").Asc()).Limit(uint(limit)).Offset(uint(filter.Offset))

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}
	return a.queryMany(ctx, query, args...)
}

// ListNames retrieves up to limit restaurant names
func (a *RestaurantAdapter) ListNames(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 500
	}

	rows, err := a.client.DB().QueryContext(ctx,
		`SELECT name FROM restaurants WHERE is_active = true AND name <> '' ORDER BY name LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list restaurant names", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan restaurant name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate restaurant names", err)
	}
	return names, nil
}

// SearchCandidates retrieves candidates for ranking using intent filters.
// Keyword matching is applied only when neither cuisine nor location was
// requested, so an already-targeted query is not over-constrained.
func (a *RestaurantAdapter) SearchCandidates(ctx context.Context, filter repositories.CandidateFilter) ([]*entities.Restaurant, error) {
	ds := a.db.Select(goqu.L(restaurantColumns)).
		From("restaurants").
		Where(goqu.Ex{"is_active": true})

	if len(filter.Cuisines) > 0 {
		clauses := make([]goqu.Expression, 0, len(filter.Cuisines))
		for _, cuisine := range filter.Cuisines {
			clauses = append(clauses, goqu.I("cuisine_type").ILike("%"+cuisine+"%"))
		}
		ds = ds.Where(goqu.Or(clauses...))
	}
	if filter.Location != "" {
		ds = ds.Where(goqu.I("city").ILike("%" + filter.Location + "%"))
	}
	if len(filter.Keywords) > 0 && len(filter.Cuisines) == 0 && filter.Location == "" {
		keywords := filter.Keywords
		if len(keywords) > 4 {
			keywords = keywords[:4]
		}
		var clauses []goqu.Expression
		for _, kw := range keywords {
			pattern := "%" + kw + "%"
			clauses = append(clauses,
				goqu.I("name").ILike(pattern),
				goqu.I("cuisine_type").ILike(pattern),
				goqu.I("description").ILike(pattern),
				goqu.L("amenities::text ILIKE ?", pattern),
			)
		}
		ds = ds.Where(goqu.Or(clauses...))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 60
	}
	ds = ds.Order(goqu.I("name").Asc()).Limit(uint(limit))

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build candidate query", err)
	}
	return a.queryMany(ctx, query, args...)
}

func (a *RestaurantAdapter) queryMany(ctx context.Context, query string, args ...interface{}) ([]*entities.Restaurant, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query restaurants", err)
	}
	defer rows.Close()

	restaurants := []*entities.Restaurant{}
	for rows.Next() {
		restaurant, err := a.scanOne(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan restaurant", err)
		}
		restaurants = append(restaurants, restaurant)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate restaurants", err)
	}
	return restaurants, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *RestaurantAdapter) scanOne(row rowScanner) (*entities.Restaurant, error) {
	restaurant := &entities.Restaurant{}
	var amenities pq.StringArray
	var hours []byte

	err := row.Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.CuisineType,
		&restaurant.PricingTier,
		&restaurant.Description,
		&restaurant.Street,
		&restaurant.City,
		&restaurant.State,
		&restaurant.ZipCode,
		&restaurant.Phone,
		&restaurant.Email,
		&amenities,
		&hours,
		&restaurant.IsActive,
		&restaurant.CreatedAt,
		&restaurant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	restaurant.Amenities = []string(amenities)
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &restaurant.Hours); err != nil {
			return nil, fmt.Errorf("failed to decode restaurant hours: %w", err)
		}
	}
	return restaurant, nil
}

func marshalHours(hours map[string]string) ([]byte, error) {
	if hours == nil {
		hours = map[string]string{}
	}
	return json.Marshal(hours)
}
