package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/repositories"
	tsclient "github.com/dinescout/backend/internal/infrastructure/clients/typesense"
)

const collectionName = tsclient.RestaurantsCollection

// TypesenseAdapter implements full-text restaurant catalog search.
// It backs the public listing endpoint; the assistant's candidate search
// stays on Postgres.
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.RestaurantSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the restaurants collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "cuisine_type", Type: "string", Facet: pointer.True()},
			{Name: "pricing_tier", Type: "string", Facet: pointer.True()},
			{Name: "city", Type: "string", Facet: pointer.True()},
			{Name: "description", Type: "string", Optional: pointer.True()},
			{Name: "is_active", Type: "bool"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}
	return nil
}

// Index indexes a restaurant
func (a *TypesenseAdapter) Index(ctx context.Context, restaurant *entities.Restaurant) error {
	document := map[string]interface{}{
		"id":           restaurant.ID,
		"name":         restaurant.Name,
		"cuisine_type": restaurant.CuisineType,
		"pricing_tier": restaurant.PricingTier,
		"city":         restaurant.City,
		"description":  restaurant.Description,
		"is_active":    restaurant.IsActive,
		"created_at":   restaurant.CreatedAt.Unix(),
	}

	if _, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document); err != nil {
		return fmt.Errorf("failed to index restaurant: %w", err)
	}
	return nil
}

// Delete removes a restaurant from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	if _, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete restaurant from index: %w", err)
	}
	return nil
}

// Search searches restaurants by free text over name, cuisine and description
func (a *TypesenseAdapter) Search(ctx context.Context, query string, limit int) ([]*entities.Restaurant, error) {
	if limit <= 0 {
		limit = 20
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("name,cuisine_type,description,city"),
		FilterBy: pointer.String("is_active:=true"),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search restaurants: %w", err)
	}

	restaurants := []*entities.Restaurant{}
	if result.Hits == nil {
		return restaurants, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		restaurant := &entities.Restaurant{}
		if val, ok := doc["id"].(string); ok {
			restaurant.ID = val
		}
		if val, ok := doc["name"].(string); ok {
			restaurant.Name = val
		}
		if val, ok := doc["cuisine_type"].(string); ok {
			restaurant.CuisineType = val
		}
		if val, ok := doc["pricing_tier"].(string); ok {
			restaurant.PricingTier = val
		}
		if val, ok := doc["city"].(string); ok {
			restaurant.City = val
		}
		if val, ok := doc["description"].(string); ok {
			restaurant.Description = val
		}
		if val, ok := doc["is_active"].(bool); ok {
			restaurant.IsActive = val
		}

		restaurants = append(restaurants, restaurant)
	}

	return restaurants, nil
}
