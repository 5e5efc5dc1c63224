package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/providers"
	"github.com/dinescout/backend/internal/domain/repositories"
)

// CachedRestaurantAdapter wraps a RestaurantRepository with read caching.
// Writes invalidate through to the underlying adapter; search paths are
// uncached because candidate sets depend on per-turn intent.
type CachedRestaurantAdapter struct {
	adapter repositories.RestaurantRepository
	cache   providers.CacheProvider
}

// NewCachedRestaurantAdapter creates a new cached restaurant adapter
func NewCachedRestaurantAdapter(adapter repositories.RestaurantRepository, cache providers.CacheProvider) repositories.RestaurantRepository {
	return &CachedRestaurantAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	restaurantByIDTTL = 300
	restaurantNameTTL = 300
	nameListTTL       = 180
)

func restaurantCacheKey(id string) string {
	return fmt.Sprintf("restaurant:%s", id)
}

func restaurantNameCacheKey(name string) string {
	return fmt.Sprintf("restaurant:name:%s", name)
}

func nameListCacheKey(limit int) string {
	return fmt.Sprintf("restaurants:names:%d", limit)
}

// invalidateNameCaches drops every name-keyed entry and cached name list.
// Writes cannot know which name key held the previous value (a rename leaves
// the old key behind), so the whole pattern goes.
func (a *CachedRestaurantAdapter) invalidateNameCaches(ctx context.Context) {
	if err := a.cache.DeletePattern(ctx, "restaurant:name:*"); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate restaurant name cache")
	}
	if err := a.cache.DeletePattern(ctx, "restaurants:names:*"); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate restaurant name list cache")
	}
}

// GetByID retrieves a restaurant by ID with caching
func (a *CachedRestaurantAdapter) GetByID(ctx context.Context, id string) (*entities.Restaurant, error) {
	cacheKey := restaurantCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var restaurant entities.Restaurant
		if err := json.Unmarshal(cached, &restaurant); err == nil {
			return &restaurant, nil
		}
	}

	restaurant, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Write-behind so the response is not blocked on the cache.
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(restaurant); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, restaurantByIDTTL); err != nil {
				log.Warn().Err(err).Str("restaurant_id", id).Msg("failed to cache restaurant")
			}
		}
	}()

	return restaurant, nil
}

// GetByName retrieves a restaurant by name with caching; follow-up
// resolution hits the same names repeatedly within a conversation.
func (a *CachedRestaurantAdapter) GetByName(ctx context.Context, name string) (*entities.Restaurant, error) {
	cacheKey := restaurantNameCacheKey(name)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var restaurant entities.Restaurant
		if err := json.Unmarshal(cached, &restaurant); err == nil {
			return &restaurant, nil
		}
	}

	restaurant, err := a.adapter.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(restaurant); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, restaurantNameTTL); err != nil {
				log.Warn().Err(err).Str("name", name).Msg("failed to cache restaurant by name")
			}
		}
	}()

	return restaurant, nil
}

// ListNames retrieves restaurant names with caching
func (a *CachedRestaurantAdapter) ListNames(ctx context.Context, limit int) ([]string, error) {
	cacheKey := nameListCacheKey(limit)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var names []string
		if err := json.Unmarshal(cached, &names); err == nil {
			return names, nil
		}
	}

	names, err := a.adapter.ListNames(ctx, limit)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(names); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, nameListTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache restaurant name list")
			}
		}
	}()

	return names, nil
}

// Create creates a restaurant and invalidates the name caches
func (a *CachedRestaurantAdapter) Create(ctx context.Context, restaurant *entities.Restaurant) error {
	if err := a.adapter.Create(ctx, restaurant); err != nil {
		return err
	}
	a.invalidateNameCaches(ctx)
	return nil
}

// Update updates a restaurant and invalidates its cache entries
func (a *CachedRestaurantAdapter) Update(ctx context.Context, restaurant *entities.Restaurant) error {
	if err := a.adapter.Update(ctx, restaurant); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, restaurantCacheKey(restaurant.ID)); err != nil {
		log.Warn().Err(err).Str("restaurant_id", restaurant.ID).Msg("failed to invalidate restaurant cache")
	}
	a.invalidateNameCaches(ctx)
	return nil
}

// Delete deletes a restaurant and invalidates its cache entries
func (a *CachedRestaurantAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, restaurantCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("restaurant_id", id).Msg("failed to invalidate restaurant cache")
	}
	a.invalidateNameCaches(ctx)
	return nil
}

// List passes through; list results change too often to be worth caching here.
func (a *CachedRestaurantAdapter) List(ctx context.Context, filter repositories.RestaurantFilter) ([]*entities.Restaurant, error) {
	return a.adapter.List(ctx, filter)
}

// SearchCandidates passes through; candidate sets are intent-specific.
func (a *CachedRestaurantAdapter) SearchCandidates(ctx context.Context, filter repositories.CandidateFilter) ([]*entities.Restaurant, error) {
	return a.adapter.SearchCandidates(ctx, filter)
}
