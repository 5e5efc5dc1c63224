package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/repositories"
	apperrors "github.com/dinescout/backend/pkg/errors"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value, ok := c.entries[key]; ok {
		return value, nil
	}
	return nil, fmt.Errorf("key not found: %s", key)
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok, nil
}

func (c *memoryCache) prime(t *testing.T, key string, value interface{}) {
	t.Helper()
	data, err := json.Marshal(value)
	assert.NoError(t, err)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
}

type memoryRestaurantRepo struct {
	restaurants []*entities.Restaurant
}

func (r *memoryRestaurantRepo) Create(ctx context.Context, restaurant *entities.Restaurant) error {
	r.restaurants = append(r.restaurants, restaurant)
	return nil
}

func (r *memoryRestaurantRepo) GetByID(ctx context.Context, id string) (*entities.Restaurant, error) {
	for _, restaurant := range r.restaurants {
		if restaurant.ID == id {
			return restaurant, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("restaurant %s not found", id))
}

func (r *memoryRestaurantRepo) GetByName(ctx context.Context, name string) (*entities.Restaurant, error) {
	for _, restaurant := range r.restaurants {
		if strings.EqualFold(restaurant.Name, name) {
			return restaurant, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("restaurant %s not found", name))
}

func (r *memoryRestaurantRepo) Update(ctx context.Context, restaurant *entities.Restaurant) error {
	for i, existing := range r.restaurants {
		if existing.ID == restaurant.ID {
			r.restaurants[i] = restaurant
			return nil
		}
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("restaurant %s not found", restaurant.ID))
}

func (r *memoryRestaurantRepo) Delete(ctx context.Context, id string) error {
	for i, existing := range r.restaurants {
		if existing.ID == id {
			r.restaurants = append(r.restaurants[:i], r.restaurants[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("restaurant %s not found", id))
}

func (r *memoryRestaurantRepo) List(ctx context.Context, filter repositories.RestaurantFilter) ([]*entities.Restaurant, error) {
	return r.restaurants, nil
}

func (r *memoryRestaurantRepo) ListNames(ctx context.Context, limit int) ([]string, error) {
	names := make([]string, 0, len(r.restaurants))
	for _, restaurant := range r.restaurants {
		names = append(names, restaurant.Name)
	}
	return names, nil
}

func (r *memoryRestaurantRepo) SearchCandidates(ctx context.Context, filter repositories.CandidateFilter) ([]*entities.Restaurant, error) {
	return r.restaurants, nil
}

func TestCachedRestaurantAdapter_Update_InvalidatesNameCache(t *testing.T) {
	ctx := context.Background()
	stale := &entities.Restaurant{ID: "r1", Name: "Old Bistro", City: "San Jose"}
	repo := &memoryRestaurantRepo{restaurants: []*entities.Restaurant{stale}}
	cache := newMemoryCache()
	cache.prime(t, restaurantNameCacheKey("Old Bistro"), stale)
	adapter := NewCachedRestaurantAdapter(repo, cache)

	updated := &entities.Restaurant{ID: "r1", Name: "Old Bistro", City: "Oakland"}
	err := adapter.Update(ctx, updated)
	assert.NoError(t, err)

	found, err := adapter.GetByName(ctx, "Old Bistro")
	assert.NoError(t, err)
	assert.Equal(t, "Oakland", found.City)
}

func TestCachedRestaurantAdapter_Update_InvalidatesIDCache(t *testing.T) {
	ctx := context.Background()
	stale := &entities.Restaurant{ID: "r1", Name: "Old Bistro", City: "San Jose"}
	repo := &memoryRestaurantRepo{restaurants: []*entities.Restaurant{stale}}
	cache := newMemoryCache()
	cache.prime(t, restaurantCacheKey("r1"), stale)
	adapter := NewCachedRestaurantAdapter(repo, cache)

	updated := &entities.Restaurant{ID: "r1", Name: "Old Bistro", City: "Oakland"}
	err := adapter.Update(ctx, updated)
	assert.NoError(t, err)

	found, err := adapter.GetByID(ctx, "r1")
	assert.NoError(t, err)
	assert.Equal(t, "Oakland", found.City)
}

func TestCachedRestaurantAdapter_Delete_InvalidatesNameCaches(t *testing.T) {
	ctx := context.Background()
	gone := &entities.Restaurant{ID: "r1", Name: "Old Bistro"}
	repo := &memoryRestaurantRepo{restaurants: []*entities.Restaurant{
		gone,
		{ID: "r2", Name: "Sushi Palace"},
	}}
	cache := newMemoryCache()
	cache.prime(t, restaurantNameCacheKey("Old Bistro"), gone)
	cache.prime(t, nameListCacheKey(500), []string{"Old Bistro", "Sushi Palace"})
	adapter := NewCachedRestaurantAdapter(repo, cache)

	err := adapter.Delete(ctx, "r1")
	assert.NoError(t, err)

	_, err = adapter.GetByName(ctx, "Old Bistro")
	assert.Error(t, err)

	names, err := adapter.ListNames(ctx, 500)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Sushi Palace"}, names)
}

func TestCachedRestaurantAdapter_Create_InvalidatesNameList(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRestaurantRepo{restaurants: []*entities.Restaurant{
		{ID: "r1", Name: "Old Bistro"},
	}}
	cache := newMemoryCache()
	cache.prime(t, nameListCacheKey(500), []string{"Old Bistro"})
	adapter := NewCachedRestaurantAdapter(repo, cache)

	err := adapter.Create(ctx, &entities.Restaurant{ID: "r2", Name: "Pho Corner"})
	assert.NoError(t, err)

	names, err := adapter.ListNames(ctx, 500)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Old Bistro", "Pho Corner"}, names)
}
