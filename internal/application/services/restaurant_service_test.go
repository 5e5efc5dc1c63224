package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dinescout/backend/internal/domain/entities"
	apperrors "github.com/dinescout/backend/pkg/errors"
)

type fakeSearchRepo struct {
	indexed []string
	deleted []string
	results []*entities.Restaurant
	err     error
}

func (f *fakeSearchRepo) Search(ctx context.Context, query string, limit int) ([]*entities.Restaurant, error) {
	return f.results, f.err
}

func (f *fakeSearchRepo) Index(ctx context.Context, restaurant *entities.Restaurant) error {
	f.indexed = append(f.indexed, restaurant.ID)
	return f.err
}

func (f *fakeSearchRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func TestRestaurantCreate_GeneratesIDAndIndexes(t *testing.T) {
	repo := &fakeRestaurantRepo{}
	search := &fakeSearchRepo{}
	svc := NewRestaurantService(repo, &fakeReviewRepo{}, search)

	restaurant := &entities.Restaurant{Name: "Pho Corner", CuisineType: "Vietnamese", PricingTier: "$"}
	err := svc.Create(context.Background(), restaurant)

	assert.NoError(t, err)
	assert.NotEmpty(t, restaurant.ID)
	assert.True(t, restaurant.IsActive)
	assert.False(t, restaurant.CreatedAt.IsZero())
	assert.Equal(t, []string{restaurant.ID}, search.indexed)
}

func TestRestaurantCreate_RequiresName(t *testing.T) {
	svc := NewRestaurantService(&fakeRestaurantRepo{}, &fakeReviewRepo{}, nil)

	err := svc.Create(context.Background(), &entities.Restaurant{Name: "  "})

	assert.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRestaurantCreate_RejectsInvalidPricingTier(t *testing.T) {
	svc := NewRestaurantService(&fakeRestaurantRepo{}, &fakeReviewRepo{}, nil)

	err := svc.Create(context.Background(), &entities.Restaurant{Name: "Pho Corner", PricingTier: "$$$$$"})

	assert.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRestaurantCreate_IndexErrorDoesNotFailWrite(t *testing.T) {
	repo := &fakeRestaurantRepo{}
	search := &fakeSearchRepo{err: assert.AnError}
	svc := NewRestaurantService(repo, &fakeReviewRepo{}, search)

	err := svc.Create(context.Background(), &entities.Restaurant{Name: "Pho Corner"})

	assert.NoError(t, err)
	assert.Len(t, repo.restaurants, 1)
}

func TestRestaurantGetByID_AttachesRatingSummary(t *testing.T) {
	repo := &fakeRestaurantRepo{restaurants: seedRestaurants()}
	reviews := &fakeReviewRepo{summaries: map[string]entities.RatingSummary{
		"r1": {AverageRating: 4.1, ReviewCount: 7},
	}}
	svc := NewRestaurantService(repo, reviews, nil)

	restaurant, summary, err := svc.GetByID(context.Background(), "r1")

	assert.NoError(t, err)
	assert.Equal(t, "Trattoria Roma", restaurant.Name)
	assert.Equal(t, 4.1, summary.AverageRating)
	assert.Equal(t, 7, summary.ReviewCount)
}

func TestRestaurantDelete_RemovesFromIndex(t *testing.T) {
	repo := &fakeRestaurantRepo{restaurants: seedRestaurants()}
	search := &fakeSearchRepo{}
	svc := NewRestaurantService(repo, &fakeReviewRepo{}, search)

	err := svc.Delete(context.Background(), "r1")

	assert.NoError(t, err)
	assert.Equal(t, []string{"r1"}, search.deleted)
	assert.Len(t, repo.restaurants, 2)
}

func TestRestaurantSearch_FallsBackToDatabaseWithoutIndex(t *testing.T) {
	repo := &fakeRestaurantRepo{restaurants: seedRestaurants()}
	svc := NewRestaurantService(repo, &fakeReviewRepo{}, nil)

	results, err := svc.Search(context.Background(), "taco", 10)

	assert.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestReviewCreate_ValidatesRatingBounds(t *testing.T) {
	svc := NewReviewService(&fakeReviewRepo{}, &fakeRestaurantRepo{restaurants: seedRestaurants()})

	for _, rating := range []int{0, 6, -1} {
		err := svc.Create(context.Background(), &entities.Review{RestaurantID: "r1", Rating: rating})
		assert.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	}
}

func TestReviewCreate_RequiresExistingRestaurant(t *testing.T) {
	svc := NewReviewService(&fakeReviewRepo{}, &fakeRestaurantRepo{})

	err := svc.Create(context.Background(), &entities.Review{RestaurantID: "missing", Rating: 4})

	assert.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReviewCreate_SetsIDAndTimestamp(t *testing.T) {
	reviews := &fakeReviewRepo{}
	svc := NewReviewService(reviews, &fakeRestaurantRepo{restaurants: seedRestaurants()})

	review := &entities.Review{RestaurantID: "r1", UserID: "u1", Rating: 5, Comment: "great"}
	err := svc.Create(context.Background(), review)

	assert.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.False(t, review.CreatedAt.IsZero())
	assert.Len(t, reviews.reviews, 1)
}

func TestPreferenceGet_DefaultsWhenUnsaved(t *testing.T) {
	svc := NewPreferenceService(&fakePreferenceRepo{})

	prefs, err := svc.Get(context.Background(), "u1")

	assert.NoError(t, err)
	assert.Equal(t, "u1", prefs.UserID)
	assert.Equal(t, "rating", prefs.SortPreference)
	assert.Empty(t, prefs.Cuisines)
}

func TestPreferenceSave_ValidatesPriceRange(t *testing.T) {
	svc := NewPreferenceService(&fakePreferenceRepo{})

	err := svc.Save(context.Background(), &entities.UserPreference{UserID: "u1", PriceRange: "cheap"})

	assert.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPreferenceSave_RoundTrips(t *testing.T) {
	repo := &fakePreferenceRepo{}
	svc := NewPreferenceService(repo)

	err := svc.Save(context.Background(), &entities.UserPreference{
		UserID:   "u1",
		Cuisines: []string{"thai"},
	})
	assert.NoError(t, err)

	prefs, err := svc.Get(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"thai"}, prefs.Cuisines)
	assert.Equal(t, "rating", prefs.SortPreference)
}
