package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dinescout/backend/internal/domain/entities"
)

func seedRestaurants() []*entities.Restaurant {
	return []*entities.Restaurant{
		{
			ID:          "r1",
			Name:        "Trattoria Roma",
			CuisineType: "Italian",
			PricingTier: "$$",
			City:        "Brooklyn",
			Description: "Cozy pasta spot with romantic candlelight",
			Amenities:   []string{"outdoor seating"},
			IsActive:    true,
		},
		{
			ID:          "r2",
			Name:        "Sushi Palace",
			CuisineType: "Japanese",
			PricingTier: "$$$",
			City:        "Manhattan",
			Description: "Omakase counter",
			IsActive:    true,
		},
		{
			ID:          "r3",
			Name:        "Taco Town",
			CuisineType: "Mexican",
			PricingTier: "$",
			City:        "Brooklyn",
			Description: "Casual street tacos, vegan options",
			Amenities:   []string{"parking"},
			IsActive:    true,
		},
	}
}

func newTestRanking(summaries map[string]entities.RatingSummary) (*RankingService, *fakeRestaurantRepo) {
	repo := &fakeRestaurantRepo{restaurants: seedRestaurants()}
	reviews := &fakeReviewRepo{summaries: summaries}
	return NewRankingService(repo, reviews), repo
}

func TestSearchAndRank_ExplicitCuisineBeatsRating(t *testing.T) {
	svc, _ := newTestRanking(map[string]entities.RatingSummary{
		"r2": {AverageRating: 5.0, ReviewCount: 40},
	})
	prefs := entities.DefaultUserPreference("u1")
	intent := entities.QueryIntent{}

	ranked, err := svc.SearchAndRank(context.Background(), intent, prefs)
	assert.NoError(t, err)
	assert.Len(t, ranked, 3)
	assert.Equal(t, "r2", ranked[0].Restaurant.ID)

	// An explicit italian ask restricts the candidate set entirely.
	intent.Cuisines = []string{"italian"}
	ranked, err = svc.SearchAndRank(context.Background(), intent, prefs)
	assert.NoError(t, err)
	assert.Len(t, ranked, 1)
	assert.Equal(t, "r1", ranked[0].Restaurant.ID)
	assert.Contains(t, ranked[0].Reasons, "Matches your cuisine request")
}

func TestSearchAndRank_ExplicitCuisineNoMatchReturnsEmpty(t *testing.T) {
	svc, repo := newTestRanking(nil)
	prefs := entities.DefaultUserPreference("u1")

	ranked, err := svc.SearchAndRank(context.Background(), entities.QueryIntent{Cuisines: []string{"french"}}, prefs)

	assert.NoError(t, err)
	assert.Empty(t, ranked)
	// No unfiltered rescan for explicit cuisine asks.
	assert.Len(t, repo.searchCalls, 1)
}

func TestSearchAndRank_EmptyIntentScansUnfiltered(t *testing.T) {
	svc, _ := newTestRanking(map[string]entities.RatingSummary{
		"r1": {AverageRating: 4.0, ReviewCount: 10},
		"r3": {AverageRating: 4.5, ReviewCount: 20},
	})
	prefs := entities.DefaultUserPreference("u1")

	ranked, err := svc.SearchAndRank(context.Background(), entities.QueryIntent{}, prefs)

	assert.NoError(t, err)
	assert.Len(t, ranked, 3)
	assert.Equal(t, "r3", ranked[0].Restaurant.ID)
	assert.Equal(t, "r1", ranked[1].Restaurant.ID)
}

func TestScoreRestaurant_IntentAndPreferenceCuisineDoNotStack(t *testing.T) {
	restaurant := seedRestaurants()[0]
	prefs := entities.DefaultUserPreference("u1")
	prefs.Cuisines = []string{"italian"}
	intent := entities.QueryIntent{Cuisines: []string{"italian"}}

	score, reasons := scoreRestaurant(restaurant, entities.RatingSummary{}, intent, prefs)

	assert.InDelta(t, 4.0, score, 0.001)
	assert.Contains(t, reasons, "Matches your cuisine request")
	assert.NotContains(t, reasons, "Matches your saved cuisine preferences")
}

func TestScoreRestaurant_PreferenceCuisineWhenNoIntent(t *testing.T) {
	restaurant := seedRestaurants()[0]
	prefs := entities.DefaultUserPreference("u1")
	prefs.Cuisines = []string{"Italian"}

	score, reasons := scoreRestaurant(restaurant, entities.RatingSummary{}, entities.QueryIntent{}, prefs)

	assert.InDelta(t, 2.0, score, 0.001)
	assert.Contains(t, reasons, "Matches your saved cuisine preferences")
}

func TestScoreRestaurant_PriceAndLocationBoosts(t *testing.T) {
	restaurant := seedRestaurants()[0]
	prefs := entities.DefaultUserPreference("u1")
	intent := entities.QueryIntent{PriceRange: "$$", Location: "brook"}

	score, reasons := scoreRestaurant(restaurant, entities.RatingSummary{}, intent, prefs)

	assert.InDelta(t, 4.5, score, 0.001)
	assert.Contains(t, reasons, "Within your requested budget ($$)")
	assert.Contains(t, reasons, "In your requested area (Brooklyn)")
}

func TestScoreRestaurant_DietaryAndAmbianceSingleBoost(t *testing.T) {
	restaurant := seedRestaurants()[2]
	prefs := entities.DefaultUserPreference("u1")
	intent := entities.QueryIntent{
		DietaryNeeds: []string{"vegan", "vegetarian"},
		Ambiance:     []string{"casual", "trendy"},
	}

	score, reasons := scoreRestaurant(restaurant, entities.RatingSummary{}, intent, prefs)

	// One dietary and one ambiance boost each, not per token.
	assert.InDelta(t, 1.8, score, 0.001)
	assert.Contains(t, reasons, "Supports vegan options")
	assert.Contains(t, reasons, "Fits casual ambiance")
}

func TestScoreRestaurant_KeywordsStack(t *testing.T) {
	restaurant := seedRestaurants()[2]
	prefs := entities.DefaultUserPreference("u1")
	intent := entities.QueryIntent{Keywords: []string{"taco", "street", "missing", "alsomissing"}}

	score, _ := scoreRestaurant(restaurant, entities.RatingSummary{}, intent, prefs)

	assert.InDelta(t, 1.2, score, 0.001)
}

func TestScoreRestaurant_RatingBaseAndReason(t *testing.T) {
	restaurant := seedRestaurants()[1]
	prefs := entities.DefaultUserPreference("u1")
	summary := entities.RatingSummary{AverageRating: 4.5, ReviewCount: 100}

	score, reasons := scoreRestaurant(restaurant, summary, entities.QueryIntent{}, prefs)

	// Review count contribution is capped at 40 reviews.
	assert.InDelta(t, 4.5*0.9+40*0.05, score, 0.001)
	assert.Contains(t, reasons, "Rated 4.5★ from 100 review(s)")
}

func TestSearchAndRank_KeywordFilterSkippedWithCuisine(t *testing.T) {
	svc, repo := newTestRanking(nil)
	prefs := entities.DefaultUserPreference("u1")
	intent := entities.QueryIntent{
		Cuisines: []string{"italian"},
		Keywords: []string{"unmatchablekeyword"},
	}

	ranked, err := svc.SearchAndRank(context.Background(), intent, prefs)

	assert.NoError(t, err)
	// The keyword would exclude everything; cuisine presence disables it.
	assert.Len(t, ranked, 1)
	assert.Equal(t, "r1", ranked[0].Restaurant.ID)
	assert.Len(t, repo.searchCalls, 1)
}

func TestSearchAndRank_DeterministicTieBreaks(t *testing.T) {
	svc, _ := newTestRanking(map[string]entities.RatingSummary{
		"r1": {AverageRating: 4.0, ReviewCount: 5},
		"r2": {AverageRating: 4.0, ReviewCount: 9},
	})
	prefs := entities.DefaultUserPreference("u1")

	first, err := svc.SearchAndRank(context.Background(), entities.QueryIntent{}, prefs)
	assert.NoError(t, err)
	second, err := svc.SearchAndRank(context.Background(), entities.QueryIntent{}, prefs)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "r2", first[0].Restaurant.ID)
	assert.Equal(t, "r1", first[1].Restaurant.ID)
}
