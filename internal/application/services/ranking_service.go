package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/repositories"
)

const candidateLimit = 60

// RankingService turns an intent plus the user's saved preferences into a
// scored, ordered list of restaurants.
type RankingService struct {
	restaurantRepo repositories.RestaurantRepository
	reviewRepo     repositories.ReviewRepository
}

// NewRankingService creates a new ranking service.
func NewRankingService(restaurantRepo repositories.RestaurantRepository, reviewRepo repositories.ReviewRepository) *RankingService {
	return &RankingService{
		restaurantRepo: restaurantRepo,
		reviewRepo:     reviewRepo,
	}
}

// SearchAndRank fetches candidates matching the intent and orders them by
// score. An explicit cuisine ask that matches nothing returns an empty
// list rather than unrelated fallbacks.
func (s *RankingService) SearchAndRank(ctx context.Context, intent entities.QueryIntent, prefs *entities.UserPreference) ([]entities.RankedRestaurant, error) {
	candidates, err := s.restaurantRepo.SearchCandidates(ctx, repositories.CandidateFilter{
		Cuisines: intent.Cuisines,
		Location: intent.Location,
		Keywords: intent.Keywords,
		Limit:    candidateLimit,
	})
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 && len(intent.Cuisines) > 0 {
		return []entities.RankedRestaurant{}, nil
	}
	if len(candidates) == 0 && intent.Location == "" && len(intent.Keywords) == 0 {
		candidates, err = s.restaurantRepo.SearchCandidates(ctx, repositories.CandidateFilter{Limit: candidateLimit})
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		return []entities.RankedRestaurant{}, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, r := range candidates {
		ids = append(ids, r.ID)
	}
	ratings, err := s.reviewRepo.RatingSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	ranked := make([]entities.RankedRestaurant, 0, len(candidates))
	for _, restaurant := range candidates {
		summary := ratings[restaurant.ID]
		score, reasons := scoreRestaurant(restaurant, summary, intent, prefs)
		ranked = append(ranked, entities.RankedRestaurant{
			Restaurant:    restaurant,
			Score:         score,
			AverageRating: summary.AverageRating,
			ReviewCount:   summary.ReviewCount,
			Reasons:       reasons,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].AverageRating != ranked[j].AverageRating {
			return ranked[i].AverageRating > ranked[j].AverageRating
		}
		return ranked[i].ReviewCount > ranked[j].ReviewCount
	})
	return ranked, nil
}

// scoreRestaurant computes the weighted relevance score. Explicit intent
// signals outweigh saved preferences on the same dimension and the two
// never stack.
func scoreRestaurant(restaurant *entities.Restaurant, summary entities.RatingSummary, intent entities.QueryIntent, prefs *entities.UserPreference) (float64, []string) {
	reviewWeight := float64(summary.ReviewCount)
	if reviewWeight > 40 {
		reviewWeight = 40
	}
	score := summary.AverageRating*0.9 + reviewWeight*0.05
	reasons := []string{}

	textBlob := strings.ToLower(strings.Join([]string{
		restaurant.Name,
		restaurant.CuisineType,
		restaurant.Description,
		strings.Join(restaurant.Amenities, " "),
	}, " "))

	restaurantCuisine := strings.ToLower(restaurant.CuisineType)
	if containsAnyToken(restaurantCuisine, intent.Cuisines) {
		score += 4
		reasons = append(reasons, "Matches your cuisine request")
	} else if containsAnyToken(restaurantCuisine, lowerAll(prefs.Cuisines)) {
		score += 2
		reasons = append(reasons, "Matches your saved cuisine preferences")
	}

	if intent.PriceRange != "" && restaurant.PricingTier == intent.PriceRange {
		score += 2.5
		reasons = append(reasons, fmt.Sprintf("Within your requested budget (%s)", intent.PriceRange))
	} else if prefs.PriceRange != "" && restaurant.PricingTier == prefs.PriceRange {
		score += 1.5
		reasons = append(reasons, fmt.Sprintf("Matches your usual budget (%s)", prefs.PriceRange))
	}

	city := strings.ToLower(restaurant.City)
	if intent.Location != "" && strings.Contains(city, strings.ToLower(intent.Location)) {
		score += 2
		reasons = append(reasons, fmt.Sprintf("In your requested area (%s)", restaurant.City))
	} else {
		for _, prefLocation := range prefs.PreferredLocations {
			if prefLocation != "" && strings.Contains(city, strings.ToLower(prefLocation)) {
				score += 1.2
				reasons = append(reasons, fmt.Sprintf("In your preferred location (%s)", restaurant.City))
				break
			}
		}
	}

	for _, token := range append(append([]string{}, intent.DietaryNeeds...), lowerAll(prefs.DietaryNeeds)...) {
		if token != "" && strings.Contains(textBlob, token) {
			score += 1
			reasons = append(reasons, fmt.Sprintf("Supports %s options", token))
			break
		}
	}

	for _, token := range append(append([]string{}, intent.Ambiance...), lowerAll(prefs.Ambiance)...) {
		if token != "" && strings.Contains(textBlob, token) {
			score += 0.8
			reasons = append(reasons, fmt.Sprintf("Fits %s ambiance", token))
			break
		}
	}

	keywords := intent.Keywords
	if len(keywords) > 4 {
		keywords = keywords[:4]
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(textBlob, kw) {
			score += 0.6
		}
	}

	if intent.Occasion != "" && strings.Contains(textBlob, intent.Occasion) {
		score += 0.6
	}

	if summary.ReviewCount > 0 {
		reasons = append(reasons, fmt.Sprintf("Rated %.1f★ from %d review(s)", summary.AverageRating, summary.ReviewCount))
	}

	return score, reasons
}

func containsAnyToken(haystack string, tokens []string) bool {
	for _, token := range tokens {
		if token != "" && strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}
