package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/providers"
	"github.com/dinescout/backend/internal/domain/repositories"
	apperrors "github.com/dinescout/backend/pkg/errors"
)

// fakeRestaurantRepo is an in-memory RestaurantRepository whose filtering
// mirrors the ILIKE semantics of the database adapter.
type fakeRestaurantRepo struct {
	restaurants []*entities.Restaurant
	searchCalls []repositories.CandidateFilter
}

func (f *fakeRestaurantRepo) Create(ctx context.Context, r *entities.Restaurant) error {
	f.restaurants = append(f.restaurants, r)
	return nil
}

func (f *fakeRestaurantRepo) GetByID(ctx context.Context, id string) (*entities.Restaurant, error) {
	for _, r := range f.restaurants {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("restaurant %s not found", id))
}

func (f *fakeRestaurantRepo) GetByName(ctx context.Context, name string) (*entities.Restaurant, error) {
	for _, r := range f.restaurants {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("restaurant %s not found", name))
}

func (f *fakeRestaurantRepo) Update(ctx context.Context, r *entities.Restaurant) error {
	for i, existing := range f.restaurants {
		if existing.ID == r.ID {
			f.restaurants[i] = r
			return nil
		}
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("restaurant %s not found", r.ID))
}

func (f *fakeRestaurantRepo) Delete(ctx context.Context, id string) error {
	for i, existing := range f.restaurants {
		if existing.ID == id {
			f.restaurants = append(f.restaurants[:i], f.restaurants[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("restaurant %s not found", id))
}

func (f *fakeRestaurantRepo) List(ctx context.Context, filter repositories.RestaurantFilter) ([]*entities.Restaurant, error) {
	return f.restaurants, nil
}

func (f *fakeRestaurantRepo) ListNames(ctx context.Context, limit int) ([]string, error) {
	names := make([]string, 0, len(f.restaurants))
	for _, r := range f.restaurants {
		names = append(names, r.Name)
	}
	return names, nil
}

func (f *fakeRestaurantRepo) SearchCandidates(ctx context.Context, filter repositories.CandidateFilter) ([]*entities.Restaurant, error) {
	f.searchCalls = append(f.searchCalls, filter)

	matches := []*entities.Restaurant{}
	for _, r := range f.restaurants {
		if len(filter.Cuisines) > 0 {
			matched := false
			for _, cuisine := range filter.Cuisines {
				if strings.Contains(strings.ToLower(r.CuisineType), strings.ToLower(cuisine)) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(r.City), strings.ToLower(filter.Location)) {
			continue
		}
		if len(filter.Keywords) > 0 && len(filter.Cuisines) == 0 && filter.Location == "" {
			blob := strings.ToLower(r.Name + " " + r.CuisineType + " " + r.Description + " " + strings.Join(r.Amenities, " "))
			matched := false
			for _, kw := range filter.Keywords {
				if strings.Contains(blob, strings.ToLower(kw)) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		matches = append(matches, r)
	}
	return matches, nil
}

type fakeReviewRepo struct {
	summaries map[string]entities.RatingSummary
	reviews   []*entities.Review
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *entities.Review) error {
	f.reviews = append(f.reviews, review)
	return nil
}

func (f *fakeReviewRepo) ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entities.Review, error) {
	var out []*entities.Review
	for _, r := range f.reviews {
		if r.RestaurantID == restaurantID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) RatingSummaries(ctx context.Context, ids []string) (map[string]entities.RatingSummary, error) {
	out := map[string]entities.RatingSummary{}
	for _, id := range ids {
		if summary, ok := f.summaries[id]; ok {
			out[id] = summary
		}
	}
	return out, nil
}

type fakePreferenceRepo struct {
	prefs map[string]*entities.UserPreference
}

func (f *fakePreferenceRepo) GetByUserID(ctx context.Context, userID string) (*entities.UserPreference, error) {
	if pref, ok := f.prefs[userID]; ok {
		return pref, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("preferences for user %s not found", userID))
}

func (f *fakePreferenceRepo) Upsert(ctx context.Context, pref *entities.UserPreference) error {
	if f.prefs == nil {
		f.prefs = map[string]*entities.UserPreference{}
	}
	f.prefs[pref.UserID] = pref
	return nil
}

type fakeChatModel struct {
	response string
	err      error
	calls    int
}

func (f *fakeChatModel) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	f.calls++
	return f.response, f.err
}

type fakeWebSearch struct {
	results []providers.WebSearchResult
	err     error
	queries []string
}

func (f *fakeWebSearch) Search(ctx context.Context, query string, maxResults int) ([]providers.WebSearchResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > maxResults {
		return f.results[:maxResults], nil
	}
	return f.results, nil
}
