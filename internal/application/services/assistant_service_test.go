package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/providers"
	apperrors "github.com/dinescout/backend/pkg/errors"
)

func newTestAssistant(restaurants []*entities.Restaurant, summaries map[string]entities.RatingSummary, chatModel providers.ChatModelProvider, webSearch providers.WebSearchProvider) (*AssistantService, *fakeRestaurantRepo) {
	repo := &fakeRestaurantRepo{restaurants: restaurants}
	reviews := &fakeReviewRepo{summaries: summaries}
	prefRepo := &fakePreferenceRepo{}
	intents := NewIntentService(chatModel)
	ranking := NewRankingService(repo, reviews)
	svc := NewAssistantService(repo, reviews, prefRepo, intents, ranking, chatModel, webSearch)
	return svc, repo
}

func TestChat_BlankMessageRejected(t *testing.T) {
	svc, _ := newTestAssistant(seedRestaurants(), nil, nil, nil)

	_, err := svc.Chat(context.Background(), "u1", "   ", nil)

	assert.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestChat_WorksWithoutAnyProviders(t *testing.T) {
	svc, _ := newTestAssistant(seedRestaurants(), map[string]entities.RatingSummary{
		"r1": {AverageRating: 4.2, ReviewCount: 12},
	}, nil, nil)

	resp, err := svc.Chat(context.Background(), "u1", "recommend an italian place", nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Reply)
	assert.Len(t, resp.SuggestedRestaurants, 1)
	assert.Equal(t, "Trattoria Roma", resp.SuggestedRestaurants[0].Name)
	assert.Contains(t, resp.Reply, "1. Trattoria Roma")
}

func TestChat_NoMatchesProducesGuidanceReply(t *testing.T) {
	svc, _ := newTestAssistant(seedRestaurants(), nil, nil, nil)

	resp, err := svc.Chat(context.Background(), "u1", "recommend a french bistro", nil)

	assert.NoError(t, err)
	assert.Empty(t, resp.SuggestedRestaurants)
	assert.Contains(t, resp.Reply, "couldn't find a strong match")
}

func TestChat_ModelReplyPreferredOverFallback(t *testing.T) {
	model := &fakeChatModel{response: "How about Trattoria Roma tonight?"}
	svc, _ := newTestAssistant(seedRestaurants(), nil, model, nil)

	resp, err := svc.Chat(context.Background(), "u1", "recommend an italian place", nil)

	assert.NoError(t, err)
	assert.Equal(t, "How about Trattoria Roma tonight?", resp.Reply)
}

func TestChat_ModelErrorFallsBackToDeterministicReply(t *testing.T) {
	model := &fakeChatModel{err: assert.AnError}
	svc, _ := newTestAssistant(seedRestaurants(), nil, model, nil)

	resp, err := svc.Chat(context.Background(), "u1", "recommend an italian place", nil)

	assert.NoError(t, err)
	assert.Contains(t, resp.Reply, "Here are top matches")
}

func TestChat_LiveContextAnnotatesSuggestions(t *testing.T) {
	web := &fakeWebSearch{results: []providers.WebSearchResult{
		{Title: "Trattoria Roma", Content: "Open late on weekends"},
	}}
	svc, _ := newTestAssistant(seedRestaurants(), nil, nil, web)

	resp, err := svc.Chat(context.Background(), "u1", "recommend an italian place", nil)

	assert.NoError(t, err)
	assert.Len(t, resp.SuggestedRestaurants, 1)
	assert.Contains(t, resp.SuggestedRestaurants[0].Reason, "Live context checked via Tavily")
	assert.NotEmpty(t, web.queries)
	assert.Contains(t, web.queries[0], "Trattoria Roma")
}

func TestChat_WebSearchFailureIsIgnored(t *testing.T) {
	web := &fakeWebSearch{err: assert.AnError}
	svc, _ := newTestAssistant(seedRestaurants(), nil, nil, web)

	resp, err := svc.Chat(context.Background(), "u1", "recommend an italian place", nil)

	assert.NoError(t, err)
	assert.Len(t, resp.SuggestedRestaurants, 1)
	assert.NotContains(t, resp.SuggestedRestaurants[0].Reason, "Live context")
}

func rankedListHistory() []entities.ConversationTurn {
	return []entities.ConversationTurn{
		{Role: entities.RoleUser, Content: "recommend somewhere for dinner"},
		{Role: entities.RoleAssistant, Content: "Here are top matches based on your preferences and query:\n" +
			"1. Sushi Palace (4.5★, $$$) - Matches your cuisine request\n" +
			"2. Taco Town ($) - Relevant to your query and profile"},
	}
}

func TestChat_FollowupHoursForFirstRankedRestaurant(t *testing.T) {
	restaurants := seedRestaurants()
	restaurants[1].Hours = map[string]string{"monday": "11:00-22:00", "tuesday": "11:00-22:00"}
	svc, _ := newTestAssistant(restaurants, nil, nil, nil)

	resp, err := svc.Chat(context.Background(), "u1", "what are the hours of the first one?", rankedListHistory())

	assert.NoError(t, err)
	assert.Equal(t, "Sushi Palace hours: Monday: 11:00-22:00 | Tuesday: 11:00-22:00", resp.Reply)
	assert.Len(t, resp.SuggestedRestaurants, 1)
	assert.Equal(t, "Sushi Palace", resp.SuggestedRestaurants[0].Name)
	assert.Equal(t, "Open-hours details for your selected restaurant", resp.SuggestedRestaurants[0].Reason)
}

func TestChat_FollowupHoursUnknownWithoutWebSearch(t *testing.T) {
	svc, _ := newTestAssistant(seedRestaurants(), nil, nil, nil)

	resp, err := svc.Chat(context.Background(), "u1", "is the second one open late?", rankedListHistory())

	assert.NoError(t, err)
	assert.Contains(t, resp.Reply, "couldn't find reliable open hours for Taco Town")
}

func TestChat_FollowupHoursUsesLiveHintWhenAvailable(t *testing.T) {
	web := &fakeWebSearch{results: []providers.WebSearchResult{
		{Title: "Taco Town", Content: "Open daily 10am to midnight"},
	}}
	svc, _ := newTestAssistant(seedRestaurants(), nil, nil, web)

	resp, err := svc.Chat(context.Background(), "u1", "is the second one open late?", rankedListHistory())

	assert.NoError(t, err)
	assert.Contains(t, resp.Reply, "live context suggests: Taco Town: Open daily 10am to midnight")
}

func TestChat_FollowupByNameBeatsOrdinal(t *testing.T) {
	svc, _ := newTestAssistant(seedRestaurants(), nil, nil, nil)

	resp, err := svc.Chat(context.Background(), "u1", "where is Taco Town located?", rankedListHistory())

	assert.NoError(t, err)
	assert.Contains(t, resp.Reply, "Taco Town is")
	assert.Equal(t, "Taco Town", resp.SuggestedRestaurants[0].Name)
}

func TestChat_NewSearchVerbBypassesFollowup(t *testing.T) {
	svc, repo := newTestAssistant(seedRestaurants(), nil, nil, nil)

	resp, err := svc.Chat(context.Background(), "u1", "recommend me something new", rankedListHistory())

	assert.NoError(t, err)
	// The ranked list in history is ignored; this is a fresh search.
	assert.NotContains(t, resp.Reply, "Do you mean")
	assert.NotEmpty(t, repo.searchCalls)
}

func TestChat_PronounFollowupResolvesToTopCandidate(t *testing.T) {
	history := []entities.ConversationTurn{
		{Role: entities.RoleUser, Content: "any sushi ideas?"},
		{Role: entities.RoleAssistant, Content: "You might enjoy Sushi Palace for omakase."},
	}
	svc, _ := newTestAssistant(seedRestaurants(), nil, nil, nil)

	resp, err := svc.Chat(context.Background(), "u1", "what's its phone number?", history)

	assert.NoError(t, err)
	assert.Contains(t, resp.Reply, "Sushi Palace")
	assert.Equal(t, "Contact details for your selected restaurant", resp.SuggestedRestaurants[0].Reason)
}

func TestChat_AmbiguousFollowupAsksForClarification(t *testing.T) {
	svc, _ := newTestAssistant(seedRestaurants(), map[string]entities.RatingSummary{
		"r2": {AverageRating: 4.5, ReviewCount: 30},
	}, nil, nil)

	resp, err := svc.Chat(context.Background(), "u1", "what are the opening hours?", rankedListHistory())

	assert.NoError(t, err)
	assert.Contains(t, resp.Reply, "Do you mean: Sushi Palace, Taco Town?")
	assert.Len(t, resp.SuggestedRestaurants, 2)
	assert.Equal(t, "From your recent recommendation list", resp.SuggestedRestaurants[0].Reason)
	assert.Equal(t, 4.5, resp.SuggestedRestaurants[0].AverageRating)
}

func TestChat_FollowupWithoutContextAsksForRestaurant(t *testing.T) {
	svc, _ := newTestAssistant(seedRestaurants(), nil, nil, nil)

	resp, err := svc.Chat(context.Background(), "u1", "what are the opening hours?", nil)

	assert.NoError(t, err)
	assert.Contains(t, resp.Reply, "I need the target restaurant first")
	assert.Empty(t, resp.SuggestedRestaurants)
}

func TestChat_SavedPreferencesInfluenceRanking(t *testing.T) {
	svc, _ := newTestAssistant(seedRestaurants(), nil, nil, nil)
	svc.preferenceRepo.(*fakePreferenceRepo).prefs = map[string]*entities.UserPreference{
		"u1": {
			UserID:         "u1",
			Cuisines:       []string{"mexican"},
			SortPreference: "rating",
		},
	}

	resp, err := svc.Chat(context.Background(), "u1", "recommend tacos", nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.SuggestedRestaurants)
	assert.Equal(t, "Taco Town", resp.SuggestedRestaurants[0].Name)
	assert.Contains(t, resp.SuggestedRestaurants[0].Reason, "Matches your saved cuisine preferences")
}
