package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/providers"
	"github.com/dinescout/backend/internal/domain/repositories"
	"github.com/dinescout/backend/internal/infrastructure/observability"
	apperrors "github.com/dinescout/backend/pkg/errors"
)

const (
	maxSuggestions    = 5
	maxEnriched       = 3
	snippetMaxLength  = 220
	replyTemperature  = 0.35
	historyReplyTurns = 8
)

// AssistantService orchestrates a chat turn: follow-up resolution first,
// otherwise intent extraction, candidate ranking, optional live web
// enrichment, and reply composition. The chat model and web search
// providers are optional; absence of either degrades to deterministic
// output, never to an error.
type AssistantService struct {
	restaurantRepo repositories.RestaurantRepository
	reviewRepo     repositories.ReviewRepository
	preferenceRepo repositories.PreferenceRepository
	intents        *IntentService
	ranking        *RankingService
	chatModel      providers.ChatModelProvider
	webSearch      providers.WebSearchProvider
}

// NewAssistantService creates a new assistant service.
func NewAssistantService(
	restaurantRepo repositories.RestaurantRepository,
	reviewRepo repositories.ReviewRepository,
	preferenceRepo repositories.PreferenceRepository,
	intents *IntentService,
	ranking *RankingService,
	chatModel providers.ChatModelProvider,
	webSearch providers.WebSearchProvider,
) *AssistantService {
	return &AssistantService{
		restaurantRepo: restaurantRepo,
		reviewRepo:     reviewRepo,
		preferenceRepo: preferenceRepo,
		intents:        intents,
		ranking:        ranking,
		chatModel:      chatModel,
		webSearch:      webSearch,
	}
}

// Chat handles one conversational turn for a user.
func (s *AssistantService) Chat(ctx context.Context, userID, message string, history []entities.ConversationTurn) (*entities.ChatResponse, error) {
	ctx, span := observability.StartSpan(ctx, "AssistantService.Chat")
	defer span.End()

	cleanMessage := strings.TrimSpace(message)
	if cleanMessage == "" {
		return nil, apperrors.NewValidationError("Message cannot be empty.")
	}

	prefs, err := s.loadPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	followup, err := s.handleAttributeFollowup(ctx, cleanMessage, history, prefs)
	if err != nil {
		return nil, err
	}
	if followup != nil {
		return followup, nil
	}

	intent := s.intents.Extract(ctx, cleanMessage, history, prefs)

	ranked, err := s.ranking.SearchAndRank(ctx, intent, prefs)
	if err != nil {
		return nil, err
	}

	topRanked := ranked
	if len(topRanked) > maxSuggestions {
		topRanked = topRanked[:maxSuggestions]
	}

	liveContext := s.fetchLiveContext(ctx, topRanked, intent)

	suggestions := make([]entities.SuggestedRestaurant, 0, len(topRanked))
	for _, item := range topRanked {
		suggestions = append(suggestions, buildSuggestion(item, liveContext[item.Restaurant.ID]))
	}

	reply := s.composeReply(ctx, cleanMessage, history, prefs, intent, suggestions, liveContext)
	return &entities.ChatResponse{
		Reply:                reply,
		SuggestedRestaurants: suggestions,
	}, nil
}

// loadPreferences returns the user's saved preferences, falling back to
// the neutral defaults for users who have not saved any.
func (s *AssistantService) loadPreferences(ctx context.Context, userID string) (*entities.UserPreference, error) {
	prefs, err := s.preferenceRepo.GetByUserID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return entities.DefaultUserPreference(userID), nil
		}
		return nil, err
	}
	return prefs, nil
}

// fetchLiveContext gathers short web snippets for the top few candidates.
// Lookups are best effort; failures only drop enrichment for that entry.
func (s *AssistantService) fetchLiveContext(ctx context.Context, ranked []entities.RankedRestaurant, intent entities.QueryIntent) map[string][]string {
	context := map[string][]string{}
	if s.webSearch == nil {
		return context
	}

	top := ranked
	if len(top) > maxEnriched {
		top = top[:maxEnriched]
	}
	for _, item := range top {
		restaurant := item.Restaurant
		cityHint := restaurant.City
		if cityHint == "" {
			cityHint = intent.Location
		}
		query := fmt.Sprintf("%s %s restaurant hours special events", restaurant.Name, cityHint)

		results, err := s.webSearch.Search(ctx, query, 2)
		if err != nil {
			log.Warn().Err(err).Str("restaurant", restaurant.Name).Msg("live context lookup failed")
			continue
		}

		var snippets []string
		for _, row := range results {
			if snippet := mergeSnippet(row); snippet != "" {
				snippets = append(snippets, snippet)
			}
			if len(snippets) >= 2 {
				break
			}
		}
		if len(snippets) > 0 {
			context[restaurant.ID] = snippets
		}
	}
	return context
}

// liveHoursHint queries the web for opening hours when the catalog has no
// structured hours for the restaurant.
func (s *AssistantService) liveHoursHint(ctx context.Context, restaurant *entities.Restaurant) string {
	if s.webSearch == nil {
		return ""
	}

	query := strings.TrimSpace(fmt.Sprintf("%s %s opening hours", restaurant.Name, restaurant.City))
	results, err := s.webSearch.Search(ctx, query, 1)
	if err != nil || len(results) == 0 {
		return ""
	}
	return mergeSnippet(results[0])
}

func mergeSnippet(row providers.WebSearchResult) string {
	merged := strings.TrimSpace(strings.Trim(
		fmt.Sprintf("%s: %s", strings.TrimSpace(row.Title), strings.TrimSpace(row.Content)),
		": "))
	if merged == "" {
		return ""
	}
	return truncate(merged, snippetMaxLength)
}

func buildSuggestion(item entities.RankedRestaurant, liveSnippets []string) entities.SuggestedRestaurant {
	reasons := item.Reasons
	if len(reasons) > 2 {
		reasons = reasons[:2]
	}
	reason := strings.Join(reasons, "; ")
	if reason == "" {
		reason = "Relevant to your query and profile"
	}
	if len(liveSnippets) > 0 {
		reason += "; Live context checked via Tavily"
	}

	return entities.SuggestedRestaurant{
		ID:            item.Restaurant.ID,
		Name:          item.Restaurant.Name,
		Reason:        reason,
		AverageRating: item.AverageRating,
		PricingTier:   item.Restaurant.PricingTier,
		CuisineType:   item.Restaurant.CuisineType,
		City:          item.Restaurant.City,
	}
}

func (s *AssistantService) composeReply(
	ctx context.Context,
	message string,
	history []entities.ConversationTurn,
	prefs *entities.UserPreference,
	intent entities.QueryIntent,
	suggestions []entities.SuggestedRestaurant,
	liveContext map[string][]string,
) string {
	if reply := s.composeReplyWithModel(ctx, message, history, prefs, intent, suggestions, liveContext); reply != "" {
		return reply
	}
	return fallbackReply(suggestions)
}

func (s *AssistantService) composeReplyWithModel(
	ctx context.Context,
	message string,
	history []entities.ConversationTurn,
	prefs *entities.UserPreference,
	intent entities.QueryIntent,
	suggestions []entities.SuggestedRestaurant,
	liveContext map[string][]string,
) string {
	if s.chatModel == nil {
		return ""
	}

	turns := history
	if len(turns) > historyReplyTurns {
		turns = turns[len(turns)-historyReplyTurns:]
	}
	contextPayload := map[string]interface{}{
		"user_preferences":      prefs,
		"query_intent":          intent,
		"suggested_restaurants": suggestions,
		"live_context":          liveContext,
		"conversation_history":  turns,
		"new_message":           message,
	}
	payload, err := json.Marshal(contextPayload)
	if err != nil {
		return ""
	}

	reply, err := s.chatModel.Complete(ctx,
		"You are a restaurant recommendation assistant. "+
			"Use provided preferences, ranked restaurants, and live web context. "+
			"Be concise, conversational, and practical.",
		fmt.Sprintf("Generate a helpful response with 2-4 recommendations and short reasons.\n%s", payload),
		replyTemperature)
	if err != nil {
		log.Warn().Err(err).Msg("reply generation failed, using deterministic fallback")
		return ""
	}
	return strings.TrimSpace(reply)
}

func fallbackReply(suggestions []entities.SuggestedRestaurant) string {
	if len(suggestions) == 0 {
		return "I couldn't find a strong match yet. Try adding cuisine, budget ($-$$$$), " +
			"or location so I can narrow recommendations."
	}

	lines := []string{"Here are top matches based on your preferences and query:"}
	top := suggestions
	if len(top) > 3 {
		top = top[:3]
	}
	for i, suggestion := range top {
		var meta []string
		if suggestion.AverageRating > 0 {
			meta = append(meta, fmt.Sprintf("%.1f★", suggestion.AverageRating))
		}
		if suggestion.PricingTier != "" {
			meta = append(meta, suggestion.PricingTier)
		}
		suffix := ""
		if len(meta) > 0 {
			suffix = fmt.Sprintf(" (%s)", strings.Join(meta, ", "))
		}
		lines = append(lines, fmt.Sprintf("%d. %s%s - %s", i+1, suggestion.Name, suffix, suggestion.Reason))
	}
	return strings.Join(lines, "\n")
}

func truncate(value string, maxLen int) string {
	runes := []rune(value)
	if len(runes) <= maxLen {
		return value
	}
	return strings.TrimRight(string(runes[:maxLen-3]), " ") + "..."
}
