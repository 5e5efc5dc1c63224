package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dinescout/backend/internal/domain/entities"
	apperrors "github.com/dinescout/backend/pkg/errors"
)

// Follow-up topics, checked in priority order against the message.
const (
	topicHours     = "hours"
	topicLocation  = "location"
	topicContact   = "contact"
	topicRating    = "rating"
	topicPrice     = "price"
	topicAmenities = "amenities"
	topicCuisine   = "cuisine"
	topicSummary   = "summary"
)

type followupTopic struct {
	name   string
	tokens []string
}

var followupTopicOrder = []followupTopic{
	{topicHours, []string{"hour", "hours", "open", "opening", "close", "closing", "time", "schedule"}},
	{topicLocation, []string{"where", "location", "located", "address"}},
	{topicContact, []string{"contact", "phone", "number", "call", "email"}},
	{topicRating, []string{"rating", "rated", "stars", "star", "score", "average"}},
	{topicPrice, []string{"price", "cost", "expensive", "cheap", "budget", "$"}},
	{topicAmenities, []string{"amenity", "amenities", "parking", "wifi", "outdoor", "patio", "vegan", "vegetarian", "halal", "romantic", "family", "casual", "quiet", "trendy"}},
	{topicCuisine, []string{"cuisine", "food", "dish", "dishes"}},
}

var pronounTokens = []string{"it", "its", "that", "this", "one", "ones"}

var ordinalHints = []struct {
	token string
	index int
}{
	{"first", 0}, {"1st", 0},
	{"second", 1}, {"2nd", 1},
	{"third", 2}, {"3rd", 2},
}

var newSearchHints = []string{"recommend", "suggest", "find", "show", "search", "looking for", "i want"}

var rankedNamePattern = regexp.MustCompile(`(?m)^\s*\d+\.\s*([^(\n-]+?)(?:\s*\(|\s*-|$)`)

var weekdayOrder = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// handleAttributeFollowup answers attribute questions about a restaurant
// named or referenced in the preceding turns. A nil response means the
// message is not a follow-up and should go through the full search flow.
func (s *AssistantService) handleAttributeFollowup(ctx context.Context, message string, history []entities.ConversationTurn, prefs *entities.UserPreference) (*entities.ChatResponse, error) {
	if looksLikeNewSearchRequest(message) {
		return nil, nil
	}

	topic := detectFollowupTopic(message)

	rankedNames, err := s.latestRankedNames(ctx, history)
	if err != nil {
		return nil, err
	}
	if len(rankedNames) == 0 {
		rankedNames, err = s.inferContextNames(ctx, history, prefs)
		if err != nil {
			return nil, err
		}
	}

	// An attribute question with no resolvable context gets a clarification
	// rather than a silent global re-ranking.
	if topic != "" && len(rankedNames) == 0 {
		return &entities.ChatResponse{
			Reply: "I can help with that, but I need the target restaurant first. " +
				"Please mention the name, or ask for a new recommendation.",
			SuggestedRestaurants: []entities.SuggestedRestaurant{},
		}, nil
	}
	if len(rankedNames) == 0 {
		return nil, nil
	}

	if topic == "" && !hasReferenceHint(message, rankedNames) {
		return nil, nil
	}

	referenced := resolveReferencedName(message, rankedNames)
	if referenced == "" && topic != "" && len(rankedNames) == 1 {
		referenced = rankedNames[0]
	}
	if referenced == "" {
		return s.followupClarification(ctx, rankedNames)
	}

	restaurant, err := s.restaurantRepo.GetByName(ctx, strings.TrimSpace(referenced))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return s.followupClarification(ctx, rankedNames)
		}
		return nil, err
	}

	summaries, err := s.reviewRepo.RatingSummaries(ctx, []string{restaurant.ID})
	if err != nil {
		return nil, err
	}
	summary := summaries[restaurant.ID]

	if topic == "" {
		topic = topicSummary
	}
	reply, reason := s.attributeReply(ctx, restaurant, topic, summary)

	return &entities.ChatResponse{
		Reply: reply,
		SuggestedRestaurants: []entities.SuggestedRestaurant{{
			ID:            restaurant.ID,
			Name:          restaurant.Name,
			Reason:        reason,
			AverageRating: summary.AverageRating,
			PricingTier:   restaurant.PricingTier,
			CuisineType:   restaurant.CuisineType,
			City:          restaurant.City,
		}},
	}, nil
}

func detectFollowupTopic(message string) string {
	lowered := strings.ToLower(message)
	for _, topic := range followupTopicOrder {
		for _, token := range topic.tokens {
			if strings.Contains(lowered, token) {
				return topic.name
			}
		}
	}
	return ""
}

func looksLikeNewSearchRequest(message string) bool {
	lowered := strings.ToLower(message)
	hasSearchVerb := false
	for _, hint := range newSearchHints {
		if strings.Contains(lowered, hint) {
			hasSearchVerb = true
			break
		}
	}
	if !hasSearchVerb {
		return false
	}
	for _, token := range pronounTokens {
		if strings.Contains(lowered, token) {
			return false
		}
	}
	for _, hint := range ordinalHints {
		if strings.Contains(lowered, hint.token) {
			return false
		}
	}
	return true
}

func hasReferenceHint(message string, rankedNames []string) bool {
	lowered := strings.ToLower(message)
	for _, name := range rankedNames {
		if strings.Contains(lowered, strings.ToLower(name)) {
			return true
		}
	}
	for _, token := range pronounTokens {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	for _, hint := range ordinalHints {
		if strings.Contains(lowered, hint.token) {
			return true
		}
	}
	return strings.Contains(lowered, "last one") ||
		strings.Contains(lowered, "that one") ||
		strings.Contains(lowered, "this one")
}

// resolveReferencedName maps the message onto one of the ranked names:
// literal name first, then ordinals, then last/top/best, then pronouns.
func resolveReferencedName(message string, rankedNames []string) string {
	lowered := strings.ToLower(message)
	for _, name := range rankedNames {
		if strings.Contains(lowered, strings.ToLower(name)) {
			return name
		}
	}

	for _, hint := range ordinalHints {
		if strings.Contains(lowered, hint.token) && hint.index < len(rankedNames) {
			return rankedNames[hint.index]
		}
	}

	if strings.Contains(lowered, "last") {
		return rankedNames[len(rankedNames)-1]
	}
	if strings.Contains(lowered, "top") || strings.Contains(lowered, "best") {
		return rankedNames[0]
	}

	for _, token := range pronounTokens {
		if strings.Contains(lowered, token) {
			return rankedNames[0]
		}
	}
	return ""
}

// latestRankedNames recovers restaurant names from the most recent
// assistant turn: numbered-list entries first, then catalog-name
// substring matches.
func (s *AssistantService) latestRankedNames(ctx context.Context, history []entities.ConversationTurn) ([]string, error) {
	var assistantMessage string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == entities.RoleAssistant {
			assistantMessage = history[i].Content
			break
		}
	}
	if assistantMessage == "" {
		return nil, nil
	}
	if ranked := extractRankedNames(assistantMessage); len(ranked) > 0 {
		return ranked, nil
	}
	return s.mentionedRestaurantNames(ctx, assistantMessage, 5)
}

func extractRankedNames(text string) []string {
	var names []string
	for _, match := range rankedNamePattern.FindAllStringSubmatch(text, -1) {
		if name := strings.TrimSpace(match[1]); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// mentionedRestaurantNames finds catalog names appearing verbatim in the
// text, ordered by first occurrence with longer names winning ties.
func (s *AssistantService) mentionedRestaurantNames(ctx context.Context, text string, maxNames int) ([]string, error) {
	lowered := strings.ToLower(text)
	if strings.TrimSpace(lowered) == "" {
		return nil, nil
	}

	names, err := s.restaurantRepo.ListNames(ctx, 500)
	if err != nil {
		return nil, err
	}

	type match struct {
		index int
		name  string
	}
	var matches []match
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if idx := strings.Index(lowered, strings.ToLower(name)); idx >= 0 {
			matches = append(matches, match{index: idx, name: name})
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].index != matches[j].index {
			return matches[i].index < matches[j].index
		}
		return len(matches[i].name) > len(matches[j].name)
	})

	deduped := []string{}
	seen := make(map[string]struct{})
	for _, m := range matches {
		key := strings.ToLower(m.name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, m.name)
		if len(deduped) >= maxNames {
			break
		}
	}
	return deduped, nil
}

// inferContextNames reconstructs likely candidates from the last
// search-like user message when the assistant turn carried no names.
func (s *AssistantService) inferContextNames(ctx context.Context, history []entities.ConversationTurn, prefs *entities.UserPreference) ([]string, error) {
	var previousUserMessage string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == entities.RoleUser {
			previousUserMessage = history[i].Content
			break
		}
	}
	if strings.TrimSpace(previousUserMessage) == "" {
		return nil, nil
	}

	intent := s.intents.ExtractHeuristic(previousUserMessage, prefs)
	if !HasStructuredFilters(intent) {
		return nil, nil
	}

	ranked, err := s.ranking.SearchAndRank(ctx, intent, prefs)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, row := range ranked {
		if row.Restaurant != nil && row.Restaurant.Name != "" {
			names = append(names, row.Restaurant.Name)
		}
		if len(names) >= 3 {
			break
		}
	}
	return names, nil
}

func (s *AssistantService) followupClarification(ctx context.Context, rankedNames []string) (*entities.ChatResponse, error) {
	shortNames := rankedNames
	if len(shortNames) > 3 {
		shortNames = shortNames[:3]
	}
	suggestions, err := s.followupSuggestions(ctx, shortNames)
	if err != nil {
		return nil, err
	}
	return &entities.ChatResponse{
		Reply: "I can help with details, but I need the target restaurant. " +
			fmt.Sprintf("Do you mean: %s? You can say first/second or the exact name.", strings.Join(shortNames, ", ")),
		SuggestedRestaurants: suggestions,
	}, nil
}

func (s *AssistantService) followupSuggestions(ctx context.Context, names []string) ([]entities.SuggestedRestaurant, error) {
	suggestions := []entities.SuggestedRestaurant{}
	for _, name := range names {
		restaurant, err := s.restaurantRepo.GetByName(ctx, name)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		summaries, err := s.reviewRepo.RatingSummaries(ctx, []string{restaurant.ID})
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, entities.SuggestedRestaurant{
			ID:            restaurant.ID,
			Name:          restaurant.Name,
			Reason:        "From your recent recommendation list",
			AverageRating: summaries[restaurant.ID].AverageRating,
			PricingTier:   restaurant.PricingTier,
			CuisineType:   restaurant.CuisineType,
			City:          restaurant.City,
		})
	}
	return suggestions, nil
}

func (s *AssistantService) attributeReply(ctx context.Context, restaurant *entities.Restaurant, topic string, summary entities.RatingSummary) (string, string) {
	switch topic {
	case topicHours:
		return s.hoursReply(ctx, restaurant), "Open-hours details for your selected restaurant"
	case topicLocation:
		return locationReply(restaurant), "Location details for your selected restaurant"
	case topicContact:
		return contactReply(restaurant), "Contact details for your selected restaurant"
	case topicRating:
		return ratingReply(restaurant, summary), "Rating details for your selected restaurant"
	case topicPrice:
		return priceReply(restaurant), "Pricing details for your selected restaurant"
	case topicAmenities:
		return amenitiesReply(restaurant), "Amenities details for your selected restaurant"
	case topicCuisine:
		return cuisineReply(restaurant), "Cuisine details for your selected restaurant"
	}
	return summaryReply(restaurant), "Details for your selected restaurant"
}

func locationReply(restaurant *entities.Restaurant) string {
	var parts []string
	for _, part := range []string{restaurant.Street, restaurant.City, restaurant.State, restaurant.ZipCode} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) > 0 {
		return fmt.Sprintf("%s is located in %s.", restaurant.Name, strings.Join(parts, ", "))
	}
	if restaurant.City != "" {
		return fmt.Sprintf("%s is in %s.", restaurant.Name, restaurant.City)
	}
	return fmt.Sprintf("I couldn't find a full location for %s, but you can open its detail card.", restaurant.Name)
}

func (s *AssistantService) hoursReply(ctx context.Context, restaurant *entities.Restaurant) string {
	if pairs := formatHours(restaurant.Hours); len(pairs) > 0 {
		return fmt.Sprintf("%s hours: %s", restaurant.Name, strings.Join(pairs, " | "))
	}

	if hint := s.liveHoursHint(ctx, restaurant); hint != "" {
		return fmt.Sprintf("I don't have structured hours in our DB, but live context suggests: %s", hint)
	}
	return fmt.Sprintf(
		"I couldn't find reliable open hours for %s in our local data. Please check the official listing before visiting.",
		restaurant.Name,
	)
}

// formatHours renders "Day: hours" pairs in canonical weekday order,
// unknown keys after in alphabetical order, at most seven entries.
func formatHours(hours map[string]string) []string {
	if len(hours) == 0 {
		return nil
	}

	known := make(map[string]int, len(weekdayOrder))
	for i, day := range weekdayOrder {
		known[day] = i
	}

	keys := make([]string, 0, len(hours))
	for day, value := range hours {
		if day == "" || strings.TrimSpace(value) == "" {
			continue
		}
		keys = append(keys, day)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		oi, iok := known[strings.ToLower(keys[i])]
		oj, jok := known[strings.ToLower(keys[j])]
		if iok && jok {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, len(keys))
	for _, day := range keys {
		pairs = append(pairs, fmt.Sprintf("%s: %s", titleCase(day), hours[day]))
		if len(pairs) >= 7 {
			break
		}
	}
	return pairs
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}

func contactReply(restaurant *entities.Restaurant) string {
	var bits []string
	if restaurant.Phone != "" {
		bits = append(bits, fmt.Sprintf("phone: %s", restaurant.Phone))
	}
	if restaurant.Email != "" {
		bits = append(bits, fmt.Sprintf("email: %s", restaurant.Email))
	}
	if len(bits) > 0 {
		return fmt.Sprintf("%s contact info: %s", restaurant.Name, strings.Join(bits, " | "))
	}
	return fmt.Sprintf("I couldn't find direct contact details for %s in our local data.", restaurant.Name)
}

func ratingReply(restaurant *entities.Restaurant, summary entities.RatingSummary) string {
	if summary.ReviewCount > 0 {
		return fmt.Sprintf("%s currently averages %.1f★ from %d review(s).",
			restaurant.Name, summary.AverageRating, summary.ReviewCount)
	}
	return fmt.Sprintf("%s does not have ratings yet.", restaurant.Name)
}

func priceReply(restaurant *entities.Restaurant) string {
	if restaurant.PricingTier != "" {
		return fmt.Sprintf("%s is in the %s price tier.", restaurant.Name, restaurant.PricingTier)
	}
	return fmt.Sprintf("I don't have pricing tier data for %s yet.", restaurant.Name)
}

func cuisineReply(restaurant *entities.Restaurant) string {
	if restaurant.CuisineType != "" {
		return fmt.Sprintf("%s serves %s cuisine.", restaurant.Name, restaurant.CuisineType)
	}
	return fmt.Sprintf("I don't have a cuisine label recorded for %s.", restaurant.Name)
}

func amenitiesReply(restaurant *entities.Restaurant) string {
	var amenities []string
	for _, item := range restaurant.Amenities {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			amenities = append(amenities, trimmed)
		}
	}
	if len(amenities) > 0 {
		if len(amenities) > 8 {
			amenities = amenities[:8]
		}
		return fmt.Sprintf("%s amenities: %s", restaurant.Name, strings.Join(amenities, ", "))
	}

	var textBits []string
	for _, bit := range []string{restaurant.Description, restaurant.CuisineType} {
		if bit != "" {
			textBits = append(textBits, bit)
		}
	}
	if len(textBits) > 0 {
		return fmt.Sprintf("I don't have structured amenities for %s, but here's what I know: %s",
			restaurant.Name, strings.Join(textBits, " "))
	}
	return fmt.Sprintf("I don't have amenities data for %s yet.", restaurant.Name)
}

func summaryReply(restaurant *entities.Restaurant) string {
	location := restaurant.City
	if location == "" {
		location = "unknown location"
	}
	cuisine := restaurant.CuisineType
	if cuisine == "" {
		cuisine = "unspecified cuisine"
	}
	price := restaurant.PricingTier
	if price == "" {
		price = "unknown price tier"
	}
	return fmt.Sprintf("%s: %s, %s, in %s. You can ask me for its location, open hours, contact, price, or amenities.",
		restaurant.Name, cuisine, price, location)
}
