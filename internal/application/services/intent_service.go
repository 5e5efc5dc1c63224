package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/dinescout/backend/internal/domain/entities"
	"github.com/dinescout/backend/internal/domain/providers"
)

// defaultCuisines seeds the cuisine vocabulary alongside the user's saved
// cuisines.
var defaultCuisines = []string{
	"american", "chinese", "french", "indian", "italian", "japanese",
	"korean", "mediterranean", "mexican", "thai", "vietnamese",
}

var defaultDietary = []string{
	"vegetarian", "vegan", "halal", "gluten-free", "gluten free",
	"kosher", "keto", "dairy-free", "dairy free",
}

var defaultAmbiance = []string{
	"casual", "fine dining", "family-friendly", "family friendly",
	"romantic", "quiet", "trendy", "outdoor",
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "best": {}, "by": {}, "for": {},
	"from": {}, "i": {}, "in": {}, "is": {}, "it": {}, "me": {}, "near": {},
	"of": {}, "on": {}, "place": {}, "please": {}, "recommend": {},
	"restaurant": {}, "restaurants": {}, "show": {}, "suggest": {},
	"something": {}, "the": {}, "to": {}, "find": {}, "want": {}, "with": {},
}

// occasionTokens are checked in order; the first hit wins.
var occasionTokens = []string{
	"anniversary", "birthday", "date", "dinner", "lunch", "brunch", "tonight",
}

var (
	priceTierPattern = regexp.MustCompile(`\${1,4}`)
	locationPattern  = regexp.MustCompile(`(?i)\b(?:in|near|around)\s+([a-zA-Z][a-zA-Z\s]{1,40})`)
	wordPattern      = regexp.MustCompile(`[a-zA-Z][a-zA-Z\-]{2,}`)
	jsonObjectBlock  = regexp.MustCompile(`(?s)\{.*\}`)
)

const (
	maxIntentListLen = 6
	maxIntentKeyword = 8
	heuristicKeyword = 6
)

var (
	intentLLMFailOnce    sync.Once
	intentLLMFailCounter metric.Int64Counter
)

// IntentService converts a raw message plus conversation context into a
// structured query intent. The chat model is optional; with a nil provider
// the service is purely heuristic and never touches the network.
type IntentService struct {
	chatModel providers.ChatModelProvider
}

// NewIntentService creates a new intent service.
func NewIntentService(chatModel providers.ChatModelProvider) *IntentService {
	return &IntentService{chatModel: chatModel}
}

// Extract interprets a user message. It never fails; on any provider
// problem it returns the heuristic-only interpretation.
func (s *IntentService) Extract(ctx context.Context, message string, history []entities.ConversationTurn, prefs *entities.UserPreference) entities.QueryIntent {
	heuristic := s.ExtractHeuristic(message, prefs)
	llm, ok := s.extractWithModel(ctx, message, history, prefs)
	if !ok {
		return heuristic
	}
	return mergeWithMessagePriority(llm, heuristic)
}

// ExtractHeuristic runs the deterministic keyword/regex pass only.
func (s *IntentService) ExtractHeuristic(message string, prefs *entities.UserPreference) entities.QueryIntent {
	lowered := strings.ToLower(message)

	cuisineVocab := buildVocabulary(prefs.Cuisines, defaultCuisines)
	dietaryVocab := buildVocabulary(prefs.DietaryNeeds, defaultDietary)
	ambianceVocab := buildVocabulary(prefs.Ambiance, defaultAmbiance)

	intent := entities.QueryIntent{
		Cuisines:     matchVocabulary(lowered, cuisineVocab),
		DietaryNeeds: matchVocabulary(lowered, dietaryVocab),
		Ambiance:     matchVocabulary(lowered, ambianceVocab),
		Keywords:     []string{},
	}

	if match := priceTierPattern.FindString(message); entities.IsValidPricingTier(match) {
		intent.PriceRange = match
	}

	if m := locationPattern.FindStringSubmatch(message); m != nil {
		intent.Location = strings.Trim(m[1], " .,!?")
	}

	for _, word := range wordPattern.FindAllString(lowered, -1) {
		if _, skip := stopWords[word]; skip {
			continue
		}
		intent.Keywords = append(intent.Keywords, word)
		if len(intent.Keywords) >= heuristicKeyword {
			break
		}
	}

	for _, token := range occasionTokens {
		if strings.Contains(lowered, token) {
			intent.Occasion = token
			break
		}
	}

	return NormalizeIntent(intent)
}

// HasStructuredFilters reports whether the intent carries at least one
// non-keyword filter.
func HasStructuredFilters(intent entities.QueryIntent) bool {
	return len(intent.Cuisines) > 0 ||
		intent.Location != "" ||
		intent.PriceRange != "" ||
		len(intent.DietaryNeeds) > 0 ||
		len(intent.Ambiance) > 0
}

func (s *IntentService) extractWithModel(ctx context.Context, message string, history []entities.ConversationTurn, prefs *entities.UserPreference) (entities.QueryIntent, bool) {
	if s.chatModel == nil {
		return entities.QueryIntent{}, false
	}

	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return entities.QueryIntent{}, false
	}

	turns := history
	if len(turns) > 6 {
		turns = turns[len(turns)-6:]
	}
	var historyBlob strings.Builder
	for i, turn := range turns {
		if i > 0 {
			historyBlob.WriteString("\n")
		}
		historyBlob.WriteString(turn.Role + ": " + turn.Content)
	}
	historyText := historyBlob.String()
	if historyText == "" {
		historyText = "(none)"
	}

	prompt := fmt.Sprintf(
		"Extract restaurant search intent from the user message and conversation.\n"+
			"Return JSON only with keys:\n"+
			"cuisines (array), price_range (one of \"$\",\"$$\",\"$$$\",\"$$$$\" or null),\n"+
			"location (string or null), dietary_needs (array), ambiance (array),\n"+
			"keywords (array), occasion (string or null).\n\n"+
			"User preferences: %s\nConversation history:\n%s\nUser message: %s\n",
		prefsJSON, historyText, message,
	)

	text, err := s.chatModel.Complete(ctx,
		"You parse restaurant recommendation intent. Output valid JSON only.",
		prompt, 0.1)
	if err != nil {
		recordIntentLLMFailure(ctx)
		return entities.QueryIntent{}, false
	}

	intent, ok := parseIntentJSON(text)
	if !ok {
		recordIntentLLMFailure(ctx)
		return entities.QueryIntent{}, false
	}
	return NormalizeIntent(intent), true
}

// parseIntentJSON decodes an intent object defensively: first the whole
// document, then the first top-level {...} block.
func parseIntentJSON(raw string) (entities.QueryIntent, bool) {
	var intent entities.QueryIntent
	if raw == "" {
		return intent, false
	}
	if err := json.Unmarshal([]byte(raw), &intent); err == nil {
		return intent, true
	}

	block := jsonObjectBlock.FindString(raw)
	if block == "" {
		return intent, false
	}
	intent = entities.QueryIntent{}
	if err := json.Unmarshal([]byte(block), &intent); err != nil {
		return entities.QueryIntent{}, false
	}
	return intent, true
}

// mergeWithMessagePriority blends a model-derived intent with the
// heuristic one. The literal current message must never be overridden by
// stale inference from older turns, so heuristic list matches and scalars
// win whenever they fired.
func mergeWithMessagePriority(llm, heuristic entities.QueryIntent) entities.QueryIntent {
	merged := llm

	if h := cleanList(heuristic.Cuisines); len(h) > 0 {
		merged.Cuisines = h
	} else {
		merged.Cuisines = cleanList(merged.Cuisines)
	}
	if h := cleanList(heuristic.DietaryNeeds); len(h) > 0 {
		merged.DietaryNeeds = h
	} else {
		merged.DietaryNeeds = cleanList(merged.DietaryNeeds)
	}
	if h := cleanList(heuristic.Ambiance); len(h) > 0 {
		merged.Ambiance = h
	} else {
		merged.Ambiance = cleanList(merged.Ambiance)
	}

	keywords := append(cleanList(heuristic.Keywords), cleanList(llm.Keywords)...)
	merged.Keywords = capList(dedupe(keywords), maxIntentKeyword)

	if heuristic.PriceRange != "" {
		merged.PriceRange = heuristic.PriceRange
	}
	if heuristic.Location != "" {
		merged.Location = heuristic.Location
	}
	if heuristic.Occasion != "" {
		merged.Occasion = heuristic.Occasion
	}

	return NormalizeIntent(merged)
}

// NormalizeIntent lower-cases, trims, de-duplicates and length-caps all
// list fields and validates scalars. It is idempotent.
func NormalizeIntent(intent entities.QueryIntent) entities.QueryIntent {
	out := entities.QueryIntent{
		Cuisines:     capList(cleanList(intent.Cuisines), maxIntentListLen),
		DietaryNeeds: capList(cleanList(intent.DietaryNeeds), maxIntentListLen),
		Ambiance:     capList(cleanList(intent.Ambiance), maxIntentListLen),
		Keywords:     capList(cleanList(intent.Keywords), maxIntentKeyword),
		Location:     strings.TrimSpace(intent.Location),
		Occasion:     strings.ToLower(strings.TrimSpace(intent.Occasion)),
	}
	if entities.IsValidPricingTier(intent.PriceRange) {
		out.PriceRange = intent.PriceRange
	}
	return out
}

func buildVocabulary(saved, defaults []string) []string {
	seen := make(map[string]struct{})
	for _, term := range saved {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			seen[term] = struct{}{}
		}
	}
	for _, term := range defaults {
		seen[term] = struct{}{}
	}

	vocab := make([]string, 0, len(seen))
	for term := range seen {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)
	return vocab
}

func matchVocabulary(lowered string, vocab []string) []string {
	matched := []string{}
	for _, term := range vocab {
		if strings.Contains(lowered, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

func cleanList(values []string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, raw := range values {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

func dedupe(values []string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func capList(values []string, max int) []string {
	if len(values) > max {
		return values[:max]
	}
	return values
}

func initIntentLLMFailCounter() {
	meter := otel.Meter("github.com/dinescout/backend/assistant")
	counter, err := meter.Int64Counter(
		"assistant.intent.llm_failures",
		metric.WithDescription("Count of model intent extractions that fell back to heuristics"),
	)
	if err == nil {
		intentLLMFailCounter = counter
	}
}

func recordIntentLLMFailure(ctx context.Context) {
	intentLLMFailOnce.Do(initIntentLLMFailCounter)
	if intentLLMFailCounter == nil {
		return
	}
	intentLLMFailCounter.Add(ctx, 1)
}
