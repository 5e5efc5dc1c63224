package entities

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message in a chat conversation, most recent last.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryIntent is the structured interpretation of a user's free-text
// request. All fields are always present; empty strings and empty slices
// mean "not requested". Created fresh per turn, never persisted.
type QueryIntent struct {
	Cuisines     []string `json:"cuisines"`
	PriceRange   string   `json:"price_range"`
	Location     string   `json:"location"`
	DietaryNeeds []string `json:"dietary_needs"`
	Ambiance     []string `json:"ambiance"`
	Keywords     []string `json:"keywords"`
	Occasion     string   `json:"occasion"`
}

// RankedRestaurant is a scored candidate produced by the ranker.
type RankedRestaurant struct {
	Restaurant    *Restaurant
	Score         float64
	AverageRating float64
	ReviewCount   int
	Reasons       []string
}

// SuggestedRestaurant is a ranked suggestion as returned to the caller.
type SuggestedRestaurant struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Reason        string  `json:"reason"`
	AverageRating float64 `json:"average_rating"`
	PricingTier   string  `json:"pricing_tier,omitempty"`
	CuisineType   string  `json:"cuisine_type,omitempty"`
	City          string  `json:"city,omitempty"`
}

// ChatResponse is the assistant's reply for one turn.
type ChatResponse struct {
	Reply                string                `json:"reply"`
	SuggestedRestaurants []SuggestedRestaurant `json:"suggested_restaurants"`
}
