package entities

import "time"

// UserPreference holds a user's saved dining preferences. Absence of a
// record is not an error; callers fall back to DefaultUserPreference.
type UserPreference struct {
	UserID             string    `json:"user_id" db:"user_id"`
	Cuisines           []string  `json:"cuisines" db:"-"`
	PriceRange         string    `json:"price_range" db:"price_range"`
	PreferredLocations []string  `json:"preferred_locations" db:"-"`
	DietaryNeeds       []string  `json:"dietary_needs" db:"-"`
	Ambiance           []string  `json:"ambiance" db:"-"`
	SortPreference     string    `json:"sort_preference" db:"sort_preference"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultUserPreference returns the all-empty preference record used when
// a user has never saved preferences.
func DefaultUserPreference(userID string) *UserPreference {
	return &UserPreference{
		UserID:             userID,
		Cuisines:           []string{},
		PreferredLocations: []string{},
		DietaryNeeds:       []string{},
		Ambiance:           []string{},
		SortPreference:     "rating",
	}
}
