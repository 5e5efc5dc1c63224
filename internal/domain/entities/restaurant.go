package entities

import (
	"time"
)

// PricingTiers is the ordered set of valid pricing tiers.
var PricingTiers = []string{"$", "$$", "$$$", "$$$$"}

// IsValidPricingTier reports whether tier is one of the four valid tiers.
func IsValidPricingTier(tier string) bool {
	for _, t := range PricingTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// Restaurant represents a restaurant listing in the catalog
type Restaurant struct {
	ID          string            `json:"id" db:"id"`
	Name        string            `json:"name" db:"name"`
	CuisineType string            `json:"cuisine_type" db:"cuisine_type"`
	PricingTier string            `json:"pricing_tier" db:"pricing_tier"`
	Description string            `json:"description" db:"description"`
	Street      string            `json:"street" db:"street"`
	City        string            `json:"city" db:"city"`
	State       string            `json:"state" db:"state"`
	ZipCode     string            `json:"zip_code" db:"zip_code"`
	Phone       string            `json:"phone" db:"phone"`
	Email       string            `json:"email" db:"email"`
	Amenities   []string          `json:"amenities" db:"-"`
	Hours       map[string]string `json:"hours" db:"-"`
	IsActive    bool              `json:"is_active" db:"is_active"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// RatingSummary is the per-restaurant review aggregate. The average is
// rounded to 2 decimals by the review adapter; a restaurant with no
// reviews has the zero value.
type RatingSummary struct {
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// Review represents a single user review of a restaurant
type Review struct {
	ID           string    `json:"id" db:"id"`
	RestaurantID string    `json:"restaurant_id" db:"restaurant_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment" db:"comment"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
