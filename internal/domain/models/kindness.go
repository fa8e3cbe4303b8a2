package models

import "time"

// Kindness activity types. Each maps to a fixed point value.
const (
	ActivityRecipeCooked   = "recipe_cooked"
	ActivityProductBought  = "product_bought"
	ActivityEventAttended  = "event_attended"
	ActivityFriendReferred = "friend_referred"
)

// ActivityPoints is the canonical point table.
var ActivityPoints = map[string]int{
	ActivityRecipeCooked:   10,
	ActivityProductBought:  5,
	ActivityEventAttended:  15,
	ActivityFriendReferred: 25,
}

// KindnessActivity is one append-only row of the impact ledger. Rows are never
// mutated or deleted.
type KindnessActivity struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	ActivityType  string    `json:"activity_type"`
	Points        int       `json:"points"`
	WaterSaved    float64   `json:"water_saved"`
	CO2Reduced    float64   `json:"co2_reduced"`
	AnimalsSpared float64   `json:"animals_spared"`
	RelatedID     *int64    `json:"related_id,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
