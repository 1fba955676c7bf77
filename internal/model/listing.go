package model

import "time"

// Listing is a property entered for content generation.
// Immutable after creation except for its generation children.
type Listing struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Address     string    `json:"address"`
	Price       string    `json:"price"`
	Beds        int       `json:"beds"`
	Baths       float64   `json:"baths"`
	Sqft        int       `json:"sqft"`
	Description string    `json:"description"`
	Features    string    `json:"features"`
	CreatedAt   time.Time `json:"created_at"`

	// Generations is populated on reads that include children.
	Generations []*Generation `json:"generations,omitempty"`
}
