package model

import "time"

// DefaultCategory is assigned to recipes created or updated without a category.
const DefaultCategory = "Uncategorized"

// Recipe represents a recipe in the database. OwnerID is the creating caterer.
type Recipe struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Ingredients []string
	Image       string
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeRequest is the body of create and update requests. Update replaces
// every field, so omitted optional fields fall back to their defaults.
type RecipeRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients,omitempty"`
	Image       string   `json:"image,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// RecipeResponse represents a recipe in API responses.
type RecipeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Ingredients []string  `json:"ingredients"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
