// Package recipe holds the persisted recipe catalog and its line items.
package recipe

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recipe is a persisted recipe header with its line items.
type Recipe struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Items        []Item    `json:"items"`
}

// Item links a recipe to one catalog ingredient. The ingredient reference
// is nullable: when the ingredient is later deleted the item survives and
// is excluded from cost calculations.
type Item struct {
	ID                 uuid.UUID           `json:"id"`
	RecipeID           uuid.UUID           `json:"recipe_id"`
	IngredientID       uuid.NullUUID       `json:"ingredient_id"`
	IngredientName     *string             `json:"ingredient_name,omitempty"`
	PricePerKG         decimal.NullDecimal `json:"price_per_kg,omitempty"`
	QuantityRaw        decimal.Decimal     `json:"quantity_raw"`
	QuantityNormalized decimal.Decimal     `json:"quantity_normalized"`
}
