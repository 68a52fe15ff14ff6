// Package ingredient holds the canonical ingredient catalog: the price table
// that recipe imports reconcile against.
package ingredient

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ingredient is one row of the canonical price table. Name is stored
// normalized and is the unique upsert key.
type Ingredient struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	PricePerKG decimal.Decimal `json:"price_per_kg"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NormalizeName produces the reconciliation key for an ingredient name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
