// Package service orchestrates the ETL runs: extract records from an
// uploaded document, reconcile them against the catalog and persist them
// atomically.
package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"recetario/internal/apperr"
	"recetario/internal/domain/import/parser"
	"recetario/internal/domain/ingredient"
	"recetario/internal/domain/recipe"
)

// Import type labels reported in summaries.
const (
	TypeMeats      = "meats"
	TypeVegetables = "vegetables"
	TypeRecipes    = "recipes"
)

// purchaseUnitKG is the purchasing granularity: raw recipe quantities are
// rounded up to the nearest quarter kilogram.
const purchaseUnitKG = 0.25

// Summary reports the outcome of one import run.
type Summary struct {
	Status         string   `json:"status"`
	Type           string   `json:"type"`
	ProcessedCount int      `json:"processed_count"`
	Errors         []string `json:"errors,omitempty"`
	TotalInput     int      `json:"total_input"`
}

// Service runs the three import pipelines.
type Service struct {
	ingredients ingredient.Repository
	recipes     recipe.Repository
	logger      *slog.Logger
}

// NewService creates a new import service
func NewService(ingredients ingredient.Repository, recipes recipe.Repository, logger *slog.Logger) *Service {
	return &Service{
		ingredients: ingredients,
		recipes:     recipes,
		logger:      logger,
	}
}

// ImportMeatPrices extracts (name, price) pairs from an xlsx price sheet
// and upserts them into the ingredient catalog.
func (s *Service) ImportMeatPrices(ctx context.Context, data []byte) (*Summary, error) {
	products, err := parser.ParseMeatPrices(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ETL process failed: %w", err)
	}
	return s.upsertProducts(ctx, TypeMeats, products)
}

// ImportVegetablePrices extracts (name, price) pairs from a pdf price list
// and upserts them into the ingredient catalog.
func (s *Service) ImportVegetablePrices(ctx context.Context, data []byte) (*Summary, error) {
	products, err := parser.ParseVegetablePricesBytes(data)
	if err != nil {
		return nil, fmt.Errorf("ETL process failed: %w", err)
	}
	return s.upsertProducts(ctx, TypeVegetables, products)
}

// upsertProducts persists extracted price pairs keyed by normalized name.
// The reported count is the raw number of extracted rows, not the number
// of distinct names: duplicate labels each count once.
func (s *Service) upsertProducts(ctx context.Context, importType string, products []parser.Product) (*Summary, error) {
	ingredients := make([]ingredient.Ingredient, 0, len(products))
	for _, p := range products {
		ingredients = append(ingredients, ingredient.Ingredient{
			Name:       ingredient.NormalizeName(p.Name),
			PricePerKG: decimal.NewFromFloat(p.Price),
		})
	}

	if err := s.ingredients.UpsertBatch(ctx, ingredients); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "ETL process failed")
	}

	s.logger.Info("price import finished",
		slog.String("type", importType),
		slog.Int("processed", len(products)),
	)

	return &Summary{
		Status:         statusFor(len(products)),
		Type:           importType,
		ProcessedCount: len(products),
		TotalInput:     len(products),
	}, nil
}

// ImportRecipes parses a recipe markup document and replaces the whole
// recipe catalog with the subset that reconciles against the current
// ingredient snapshot. Recipes are accepted or rejected atomically: one
// unresolved ingredient rejects the whole recipe, and one rejected recipe
// never blocks the others.
func (s *Service) ImportRecipes(ctx context.Context, data []byte) (*Summary, error) {
	parsed := parser.ParseRecipes(string(data))

	snapshot, err := s.ingredientSnapshot(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "ETL process failed")
	}

	accepted := make([]recipe.Recipe, 0, len(parsed))
	var importErrors []string

	for _, rec := range parsed {
		items, missing := s.reconcileItems(rec.Ingredients, snapshot)
		if len(missing) > 0 {
			importErrors = append(importErrors, fmt.Sprintf(
				"Recipe '%s': ingredient (%s) not found in the ingredient catalog",
				rec.Name, strings.Join(missing, ", "),
			))
			continue
		}
		accepted = append(accepted, recipe.Recipe{
			Name:         rec.Name,
			Instructions: rec.Instructions,
			Items:        items,
		})
	}

	// The import is a full replace: the existing catalog is dropped even
	// when nothing was accepted.
	if err := s.recipes.ReplaceAll(ctx, accepted); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "ETL process failed")
	}

	s.logger.Info("recipe import finished",
		slog.Int("created", len(accepted)),
		slog.Int("rejected", len(importErrors)),
		slog.Int("total_input", len(parsed)),
	)

	return &Summary{
		Status:         statusFor(len(accepted)),
		Type:           TypeRecipes,
		ProcessedCount: len(accepted),
		Errors:         importErrors,
		TotalInput:     len(parsed),
	}, nil
}

// ingredientSnapshot loads the catalog once per run; every recipe in the
// batch reconciles against this same snapshot.
func (s *Service) ingredientSnapshot(ctx context.Context) (map[string]ingredient.Ingredient, error) {
	all, err := s.ingredients.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]ingredient.Ingredient, len(all))
	for _, ing := range all {
		snapshot[strings.ToLower(ing.Name)] = ing
	}
	s.logger.Debug("loaded ingredient snapshot", slog.Int("size", len(snapshot)))
	return snapshot, nil
}

// reconcileItems resolves parsed ingredients against the snapshot by exact
// normalized name. It returns the built line items and the original names
// of any ingredients that did not resolve.
func (s *Service) reconcileItems(parsed []parser.ParsedIngredient, snapshot map[string]ingredient.Ingredient) ([]recipe.Item, []string) {
	var items []recipe.Item
	var missing []string

	for _, ing := range parsed {
		match, ok := snapshot[ingredient.NormalizeName(ing.Name)]
		if !ok {
			missing = append(missing, ing.Name)
			continue
		}
		items = append(items, recipe.Item{
			IngredientID:       uuid.NullUUID{UUID: match.ID, Valid: true},
			QuantityRaw:        decimal.NewFromFloat(ing.QuantityKG),
			QuantityNormalized: decimal.NewFromFloat(NormalizeQuantity(ing.QuantityKG)),
		})
	}
	return items, missing
}

// NormalizeQuantity rounds a raw kilogram quantity up to the nearest
// quarter-kilogram purchasing unit. Already-aligned values are unchanged.
func NormalizeQuantity(quantityKG float64) float64 {
	return math.Ceil(quantityKG/purchaseUnitKG) * purchaseUnitKG
}

func statusFor(created int) string {
	if created > 0 {
		return "success"
	}
	return "failed"
}
