// Package pricing computes the cost of a persisted recipe in ARS and USD
// using a dated exchange rate.
package pricing

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"recetario/internal/apperr"
	"recetario/internal/domain/recipe"
	"recetario/pkg/exchange"
)

// rateWindowDays bounds how far back a rate may be requested; the upstream
// source is assumed to retain only recent datasets.
const rateWindowDays = 30

// RecipeReader is the read-side of the recipe repository the calculator
// needs.
type RecipeReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)
}

// Result is the cost breakdown returned to callers. Totals are
// double-precision for transport; accumulation is decimal throughout.
type Result struct {
	RecipeName   string  `json:"recipe_name"`
	TotalARS     float64 `json:"total_ars"`
	TotalUSD     float64 `json:"total_usd"`
	ExchangeRate float64 `json:"exchange_rate"`
}

// Service calculates recipe costs.
type Service struct {
	recipes  RecipeReader
	rates    exchange.RateClient
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new pricing service. location defines the timezone
// in which "today" is evaluated for the date window check.
func NewService(recipes RecipeReader, rates exchange.RateClient, location *time.Location, logger *slog.Logger) *Service {
	return &Service{
		recipes:  recipes,
		rates:    rates,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// CalculateRecipeCost prices one recipe for the given calendar date
// (YYYY-MM-DD, at most 30 days in the past). Line items whose ingredient
// reference no longer resolves contribute zero.
func (s *Service) CalculateRecipeCost(ctx context.Context, recipeID, dateStr string) (*Result, error) {
	id, err := uuid.Parse(recipeID)
	if err != nil {
		return nil, apperr.NotFound("the requested recipe does not exist")
	}

	rec, err := s.recipes.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("the requested recipe does not exist")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "failed to load recipe")
	}

	targetDate, err := time.ParseInLocation("2006-01-02", dateStr, s.location)
	if err != nil {
		return nil, apperr.Validation("invalid date format, expected YYYY-MM-DD")
	}

	now := s.now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	limit := today.AddDate(0, 0, -rateWindowDays)
	if targetDate.After(today) || targetDate.Before(limit) {
		return nil, apperr.Validation("the date must be within the last %d days", rateWindowDays)
	}

	totalARS := decimal.Zero
	for _, item := range rec.Items {
		if !item.PricePerKG.Valid {
			// dangling ingredient reference: tolerated, contributes zero
			continue
		}
		totalARS = totalARS.Add(item.QuantityNormalized.Mul(item.PricePerKG.Decimal))
	}

	rate, err := s.rates.USDRate(ctx, targetDate)
	if err != nil {
		return nil, err
	}

	totalUSD := decimal.Zero
	if !rate.IsZero() {
		totalUSD = totalARS.Div(rate)
	}

	s.logger.Info("recipe cost calculated",
		slog.String("recipe", rec.Name),
		slog.String("date", dateStr),
		slog.String("total_ars", totalARS.String()),
	)

	return &Result{
		RecipeName:   rec.Name,
		TotalARS:     totalARS.InexactFloat64(),
		TotalUSD:     totalUSD.InexactFloat64(),
		ExchangeRate: rate.InexactFloat64(),
	}, nil
}
