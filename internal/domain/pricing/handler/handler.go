// Package handler exposes the recipe cost calculation endpoint.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"recetario/internal/apperr"
	"recetario/internal/domain/pricing"
)

// Handler handles cost calculation requests
type Handler struct {
	pricingSvc *pricing.Service
	logger     *slog.Logger
}

// NewHandler creates a new pricing handler
func NewHandler(pricingSvc *pricing.Service, logger *slog.Logger) *Handler {
	return &Handler{
		pricingSvc: pricingSvc,
		logger:     logger.With(slog.String("component", "pricing_handler")),
	}
}

// Routes returns the pricing routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/calculate-price", h.CalculatePrice)

	return r
}

type calculatePriceRequest struct {
	RecipeID string `json:"recipe_id"`
	Date     string `json:"date"`
}

func (c *calculatePriceRequest) Bind(_ *http.Request) error {
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// CalculatePrice computes the ARS and USD cost of a recipe for a date.
func (h *Handler) CalculatePrice(w http.ResponseWriter, r *http.Request) {
	req := &calculatePriceRequest{}
	if err := render.Bind(r, req); err != nil || req.RecipeID == "" || req.Date == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "missing parameters"})
		return
	}

	result, err := h.pricingSvc.CalculateRecipeCost(r.Context(), req.RecipeID, req.Date)
	if err != nil {
		if apperr.IsBusiness(err) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("cost calculation failed", slog.Any("error", err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: fmt.Sprintf("internal error: %s", err.Error())})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}
