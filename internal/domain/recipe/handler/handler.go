// Package handler exposes read access to the persisted recipe catalog.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"recetario/internal/domain/recipe"
)

// Handler serves the recipe catalog
type Handler struct {
	repo   recipe.Repository
	logger *slog.Logger
}

// NewHandler creates a new recipe catalog handler
func NewHandler(repo recipe.Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger.With(slog.String("component", "recipe_handler")),
	}
}

// Routes returns the catalog routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListRecipes)

	return r
}

type listResponse struct {
	Recipes []recipe.Recipe `json:"recipes"`
}

// ListRecipes returns every persisted recipe with its line items.
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.repo.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list recipes", slog.Any("error", err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "internal error"})
		return
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, listResponse{Recipes: recipes})
}
