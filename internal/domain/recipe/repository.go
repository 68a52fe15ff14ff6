package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines storage operations for recipes.
type Repository interface {
	// ReplaceAll deletes every existing recipe (items cascade) and inserts
	// the given set, all inside one transaction. A recipe import is a
	// full-catalog replace, never an incremental merge.
	ReplaceAll(ctx context.Context, recipes []Recipe) error

	// GetByID loads a recipe with its items and each item's current
	// catalog price (null when the ingredient was deleted). Returns
	// sql.ErrNoRows when the recipe does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Recipe, error)

	// ListAll returns every recipe with items, in name order.
	ListAll(ctx context.Context) ([]Recipe, error)
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a new PostgreSQL recipe repository
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ReplaceAll swaps the entire recipe catalog atomically.
func (r *PostgresRepository) ReplaceAll(ctx context.Context, recipes []Recipe) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin recipe replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cooking_recipes`); err != nil {
		return fmt.Errorf("failed to clear recipes: %w", err)
	}

	recipeQuery := `
		INSERT INTO cooking_recipes (id, name, instructions)
		VALUES ($1, $2, $3)`
	itemQuery := `
		INSERT INTO cooking_recipe_items (id, recipe_id, ingredient_id, quantity_raw, quantity_normalized)
		VALUES ($1, $2, $3, $4, $5)`

	for _, rec := range recipes {
		recipeID := rec.ID
		if recipeID == uuid.Nil {
			recipeID = uuid.New()
		}
		if _, err := tx.Exec(ctx, recipeQuery, recipeID, rec.Name, rec.Instructions); err != nil {
			return fmt.Errorf("failed to insert recipe %q: %w", rec.Name, err)
		}
		for _, item := range rec.Items {
			itemID := item.ID
			if itemID == uuid.Nil {
				itemID = uuid.New()
			}
			if _, err := tx.Exec(ctx, itemQuery,
				itemID, recipeID, item.IngredientID, item.QuantityRaw, item.QuantityNormalized,
			); err != nil {
				return fmt.Errorf("failed to insert item for recipe %q: %w", rec.Name, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit recipe replace: %w", err)
	}
	return nil
}

// GetByID loads one recipe with items and joined catalog prices.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	headerQuery := `
		SELECT id, name, instructions, created_at, updated_at
		FROM cooking_recipes
		WHERE id = $1`

	rec := &Recipe{}
	err := r.db.QueryRow(ctx, headerQuery, id).Scan(
		&rec.ID, &rec.Name, &rec.Instructions, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	items, err := r.itemsForRecipe(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	rec.Items = items
	return rec, nil
}

// ListAll returns the full recipe catalog with items.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]Recipe, error) {
	query := `
		SELECT id, name, instructions, created_at, updated_at
		FROM cooking_recipes
		ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var rec Recipe
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Instructions, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}

	for i := range recipes {
		items, err := r.itemsForRecipe(ctx, recipes[i].ID)
		if err != nil {
			return nil, err
		}
		recipes[i].Items = items
	}
	return recipes, nil
}

func (r *PostgresRepository) itemsForRecipe(ctx context.Context, recipeID uuid.UUID) ([]Item, error) {
	query := `
		SELECT i.id, i.recipe_id, i.ingredient_id, ing.name, ing.price_per_kg,
			i.quantity_raw, i.quantity_normalized
		FROM cooking_recipe_items i
		LEFT JOIN ingredients ing ON ing.id = i.ingredient_id
		WHERE i.recipe_id = $1
		ORDER BY i.created_at`

	rows, err := r.db.Query(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID, &item.RecipeID, &item.IngredientID, &item.IngredientName,
			&item.PricePerKG, &item.QuantityRaw, &item.QuantityNormalized,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recipe item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recipe items: %w", err)
	}
	return items, nil
}
