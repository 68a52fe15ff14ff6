package ingredient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines storage operations for the ingredient catalog.
type Repository interface {
	// UpsertBatch inserts or updates the whole batch inside one
	// transaction, keyed by normalized name. Existing rows keep their id
	// and created_at; price_per_kg and updated_at are overwritten.
	UpsertBatch(ctx context.Context, ingredients []Ingredient) error

	// ListAll returns every catalog row. Used to build the per-run
	// reconciliation snapshot.
	ListAll(ctx context.Context) ([]Ingredient, error)
}

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it in tests.
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

// NewPostgresRepository creates a new PostgreSQL ingredient repository
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// UpsertBatch applies the whole batch atomically.
func (r *PostgresRepository) UpsertBatch(ctx context.Context, ingredients []Ingredient) error {
	query := `
		INSERT INTO ingredients (id, name, price_per_kg)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			price_per_kg = EXCLUDED.price_per_kg,
			updated_at = now()`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin ingredient upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ing := range ingredients {
		id := ing.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, err := tx.Exec(ctx, query, id, ing.Name, ing.PricePerKG); err != nil {
			return fmt.Errorf("failed to upsert ingredient %q: %w", ing.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ingredient upsert: %w", err)
	}
	return nil
}

// ListAll returns the full catalog.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]Ingredient, error) {
	query := `
		SELECT id, name, price_per_kg, created_at, updated_at
		FROM ingredients
		ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []Ingredient
	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.PricePerKG, &ing.CreatedAt, &ing.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ingredients: %w", err)
	}
	return ingredients, nil
}
