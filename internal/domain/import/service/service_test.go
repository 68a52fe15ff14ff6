package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"recetario/internal/apperr"
	"recetario/internal/domain/ingredient"
	"recetario/internal/domain/recipe"
)

type fakeIngredientRepo struct {
	catalog   []ingredient.Ingredient
	upserted  []ingredient.Ingredient
	listErr   error
	upsertErr error
}

func (f *fakeIngredientRepo) UpsertBatch(_ context.Context, ingredients []ingredient.Ingredient) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, ingredients...)
	return nil
}

func (f *fakeIngredientRepo) ListAll(_ context.Context) ([]ingredient.Ingredient, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.catalog, nil
}

type fakeRecipeRepo struct {
	replaced   [][]recipe.Recipe
	replaceErr error
}

func (f *fakeRecipeRepo) ReplaceAll(_ context.Context, recipes []recipe.Recipe) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = append(f.replaced, recipes)
	return nil
}

func (f *fakeRecipeRepo) GetByID(_ context.Context, _ uuid.UUID) (*recipe.Recipe, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRecipeRepo) ListAll(_ context.Context) ([]recipe.Recipe, error) {
	return nil, errors.New("not implemented")
}

func newTestService(ingredients *fakeIngredientRepo, recipes *fakeRecipeRepo) *Service {
	return NewService(ingredients, recipes, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func meatSheet(t *testing.T, rows [][2]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, row[0]))
		cell, err = excelize.CoordinatesToCellName(2, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, row[1]))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestImportMeatPrices(t *testing.T) {
	t.Run("upserts extracted rows with normalized names", func(t *testing.T) {
		ingredients := &fakeIngredientRepo{}
		svc := newTestService(ingredients, &fakeRecipeRepo{})

		data := meatSheet(t, [][2]any{
			{"Corte", "Precio"},
			{"Asado", "$ 1.200"},
			{"Vacío", "1500,50"},
		})

		summary, err := svc.ImportMeatPrices(context.Background(), data)
		require.NoError(t, err)

		assert.Equal(t, "success", summary.Status)
		assert.Equal(t, TypeMeats, summary.Type)
		assert.Equal(t, 2, summary.ProcessedCount)
		assert.Equal(t, 2, summary.TotalInput)
		assert.Empty(t, summary.Errors)

		require.Len(t, ingredients.upserted, 2)
		assert.Equal(t, "asado", ingredients.upserted[0].Name)
		assert.True(t, ingredients.upserted[0].PricePerKG.Equal(decimal.NewFromFloat(1200)))
		assert.Equal(t, "vacío", ingredients.upserted[1].Name)
		assert.True(t, ingredients.upserted[1].PricePerKG.Equal(decimal.NewFromFloat(1500.5)))
	})

	t.Run("reports failed status when nothing was extracted", func(t *testing.T) {
		ingredients := &fakeIngredientRepo{}
		svc := newTestService(ingredients, &fakeRecipeRepo{})

		summary, err := svc.ImportMeatPrices(context.Background(), meatSheet(t, [][2]any{
			{"Corte", "Precio"},
		}))
		require.NoError(t, err)
		assert.Equal(t, "failed", summary.Status)
		assert.Equal(t, 0, summary.ProcessedCount)
		assert.Empty(t, ingredients.upserted)
	})

	t.Run("keeps the validation kind on parser failures", func(t *testing.T) {
		svc := newTestService(&fakeIngredientRepo{}, &fakeRecipeRepo{})

		_, err := svc.ImportMeatPrices(context.Background(), []byte("not a workbook"))
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "ETL process failed")
	})

	t.Run("maps storage failures to the persistence kind", func(t *testing.T) {
		ingredients := &fakeIngredientRepo{upsertErr: errors.New("connection refused")}
		svc := newTestService(ingredients, &fakeRecipeRepo{})

		_, err := svc.ImportMeatPrices(context.Background(), meatSheet(t, [][2]any{
			{"Asado", "$ 1.000"},
		}))
		require.Error(t, err)
		assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
	})
}

func TestImportVegetablePrices(t *testing.T) {
	t.Run("keeps the validation kind on unreadable documents", func(t *testing.T) {
		svc := newTestService(&fakeIngredientRepo{}, &fakeRecipeRepo{})

		_, err := svc.ImportVegetablePrices(context.Background(), []byte("not a pdf"))
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "ETL process failed")
	})
}

func catalogOf(names ...string) []ingredient.Ingredient {
	catalog := make([]ingredient.Ingredient, 0, len(names))
	for _, name := range names {
		catalog = append(catalog, ingredient.Ingredient{
			ID:         uuid.New(),
			Name:       name,
			PricePerKG: decimal.NewFromInt(1000),
		})
	}
	return catalog
}

func TestImportRecipes(t *testing.T) {
	t.Run("accepts recipes whose ingredients all resolve", func(t *testing.T) {
		ingredients := &fakeIngredientRepo{catalog: catalogOf("papa", "carne")}
		recipes := &fakeRecipeRepo{}
		svc := newTestService(ingredients, recipes)

		md := `# Pastel de Papa
## Ingredientes
- 1 kg de Papa
- Carne: 0.5 kg
## Instrucciones
Hervir y mezclar.
`

		summary, err := svc.ImportRecipes(context.Background(), []byte(md))
		require.NoError(t, err)

		assert.Equal(t, "success", summary.Status)
		assert.Equal(t, TypeRecipes, summary.Type)
		assert.Equal(t, 1, summary.ProcessedCount)
		assert.Equal(t, 1, summary.TotalInput)
		assert.Empty(t, summary.Errors)

		require.Len(t, recipes.replaced, 1)
		stored := recipes.replaced[0]
		require.Len(t, stored, 1)
		assert.Equal(t, "Pastel de Papa", stored[0].Name)
		require.Len(t, stored[0].Items, 2)

		papa := stored[0].Items[0]
		assert.True(t, papa.IngredientID.Valid)
		assert.True(t, papa.QuantityRaw.Equal(decimal.NewFromFloat(1.0)))
		assert.True(t, papa.QuantityNormalized.Equal(decimal.NewFromFloat(1.0)))

		carne := stored[0].Items[1]
		assert.True(t, carne.QuantityRaw.Equal(decimal.NewFromFloat(0.5)))
		assert.True(t, carne.QuantityNormalized.Equal(decimal.NewFromFloat(0.5)))
	})

	t.Run("rounds raw quantities up to the next quarter kilogram", func(t *testing.T) {
		ingredients := &fakeIngredientRepo{catalog: catalogOf("lechuga")}
		recipes := &fakeRecipeRepo{}
		svc := newTestService(ingredients, recipes)

		md := `# Ensalada
## Ingredientes
- 300 g de Lechuga
`

		_, err := svc.ImportRecipes(context.Background(), []byte(md))
		require.NoError(t, err)

		require.Len(t, recipes.replaced, 1)
		item := recipes.replaced[0][0].Items[0]
		assert.True(t, item.QuantityRaw.Equal(decimal.NewFromFloat(0.3)))
		assert.True(t, item.QuantityNormalized.Equal(decimal.NewFromFloat(0.5)))
	})

	t.Run("rejects a whole recipe when one ingredient is missing", func(t *testing.T) {
		ingredients := &fakeIngredientRepo{catalog: catalogOf("papa")}
		recipes := &fakeRecipeRepo{}
		svc := newTestService(ingredients, recipes)

		md := `# Pastel de Papa
## Ingredientes
- 1 kg de Papa

# Fantasma
## Ingredientes
- 1 kg de Papa
- 1 kg de Unicornio
`

		summary, err := svc.ImportRecipes(context.Background(), []byte(md))
		require.NoError(t, err)

		assert.Equal(t, "success", summary.Status)
		assert.Equal(t, 1, summary.ProcessedCount)
		assert.Equal(t, 2, summary.TotalInput)
		require.Len(t, summary.Errors, 1)
		assert.Equal(t,
			"Recipe 'Fantasma': ingredient (Unicornio) not found in the ingredient catalog",
			summary.Errors[0],
		)

		require.Len(t, recipes.replaced, 1)
		require.Len(t, recipes.replaced[0], 1)
		assert.Equal(t, "Pastel de Papa", recipes.replaced[0][0].Name)
	})

	t.Run("lists every missing ingredient of a rejected recipe", func(t *testing.T) {
		ingredients := &fakeIngredientRepo{}
		recipes := &fakeRecipeRepo{}
		svc := newTestService(ingredients, recipes)

		md := `# Sopa
## Ingredientes
- 1 kg de Apio
- 1 kg de Puerro
`

		summary, err := svc.ImportRecipes(context.Background(), []byte(md))
		require.NoError(t, err)
		require.Len(t, summary.Errors, 1)
		assert.Equal(t,
			"Recipe 'Sopa': ingredient (Apio, Puerro) not found in the ingredient catalog",
			summary.Errors[0],
		)
	})

	t.Run("resolves ingredient names case-insensitively", func(t *testing.T) {
		ingredients := &fakeIngredientRepo{catalog: catalogOf("carne")}
		recipes := &fakeRecipeRepo{}
		svc := newTestService(ingredients, recipes)

		md := `# Milanesas
## Ingredientes
- CARNE: 1 kg
`

		summary, err := svc.ImportRecipes(context.Background(), []byte(md))
		require.NoError(t, err)
		assert.Equal(t, 1, summary.ProcessedCount)
		assert.Empty(t, summary.Errors)
	})

	t.Run("replaces the catalog even when every recipe is rejected", func(t *testing.T) {
		ingredients := &fakeIngredientRepo{}
		recipes := &fakeRecipeRepo{}
		svc := newTestService(ingredients, recipes)

		md := `# Fantasma
## Ingredientes
- 1 kg de Unicornio
`

		summary, err := svc.ImportRecipes(context.Background(), []byte(md))
		require.NoError(t, err)

		assert.Equal(t, "failed", summary.Status)
		assert.Equal(t, 0, summary.ProcessedCount)
		require.Len(t, recipes.replaced, 1)
		assert.Empty(t, recipes.replaced[0])
	})

	t.Run("maps snapshot failures to the persistence kind", func(t *testing.T) {
		ingredients := &fakeIngredientRepo{listErr: errors.New("connection refused")}
		svc := newTestService(ingredients, &fakeRecipeRepo{})

		_, err := svc.ImportRecipes(context.Background(), []byte("# Receta\n"))
		require.Error(t, err)
		assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
	})

	t.Run("maps replace failures to the persistence kind", func(t *testing.T) {
		recipes := &fakeRecipeRepo{replaceErr: errors.New("deadlock detected")}
		svc := newTestService(&fakeIngredientRepo{}, recipes)

		_, err := svc.ImportRecipes(context.Background(), []byte("# Receta\n"))
		require.Error(t, err)
		assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
	})
}

func TestNormalizeQuantity(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.25, 0.25},
		{0.26, 0.50},
		{0.3, 0.50},
		{0.5, 0.50},
		{0.75, 0.75},
		{1.0, 1.0},
		{1.1, 1.25},
	}

	for _, tc := range cases {
		assert.InDelta(t, tc.want, NormalizeQuantity(tc.in), 1e-9, "NormalizeQuantity(%v)", tc.in)
	}
}
