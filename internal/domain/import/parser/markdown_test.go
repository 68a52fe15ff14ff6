package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecipes(t *testing.T) {
	t.Run("parses two recipes with both ingredient forms", func(t *testing.T) {
		content := `# Pastel de Papa
## Ingredientes
- 1 kg de Papa
- Carne: 0.5 kg
## Instrucciones
Hervir papa.
Cocinar carne.

# Ensalada
## Lista
- 200 g de Lechuga
## Preparación
Lavar lechuga.
`

		recipes := ParseRecipes(content)
		require.Len(t, recipes, 2)

		r1 := recipes[0]
		assert.Equal(t, "Pastel de Papa", r1.Name)
		require.Len(t, r1.Ingredients, 2)
		assert.Equal(t, ParsedIngredient{Name: "Papa", QuantityKG: 1.0}, r1.Ingredients[0])
		assert.Equal(t, ParsedIngredient{Name: "Carne", QuantityKG: 0.5}, r1.Ingredients[1])
		assert.Contains(t, r1.Instructions, "Hervir papa.")
		assert.Contains(t, r1.Instructions, "Cocinar carne.")

		r2 := recipes[1]
		assert.Equal(t, "Ensalada", r2.Name)
		require.Len(t, r2.Ingredients, 1)
		assert.Equal(t, ParsedIngredient{Name: "Lechuga", QuantityKG: 0.2}, r2.Ingredients[0])
		assert.Contains(t, r2.Instructions, "Lavar lechuga.")
	})

	t.Run("drops ingredient lines that do not match either form", func(t *testing.T) {
		content := `# Receta Rota
## Ingredientes
- Una pizca de sal
- 1 litro de leche
## Instrucciones
Mezclar.
`

		recipes := ParseRecipes(content)
		require.Len(t, recipes, 1)
		assert.Equal(t, "Receta Rota", recipes[0].Name)
		assert.Empty(t, recipes[0].Ingredients)
		assert.Contains(t, recipes[0].Instructions, "Mezclar.")
	})

	t.Run("accepts comma as decimal separator", func(t *testing.T) {
		content := `# Guiso
## Ingredientes
- 1,5 kg de Zapallo
`

		recipes := ParseRecipes(content)
		require.Len(t, recipes, 1)
		require.Len(t, recipes[0].Ingredients, 1)
		assert.InDelta(t, 1.5, recipes[0].Ingredients[0].QuantityKG, 1e-9)
	})

	t.Run("ignores ingredient lines before any title", func(t *testing.T) {
		content := `## Ingredientes
- 1 kg de Papa

# Tortilla
## Ingredientes
- 2 kg de Papa
`

		recipes := ParseRecipes(content)
		require.Len(t, recipes, 1)
		assert.Equal(t, "Tortilla", recipes[0].Name)
		require.Len(t, recipes[0].Ingredients, 1)
		assert.Equal(t, 2.0, recipes[0].Ingredients[0].QuantityKG)
	})

	t.Run("returns no recipes for an empty document", func(t *testing.T) {
		assert.Empty(t, ParseRecipes(""))
		assert.Empty(t, ParseRecipes("\n\n\n"))
	})

	t.Run("treats free text before the first sub-heading as instructions", func(t *testing.T) {
		content := `# Milanesas
Receta de la abuela.
## Ingredientes
- Carne: 1 kg
`

		recipes := ParseRecipes(content)
		require.Len(t, recipes, 1)
		assert.Contains(t, recipes[0].Instructions, "Receta de la abuela.")
		require.Len(t, recipes[0].Ingredients, 1)
		assert.Equal(t, "Carne", recipes[0].Ingredients[0].Name)
	})
}

func TestParseIngredientLine(t *testing.T) {
	cases := []struct {
		line    string
		want    ParsedIngredient
		matched bool
	}{
		{"- 1 kg de Papa", ParsedIngredient{Name: "Papa", QuantityKG: 1.0}, true},
		{"* 500 g de Carne", ParsedIngredient{Name: "Carne", QuantityKG: 0.5}, true},
		{"1. 2 kg de Cebolla", ParsedIngredient{Name: "Cebolla", QuantityKG: 2.0}, true},
		{"- Queso: 0.25 kg", ParsedIngredient{Name: "Queso", QuantityKG: 0.25}, true},
		{"- Sal a gusto", ParsedIngredient{}, false},
		{"- 3 tazas de harina", ParsedIngredient{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			got, ok := parseIngredientLine(tc.line)
			require.Equal(t, tc.matched, ok)
			if ok {
				assert.Equal(t, tc.want.Name, got.Name)
				assert.InDelta(t, tc.want.QuantityKG, got.QuantityKG, 1e-9)
			}
		})
	}
}
