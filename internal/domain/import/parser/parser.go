// Package parser turns loosely structured price sheets and recipe documents
// into typed records. The three parsers are deliberately narrow heuristics
// tuned to fixed input shapes, not general document understanding.
package parser

// Product is one extracted (label, price) pair from a price document.
type Product struct {
	Name  string
	Price float64
}

// ParsedIngredient is one ingredient reference inside a parsed recipe,
// with the quantity already converted to kilograms.
type ParsedIngredient struct {
	Name       string
	QuantityKG float64
}

// ParsedRecipe is one recipe record extracted from a markup document.
type ParsedRecipe struct {
	Name         string
	Ingredients  []ParsedIngredient
	Instructions string
}
