package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// scanState tracks where the line scanner is inside the document.
type scanState int

const (
	stateNoRecipe scanState = iota
	stateInstructions
	stateIngredients
)

// ingredientLinePattern captures both accepted ingredient forms after a
// list-item prefix ("-", "*" or an alphanumeric ordinal with optional dot):
//
//	<qty> <unit> de <name>
//	<name>: <qty> <unit>
//
// Units are kg or g; the quantity accepts a comma as decimal separator.
var ingredientLinePattern = regexp.MustCompile(
	`(?i)^[-*a-zA-Z0-9]+\.?\s+(?:(?P<qty1>[\d,.]+)\s*(?P<unit1>kg|g)\s*de\s*(?P<name1>.+)|(?P<name2>.+):\s*(?P<qty2>[\d,.]+)\s*(?P<unit2>kg|g))`,
)

// ParseRecipes runs a single-pass line scanner over a recipe markup
// document. A "# " line starts a new recipe (flushing the previous one),
// "##" sub-headings containing ingredientes/lista or
// instrucciones/preparación switch sections, and every other non-blank line
// is either an ingredient candidate or instruction text depending on the
// current section.
func ParseRecipes(content string) []ParsedRecipe {
	var recipes []ParsedRecipe
	var current *ParsedRecipe
	state := stateNoRecipe

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(line, "# "):
			if current != nil {
				recipes = append(recipes, *current)
			}
			current = &ParsedRecipe{
				Name:        strings.TrimSpace(strings.ReplaceAll(line, "# ", "")),
				Ingredients: []ParsedIngredient{},
			}
			state = stateInstructions

		case strings.HasPrefix(line, "##") && (strings.Contains(lower, "ingredientes") || strings.Contains(lower, "lista")):
			state = stateIngredients

		case strings.HasPrefix(line, "##") && (strings.Contains(lower, "instrucciones") || strings.Contains(lower, "preparación")):
			state = stateInstructions

		case state == stateIngredients:
			if current == nil {
				continue
			}
			if ing, ok := parseIngredientLine(line); ok {
				current.Ingredients = append(current.Ingredients, ing)
			}
			// non-matching lines inside the ingredient section are dropped

		case current != nil && !strings.HasPrefix(line, "#"):
			current.Instructions += line + "\n"
		}
	}

	if current != nil {
		recipes = append(recipes, *current)
	}
	return recipes
}

// parseIngredientLine matches one ingredient candidate line and converts
// the quantity to kilograms (grams divided by 1000).
func parseIngredientLine(line string) (ParsedIngredient, bool) {
	m := ingredientLinePattern.FindStringSubmatch(line)
	if m == nil {
		return ParsedIngredient{}, false
	}

	groups := map[string]string{}
	for i, name := range ingredientLinePattern.SubexpNames() {
		if name != "" && m[i] != "" {
			groups[name] = m[i]
		}
	}

	qtyStr := groups["qty1"]
	if qtyStr == "" {
		qtyStr = groups["qty2"]
	}
	unit := groups["unit1"]
	if unit == "" {
		unit = groups["unit2"]
	}
	name := groups["name1"]
	if name == "" {
		name = groups["name2"]
	}
	if qtyStr == "" || unit == "" || name == "" {
		return ParsedIngredient{}, false
	}

	qty, err := strconv.ParseFloat(strings.ReplaceAll(qtyStr, ",", "."), 64)
	if err != nil {
		return ParsedIngredient{}, false
	}
	if strings.ToLower(unit) == "g" {
		qty /= 1000.0
	}

	return ParsedIngredient{Name: strings.TrimSpace(name), QuantityKG: qty}, true
}
