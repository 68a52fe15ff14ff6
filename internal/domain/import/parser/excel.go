package parser

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"recetario/internal/apperr"
)

// priceRunPattern extracts the first digit/separator run from a cell.
var priceRunPattern = regexp.MustCompile(`[\d.,]+`)

// headerLabels are column/section headings that must never become
// ingredient names.
var headerLabels = map[string]struct{}{
	"carnicería":     {},
	"carne vacuna":   {},
	"carne de cerdo": {},
	"corte":          {},
	"precio":         {},
}

// ParseMeatPrices scans a price sheet grid for price-like cells and pairs
// each with the label in the cell to its left. Column 0 is label territory,
// so scanning starts at column 1. Prices use the thousands-dot /
// decimal-comma convention.
func ParseMeatPrices(r io.Reader) ([]Product, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "failed to process the meat price sheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation("failed to process the meat price sheet: no sheets found")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "failed to process the meat price sheet")
	}

	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		for col := 1; col < len(row); col++ {
			priceStr := strings.TrimSpace(row[col])
			if priceStr == "" {
				continue
			}
			if !strings.Contains(priceStr, "$") && !priceRunPattern.MatchString(priceStr) {
				continue
			}

			run := priceRunPattern.FindString(priceStr)
			if run == "" {
				continue
			}
			price, err := parseLocalizedPrice(run)
			if err != nil {
				continue
			}

			name := strings.TrimSpace(row[col-1])
			if name == "" {
				continue
			}
			if _, isHeader := headerLabels[strings.ToLower(name)]; isHeader {
				continue
			}
			if isNumericLabel(name) {
				continue
			}

			products = append(products, Product{Name: name, Price: price})
		}
	}
	return products, nil
}

// parseLocalizedPrice converts "1.234,56" style runs to a float: dots are
// thousands separators, the comma is the decimal mark.
func parseLocalizedPrice(run string) (float64, error) {
	cleaned := strings.ReplaceAll(run, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	return strconv.ParseFloat(cleaned, 64)
}

// isNumericLabel reports whether a label is purely numeric once separators
// are stripped. Such cells are prices, not names.
func isNumericLabel(label string) bool {
	stripped := strings.ReplaceAll(label, ".", "")
	stripped = strings.ReplaceAll(stripped, ",", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
