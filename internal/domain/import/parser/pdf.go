package parser

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"recetario/internal/apperr"
)

// ParseVegetablePrices reads a vegetable price list PDF. All page text is
// joined with newlines and every line carrying a "$" marker is split into
// (name, price). Lines without the marker are skipped; a marked line whose
// right-hand side does not parse as a number fails the whole document.
func ParseVegetablePrices(r io.ReaderAt, size int64) ([]Product, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "failed to process the vegetable price document")
	}

	var fullText strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, err, "failed to process the vegetable price document")
		}
		if text != "" {
			fullText.WriteString(text)
			fullText.WriteString("\n")
		}
	}

	return parseVegetableLines(fullText.String())
}

// parseVegetableLines applies the line heuristic to already-extracted text.
func parseVegetableLines(text string) ([]Product, error) {
	var products []Product
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !strings.Contains(line, "$") {
			continue
		}

		segments := strings.Split(line, "$")
		name := strings.TrimSpace(segments[0])
		priceStr := strings.ReplaceAll(strings.TrimSpace(segments[1]), ".", "")
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, err, "failed to process the vegetable price document")
		}
		products = append(products, Product{Name: name, Price: price})
	}
	return products, nil
}

// ParseVegetablePricesBytes is a convenience wrapper over a byte slice.
func ParseVegetablePricesBytes(data []byte) ([]Product, error) {
	return ParseVegetablePrices(bytes.NewReader(data), int64(len(data)))
}
