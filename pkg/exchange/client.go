// Package exchange fetches historical USD exchange rates from the public
// currency-api CDN.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"recetario/internal/apperr"
)

const (
	// DefaultBaseURL is the published currency-api CDN prefix.
	DefaultBaseURL = "https://cdn.jsdelivr.net/npm/@fawazahmed0"

	// requestTimeout bounds each rate lookup. There is no retry and no
	// caching: every cost calculation performs a fresh read.
	requestTimeout = 5 * time.Second
)

// RateClient returns the USD to local currency rate for a calendar date.
type RateClient interface {
	USDRate(ctx context.Context, date time.Time) (decimal.Decimal, error)
}

// Client is an HTTP RateClient against the currency-api CDN, which
// versions its dataset by date.
type Client struct {
	baseURL      string
	currencyCode string
	client       *http.Client
	logger       *slog.Logger
}

// NewClient creates a rate client. currencyCode is the lowercase ISO code
// of the local currency (e.g. "ars").
func NewClient(baseURL, currencyCode string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:      baseURL,
		currencyCode: currencyCode,
		client:       &http.Client{Timeout: requestTimeout},
		logger:       logger,
	}
}

// USDRate fetches the USD rate for the dataset published on the given date.
func (c *Client) USDRate(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	dateStr := date.Format("2006-01-02")
	url := fmt.Sprintf("%s/currency-api@%s/v1/currencies/usd.json", c.baseURL, dateStr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, apperr.Wrap(apperr.KindExternal, err, "could not fetch the USD rate for %s", dateStr)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, apperr.Wrap(apperr.KindExternal, err, "could not fetch the USD rate for %s", dateStr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, apperr.New(apperr.KindExternal,
			"could not fetch the USD rate for %s: unexpected status %d", dateStr, resp.StatusCode)
	}

	var payload struct {
		USD map[string]json.Number `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, apperr.Wrap(apperr.KindExternal, err, "could not fetch the USD rate for %s", dateStr)
	}

	raw, ok := payload.USD[c.currencyCode]
	if !ok {
		return decimal.Zero, apperr.New(apperr.KindExternal,
			"could not fetch the USD rate for %s: currency %q missing from response", dateStr, c.currencyCode)
	}

	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, apperr.Wrap(apperr.KindExternal, err, "could not fetch the USD rate for %s", dateStr)
	}

	c.logger.Debug("fetched USD rate",
		slog.String("date", dateStr),
		slog.String("currency", c.currencyCode),
		slog.String("rate", rate.String()),
	)
	return rate, nil
}
