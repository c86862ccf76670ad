// Package rates fetches and validates exchange rate tables from a
// caller-configured provider URL.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"costbook/internal/core"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

var (
	ErrNoRateSource    = errors.New("no rate source configured")
	ErrInvalidRateData = errors.New("invalid rate data")
)

// required lists the currency codes every rate feed must provide.
var required = []core.Currency{core.USD, core.ILS, core.GBP, core.EURO}

// Client is a resty-backed exchange rate provider client.
type Client struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a rate client for the given provider URL. An empty URL is
// allowed here; Fetch reports ErrNoRateSource before attempting a request.
func NewClient(url string, timeout time.Duration) *Client {
	restyClient := resty.New()
	restyClient.
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{
		httpClient: restyClient,
		url:        url,
	}
}

// Fetch retrieves the rate table and validates it: all required currency
// codes must be present with positive numeric rates, otherwise the whole
// table is rejected with ErrInvalidRateData. A failed fetch is never
// papered over with a stale or empty table; the per-currency fallback-to-1
// policy applies only to currencies found in stored records (see
// core.RateTable.Rate) and is independent of this validation.
func (c *Client) Fetch(ctx context.Context) (core.RateTable, error) {
	if c.url == "" {
		return nil, ErrNoRateSource
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrInvalidRateData, resp.StatusCode())
	}

	var raw map[string]json.Number
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrInvalidRateData, err)
	}

	table := make(core.RateTable, len(raw))
	for code, num := range raw {
		rate, err := decimal.NewFromString(num.String())
		if err != nil {
			return nil, fmt.Errorf("%w: rate for %s is not numeric", ErrInvalidRateData, code)
		}
		table[core.Currency(code)] = rate
	}

	for _, cur := range required {
		rate, ok := table[cur]
		if !ok {
			return nil, fmt.Errorf("%w: missing rate for %s", ErrInvalidRateData, cur)
		}
		if rate.Sign() <= 0 {
			return nil, fmt.Errorf("%w: rate for %s must be positive", ErrInvalidRateData, cur)
		}
	}
	return table, nil
}
