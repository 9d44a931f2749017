package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutahub/internal/domain"
	"github.com/valutatrade/valutahub/internal/services/rates"
)

const (
	exchangeRateName = "ExchangeRate-API"
	exchangeRateURL  = "https://v6.exchangerate-api.com/v6"
)

// ErrMissingAPIKey is returned when the fiat provider is constructed
// without a key.
var ErrMissingAPIKey = errors.New("EXCHANGERATE_API_KEY is not set")

// ExchangeRate fetches fiat rates from ExchangeRate-API v6. Requires an
// API key.
type ExchangeRate struct {
	http   *resty.Client
	apiKey string
	base   string
}

// NewExchangeRate creates the client. base is the quote currency.
func NewExchangeRate(apiKey, base string, timeout time.Duration) (*ExchangeRate, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &ExchangeRate{
		http:   resty.New().SetBaseURL(exchangeRateURL).SetTimeout(timeout),
		apiKey: apiKey,
		base:   base,
	}, nil
}

// Name identifies the source in cache entries and journal records.
func (c *ExchangeRate) Name() string { return exchangeRateName }

// Kind reports the refresh scope this provider serves.
func (c *ExchangeRate) Kind() domain.CurrencyKind { return domain.Fiat }

type exchangeRateResponse struct {
	Result          string             `json:"result"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
	ErrorType       string             `json:"error-type"`
}

// Fetch retrieves current fiat rates, bounded by ctx. The API reports how
// much of each currency one unit of base buys; observations are stored as
// FIAT->base, so the quoted value is inverted.
func (c *ExchangeRate) Fetch(ctx context.Context) (rates.FetchResult, error) {
	var body exchangeRateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get(fmt.Sprintf("/%s/latest/%s", c.apiKey, c.base))
	if err != nil {
		return rates.FetchResult{}, &domain.ProviderError{Provider: exchangeRateName, Err: err}
	}
	if resp.IsError() {
		return rates.FetchResult{}, &domain.ProviderError{
			Provider:   exchangeRateName,
			StatusCode: resp.StatusCode(),
			Err:        errors.Errorf("unexpected status %s", resp.Status()),
		}
	}
	if body.Result != "success" {
		return rates.FetchResult{}, &domain.ProviderError{
			Provider:   exchangeRateName,
			StatusCode: resp.StatusCode(),
			Err:        errors.Errorf("api error: %s", body.ErrorType),
		}
	}

	observations := make([]rates.Observation, 0, len(body.ConversionRates))
	for _, cur := range domain.Currencies(domain.Fiat) {
		if cur.Code == c.base {
			continue
		}
		quoted, ok := body.ConversionRates[cur.Code]
		if !ok || quoted <= 0 {
			continue
		}
		rate := decimal.NewFromInt(1).Div(decimal.NewFromFloat(quoted))
		observations = append(observations, rates.Observation{
			Pair: domain.Pair{From: cur.Code, To: c.base},
			Rate: rate,
		})
	}

	return rates.FetchResult{
		Observations: observations,
		Latency:      resp.Time(),
		StatusCode:   resp.StatusCode(),
	}, nil
}
