// Package clients implements the external rate provider fetchers.
package clients

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutahub/internal/domain"
	"github.com/valutatrade/valutahub/internal/services/rates"
)

const (
	coinGeckoName = "CoinGecko"
	coinGeckoURL  = "https://api.coingecko.com/api/v3"
)

// coinGeckoIDs maps catalog tickers to CoinGecko asset ids.
var coinGeckoIDs = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"SOL": "solana",
	"LTC": "litecoin",
	"XRP": "ripple",
	"ADA": "cardano",
	"DOT": "polkadot",
}

// CoinGecko fetches crypto rates quoted in the base currency from the
// CoinGecko simple price endpoint. No API key required.
type CoinGecko struct {
	http *resty.Client
	base string
}

// NewCoinGecko creates the client. base is the quote currency (e.g. "USD").
func NewCoinGecko(base string, timeout time.Duration) *CoinGecko {
	return &CoinGecko{
		http: resty.New().SetBaseURL(coinGeckoURL).SetTimeout(timeout),
		base: base,
	}
}

// Name identifies the source in cache entries and journal records.
func (c *CoinGecko) Name() string { return coinGeckoName }

// Kind reports the refresh scope this provider serves.
func (c *CoinGecko) Kind() domain.CurrencyKind { return domain.Crypto }

// Fetch retrieves current crypto rates, bounded by ctx.
func (c *CoinGecko) Fetch(ctx context.Context) (rates.FetchResult, error) {
	ids := make([]string, 0, len(coinGeckoIDs))
	codeByID := make(map[string]string, len(coinGeckoIDs))
	for _, cur := range domain.Currencies(domain.Crypto) {
		id, ok := coinGeckoIDs[cur.Code]
		if !ok {
			continue
		}
		ids = append(ids, id)
		codeByID[id] = cur.Code
	}

	var prices map[string]map[string]float64
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           strings.Join(ids, ","),
			"vs_currencies": strings.ToLower(c.base),
		}).
		SetResult(&prices).
		Get("/simple/price")
	if err != nil {
		return rates.FetchResult{}, &domain.ProviderError{Provider: coinGeckoName, Err: err}
	}
	if resp.IsError() {
		return rates.FetchResult{}, &domain.ProviderError{
			Provider:   coinGeckoName,
			StatusCode: resp.StatusCode(),
			Err:        errors.Errorf("unexpected status %s", resp.Status()),
		}
	}

	quote := strings.ToLower(c.base)
	observations := make([]rates.Observation, 0, len(prices))
	for id, entry := range prices {
		code, ok := codeByID[id]
		if !ok {
			continue
		}
		rate, ok := entry[quote]
		if !ok || rate <= 0 {
			continue
		}
		observations = append(observations, rates.Observation{
			Pair: domain.Pair{From: code, To: c.base},
			Rate: decimal.NewFromFloat(rate),
		})
	}

	return rates.FetchResult{
		Observations: observations,
		Latency:      resp.Time(),
		StatusCode:   resp.StatusCode(),
	}, nil
}
