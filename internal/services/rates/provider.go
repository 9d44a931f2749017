// Package rates answers rate lookups against the cache with a staleness
// policy and orchestrates refreshes from external providers.
package rates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutahub/internal/domain"
)

// Observation is one rate reported by a provider during a fetch.
type Observation struct {
	Pair domain.Pair
	Rate decimal.Decimal
}

// FetchResult is the outcome of one provider call.
type FetchResult struct {
	Observations []Observation
	Latency      time.Duration
	StatusCode   int
}

// Provider fetches current rates from one external source. Implementations
// are opaque fetchers; the manager decides what to do with the data.
type Provider interface {
	// Name identifies the source in cache entries and journal records.
	Name() string
	// Kind tells which refresh scope the provider belongs to.
	Kind() domain.CurrencyKind
	// Fetch retrieves current rates, bounded by ctx.
	Fetch(ctx context.Context) (FetchResult, error)
}
