package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RatePair is the current best-known conversion rate for one ordered pair.
// The cache holds at most one RatePair per pair; a refresh overwrites it.
type RatePair struct {
	Pair      Pair
	Rate      decimal.Decimal
	UpdatedAt time.Time
	Source    string
}

// Fresh reports whether the rate is at most maxAge old at the given instant.
func (r RatePair) Fresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(r.UpdatedAt) <= maxAge
}

// RecordMeta carries fetch diagnostics stored alongside each journal entry.
type RecordMeta struct {
	RequestMS  int64 `json:"request_ms"`
	StatusCode int   `json:"status_code"`
}

// RateRecord is one immutable entry of the append-only rate journal.
type RateRecord struct {
	ID        string          `json:"id"`
	From      string          `json:"from_currency"`
	To        string          `json:"to_currency"`
	Rate      decimal.Decimal `json:"rate"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Meta      RecordMeta      `json:"meta"`
}

// NewRateRecord builds a journal entry for one observed rate. The id follows
// the "{FROM}_{TO}_{timestamp}" convention.
func NewRateRecord(pair Pair, rate decimal.Decimal, ts time.Time, source string, meta RecordMeta) RateRecord {
	return RateRecord{
		ID:        fmt.Sprintf("%s_%s", pair.String(), ts.UTC().Format(time.RFC3339Nano)),
		From:      pair.From,
		To:        pair.To,
		Rate:      rate,
		Timestamp: ts,
		Source:    source,
		Meta:      meta,
	}
}

// RefreshScope selects the subset of providers a refresh targets.
type RefreshScope int

const (
	ScopeAll RefreshScope = iota
	ScopeCryptoOnly
	ScopeFiatOnly
)

// String returns the string representation of the scope.
func (s RefreshScope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeCryptoOnly:
		return "crypto"
	case ScopeFiatOnly:
		return "fiat"
	default:
		return "unknown"
	}
}

// Includes reports whether a currency kind belongs to the scope.
func (s RefreshScope) Includes(kind CurrencyKind) bool {
	switch s {
	case ScopeCryptoOnly:
		return kind == Crypto
	case ScopeFiatOnly:
		return kind == Fiat
	default:
		return true
	}
}

// RefreshReport aggregates the outcome of one refresh run. Provider failures
// are collected here instead of aborting the remaining providers.
type RefreshReport struct {
	Updated     []Pair
	Failures    []*ProviderError
	LastRefresh time.Time
}

// PartialSuccess reports whether some pairs updated while at least one
// provider failed.
func (r RefreshReport) PartialSuccess() bool {
	return len(r.Updated) > 0 && len(r.Failures) > 0
}
