package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvalidTradeError rejects a trade before any balance is touched.
type InvalidTradeError struct {
	Reason string
	Err    error
}

func (e *InvalidTradeError) Error() string {
	return fmt.Sprintf("invalid trade: %s", e.Reason)
}

func (e *InvalidTradeError) Unwrap() error { return e.Err }

// InsufficientFundsError means a debit would take a balance below zero.
type InsufficientFundsError struct {
	Currency  string
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: %s available %s, required %s",
		e.Currency, e.Available.String(), e.Required.String())
}

// UnknownPairError means neither the pair nor its inverse is cached.
type UnknownPairError struct {
	Pair Pair
}

func (e *UnknownPairError) Error() string {
	return fmt.Sprintf("no rate cached for %s in either direction", e.Pair.String())
}

// StaleRateError means the pair is cached but older than the allowed age.
type StaleRateError struct {
	Pair      Pair
	UpdatedAt time.Time
	MaxAge    time.Duration
}

func (e *StaleRateError) Error() string {
	return fmt.Sprintf("rate for %s is stale: updated %s, max age %s",
		e.Pair.String(), e.UpdatedAt.Format(time.RFC3339), e.MaxAge)
}

// PrecisionUnderflowError rejects a positive trade whose rounded leg would
// be zero.
type PrecisionUnderflowError struct {
	Currency string
	Amount   decimal.Decimal
}

func (e *PrecisionUnderflowError) Error() string {
	return fmt.Sprintf("amount %s rounds to zero at %s precision", e.Amount.String(), e.Currency)
}

// PersistenceError wraps any failure of a JSON store or the rate journal.
type PersistenceError struct {
	Store string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Store, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ProviderError is a failure of one external rate provider. StatusCode is
// zero when the request never reached the server.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// CurrencyNotFoundError means the code is well formed but not in the catalog.
type CurrencyNotFoundError struct {
	Code string
}

func (e *CurrencyNotFoundError) Error() string {
	return fmt.Sprintf("currency %q is not supported", e.Code)
}

// InvalidCurrencyCodeError means the code cannot name any currency.
type InvalidCurrencyCodeError struct {
	Code   string
	Reason string
}

func (e *InvalidCurrencyCodeError) Error() string {
	return fmt.Sprintf("invalid currency code %q: %s", e.Code, e.Reason)
}

// WalletNotFoundError rejects a sell of a currency the user never held.
type WalletNotFoundError struct {
	Currency string
}

func (e *WalletNotFoundError) Error() string {
	return fmt.Sprintf("no %s wallet in portfolio", e.Currency)
}
