package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Side is the direction of a trade.
type Side int

const (
	Buy Side = iota
	Sell
)

const (
	sideStringBuy  = "buy"
	sideStringSell = "sell"
)

// String returns the string representation of the side.
func (s Side) String() string {
	switch s {
	case Buy:
		return sideStringBuy
	case Sell:
		return sideStringSell
	default:
		return "unknown"
	}
}

// TradeIntent is the transient input of one Transaction Engine call.
// It is never persisted.
type TradeIntent struct {
	Currency string
	Amount   decimal.Decimal
	Side     Side
}

// String returns a human-readable string representation.
func (t TradeIntent) String() string {
	return fmt.Sprintf("%s %s %s", t.Side.String(), t.Amount.String(), t.Currency)
}

// TradeResult describes a committed trade for callers that render the
// balance movement.
type TradeResult struct {
	Side     Side
	Currency string
	Amount   decimal.Decimal
	// Rate is currency->base at the time of the trade.
	Rate decimal.Decimal
	// Cost is the base-currency leg: debited on buy, credited on sell,
	// rounded to the base currency precision.
	Cost        decimal.Decimal
	Base        string
	OldBalance  decimal.Decimal
	NewBalance  decimal.Decimal
	BaseBalance decimal.Decimal
}
