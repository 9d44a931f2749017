package domain

import "github.com/shopspring/decimal"

// Wallet maps currency code to balance. A missing entry is balance zero.
// Balances never go negative: Withdraw refuses the debit instead.
type Wallet map[string]decimal.Decimal

// Balance returns the balance for a currency, zero when absent.
func (w Wallet) Balance(currency string) decimal.Decimal {
	if b, ok := w[currency]; ok {
		return b
	}
	return decimal.Zero
}

// Deposit credits a positive amount.
func (w Wallet) Deposit(currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &InvalidTradeError{Reason: "deposit amount must be positive"}
	}
	w[currency] = w.Balance(currency).Add(amount)
	return nil
}

// Withdraw debits a positive amount, failing when the balance would go
// negative.
func (w Wallet) Withdraw(currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &InvalidTradeError{Reason: "withdraw amount must be positive"}
	}
	balance := w.Balance(currency)
	if amount.GreaterThan(balance) {
		return &InsufficientFundsError{Currency: currency, Available: balance, Required: amount}
	}
	w[currency] = balance.Sub(amount)
	return nil
}

// Clone returns an independent copy so callers can mutate and discard.
func (w Wallet) Clone() Wallet {
	out := make(Wallet, len(w))
	for code, balance := range w {
		out[code] = balance
	}
	return out
}

// Portfolio holds all wallets of one user. Created at registration, mutated
// only by the transaction engine.
type Portfolio struct {
	UserID  int
	Wallets Wallet
}

// NewPortfolio returns an empty portfolio for the user.
func NewPortfolio(userID int) Portfolio {
	return Portfolio{UserID: userID, Wallets: make(Wallet)}
}

// Clone returns a deep copy of the portfolio.
func (p Portfolio) Clone() Portfolio {
	return Portfolio{UserID: p.UserID, Wallets: p.Wallets.Clone()}
}
