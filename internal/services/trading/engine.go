// Package trading executes buy/sell trades against a user's portfolio.
package trading

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutahub/internal/domain"
	"github.com/valutatrade/valutahub/internal/services/rates"
	"github.com/valutatrade/valutahub/internal/storage"
	"go.uber.org/zap"
)

// Engine runs the per-trade state machine: validate, resolve rate, check
// funds, mutate, persist. A trade ends Committed or Rejected; a rejected
// trade leaves the portfolio store exactly as it was.
type Engine struct {
	portfolios *storage.PortfolioStore
	rates      *rates.Manager
	base       domain.Currency
	logger     *zap.Logger

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// NewEngine creates an Engine trading against the given base currency code.
func NewEngine(portfolios *storage.PortfolioStore, rateManager *rates.Manager, baseCurrency string, logger *zap.Logger) (*Engine, error) {
	base, err := domain.LookupCurrency(baseCurrency)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		portfolios: portfolios,
		rates:      rateManager,
		base:       base,
		logger:     logger,
		locks:      make(map[int]*sync.Mutex),
	}, nil
}

// Base returns the configured base currency.
func (e *Engine) Base() domain.Currency { return e.base }

// userLock returns the exclusive lock for one user's portfolio. It is held
// for the full read-modify-write span of a trade so trades against the same
// user never interleave.
func (e *Engine) userLock(userID int) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

// Execute runs one trade to a terminal state. On any error the portfolio is
// untouched, both in memory and on disk.
func (e *Engine) Execute(userID int, intent domain.TradeIntent) (*domain.TradeResult, error) {
	result, err := e.execute(userID, intent)
	if err != nil {
		e.logger.Warn("trade rejected",
			zap.Int("user_id", userID),
			zap.String("side", intent.Side.String()),
			zap.String("currency", intent.Currency),
			zap.String("amount", intent.Amount.String()),
			zap.Error(err))
		return nil, err
	}

	e.logger.Info("trade committed",
		zap.Int("user_id", userID),
		zap.String("side", result.Side.String()),
		zap.String("currency", result.Currency),
		zap.String("amount", result.Amount.String()),
		zap.String("rate", result.Rate.String()),
		zap.String("cost", result.Cost.String()),
		zap.String("base", result.Base))
	return result, nil
}

func (e *Engine) execute(userID int, intent domain.TradeIntent) (*domain.TradeResult, error) {
	currency, err := e.validate(intent)
	if err != nil {
		return nil, err
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rate, err := e.rates.GetRate(domain.Pair{From: currency.Code, To: e.base.Code}, 0)
	if err != nil {
		return nil, err
	}

	// The base-currency leg rounds half-even to the base precision. A
	// positive trade whose leg rounds to zero is refused rather than
	// silently truncated.
	cost := intent.Amount.Mul(rate.Rate).RoundBank(e.base.Precision)
	if cost.IsZero() {
		return nil, &domain.PrecisionUnderflowError{Currency: e.base.Code, Amount: intent.Amount}
	}
	amount := intent.Amount.RoundBank(currency.Precision)
	if amount.IsZero() {
		return nil, &domain.PrecisionUnderflowError{Currency: currency.Code, Amount: intent.Amount}
	}

	portfolio, err := e.portfolios.Load(userID)
	if err != nil {
		return nil, err
	}

	oldBalance := portfolio.Wallets.Balance(currency.Code)
	next := portfolio.Clone()

	switch intent.Side {
	case domain.Buy:
		if err := next.Wallets.Withdraw(e.base.Code, cost); err != nil {
			return nil, err
		}
		if err := next.Wallets.Deposit(currency.Code, amount); err != nil {
			return nil, err
		}
	case domain.Sell:
		if _, held := portfolio.Wallets[currency.Code]; !held {
			return nil, &domain.WalletNotFoundError{Currency: currency.Code}
		}
		if err := next.Wallets.Withdraw(currency.Code, amount); err != nil {
			return nil, err
		}
		if err := next.Wallets.Deposit(e.base.Code, cost); err != nil {
			return nil, err
		}
	default:
		return nil, &domain.InvalidTradeError{Reason: "unknown trade side"}
	}

	// Persist before committing: a failed save rejects the trade and the
	// cloned mutation is discarded.
	if err := e.portfolios.Save(next); err != nil {
		return nil, err
	}

	return &domain.TradeResult{
		Side:        intent.Side,
		Currency:    currency.Code,
		Amount:      amount,
		Rate:        rate.Rate,
		Cost:        cost,
		Base:        e.base.Code,
		OldBalance:  oldBalance,
		NewBalance:  next.Wallets.Balance(currency.Code),
		BaseBalance: next.Wallets.Balance(e.base.Code),
	}, nil
}

func (e *Engine) validate(intent domain.TradeIntent) (domain.Currency, error) {
	if !intent.Amount.IsPositive() {
		return domain.Currency{}, &domain.InvalidTradeError{Reason: "amount must be positive"}
	}
	currency, err := domain.LookupCurrency(intent.Currency)
	if err != nil {
		return domain.Currency{}, &domain.InvalidTradeError{Reason: err.Error(), Err: err}
	}
	if currency.Code == e.base.Code {
		return domain.Currency{}, &domain.InvalidTradeError{Reason: "cannot trade the base currency against itself"}
	}
	return currency, nil
}

// Valuation is one wallet line of a portfolio valued in a base currency.
type Valuation struct {
	Currency  string
	Balance   decimal.Decimal
	ValueBase decimal.Decimal
	// RateKnown is false when no rate is cached for this currency and the
	// line is excluded from the total.
	RateKnown bool
}

// Value prices every wallet of the user's portfolio in the given base
// currency using cached rates. Currencies with no usable rate are reported
// with RateKnown=false instead of failing the whole valuation.
func (e *Engine) Value(userID int, base string) ([]Valuation, decimal.Decimal, error) {
	baseCurrency, err := domain.LookupCurrency(base)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	portfolio, err := e.portfolios.Load(userID)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}

	total := decimal.Zero
	out := make([]Valuation, 0, len(portfolio.Wallets))
	for code, balance := range portfolio.Wallets {
		v := Valuation{Currency: code, Balance: balance}

		rp, err := e.rates.GetRate(domain.Pair{From: code, To: baseCurrency.Code}, 0)
		if err == nil {
			v.ValueBase = balance.Mul(rp.Rate).RoundBank(baseCurrency.Precision)
			v.RateKnown = true
			total = total.Add(v.ValueBase)
		}
		out = append(out, v)
	}

	return out, total, nil
}
