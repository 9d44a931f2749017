package trading

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/valutatrade/valutahub/internal/domain"
	"github.com/valutatrade/valutahub/internal/services/rates"
	"github.com/valutatrade/valutahub/internal/storage"
)

type engineFixture struct {
	engine     *Engine
	portfolios *storage.PortfolioStore
	cache      *storage.RateCache
	dataFile   string
}

func newFixture(t *testing.T) *engineFixture {
	t.Helper()
	dir := t.TempDir()

	rateStore, err := storage.NewJSONStore("rates", filepath.Join(dir, "rates.json"))
	require.NoError(t, err)
	cache, err := storage.NewRateCache(rateStore)
	require.NoError(t, err)

	history, err := storage.NewHistoryLog(filepath.Join(dir, "exchange_rates"))
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	manager := rates.NewManager(cache, history, nil, rates.Config{TTL: 5 * time.Minute}, nil)

	dataFile := filepath.Join(dir, "portfolios.json")
	portfolioStore, err := storage.NewJSONStore("portfolios", dataFile)
	require.NoError(t, err)
	portfolios := storage.NewPortfolioStore(portfolioStore)

	engine, err := NewEngine(portfolios, manager, "USD", nil)
	require.NoError(t, err)

	return &engineFixture{engine: engine, portfolios: portfolios, cache: cache, dataFile: dataFile}
}

func (f *engineFixture) putRate(t *testing.T, from, to, rate string) {
	t.Helper()
	require.NoError(t, f.cache.Put(domain.RatePair{
		Pair:      domain.Pair{From: from, To: to},
		Rate:      decimal.RequireFromString(rate),
		UpdatedAt: time.Now().UTC(),
		Source:    "coingecko",
	}))
}

func (f *engineFixture) fund(t *testing.T, userID int, currency, amount string) {
	t.Helper()
	p, err := f.portfolios.Load(userID)
	require.NoError(t, err)
	require.NoError(t, p.Wallets.Deposit(currency, decimal.RequireFromString(amount)))
	require.NoError(t, f.portfolios.Save(p))
}

func TestBuyDebitsBaseHalfEven(t *testing.T) {
	f := newFixture(t)
	f.putRate(t, "BTC", "USD", "59337.21")
	f.fund(t, 1, "USD", "5000")

	result, err := f.engine.Execute(1, domain.TradeIntent{
		Currency: "BTC", Amount: decimal.RequireFromString("0.05"), Side: domain.Buy,
	})
	require.NoError(t, err)

	// 0.05 * 59337.21 = 2966.8605, banker's rounding to cents
	require.True(t, result.Cost.Equal(decimal.RequireFromString("2966.86")))
	require.True(t, result.NewBalance.Equal(decimal.RequireFromString("0.05")))
	require.True(t, result.BaseBalance.Equal(decimal.RequireFromString("2033.14")))

	p, err := f.portfolios.Load(1)
	require.NoError(t, err)
	require.True(t, p.Wallets.Balance("USD").Equal(decimal.RequireFromString("2033.14")))
	require.True(t, p.Wallets.Balance("BTC").Equal(decimal.RequireFromString("0.05")))
}

func TestBuyInsufficientFundsLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t)
	f.putRate(t, "BTC", "USD", "59337.21")
	f.fund(t, 1, "USD", "5000")

	before, err := os.ReadFile(f.dataFile)
	require.NoError(t, err)

	_, err = f.engine.Execute(1, domain.TradeIntent{
		Currency: "BTC", Amount: decimal.NewFromInt(1), Side: domain.Buy,
	})
	var insufficient *domain.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, "USD", insufficient.Currency)
	require.True(t, insufficient.Available.Equal(decimal.NewFromInt(5000)))

	after, err := os.ReadFile(f.dataFile)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestSellCreditsBase(t *testing.T) {
	f := newFixture(t)
	f.putRate(t, "ETH", "USD", "2500")
	f.fund(t, 1, "ETH", "2")

	result, err := f.engine.Execute(1, domain.TradeIntent{
		Currency: "ETH", Amount: decimal.RequireFromString("0.5"), Side: domain.Sell,
	})
	require.NoError(t, err)
	require.True(t, result.Cost.Equal(decimal.NewFromInt(1250)))
	require.True(t, result.NewBalance.Equal(decimal.RequireFromString("1.5")))
	require.True(t, result.BaseBalance.Equal(decimal.NewFromInt(1250)))
}

func TestSellWithoutWallet(t *testing.T) {
	f := newFixture(t)
	f.putRate(t, "ETH", "USD", "2500")
	f.fund(t, 1, "USD", "100")

	_, err := f.engine.Execute(1, domain.TradeIntent{
		Currency: "ETH", Amount: decimal.NewFromInt(1), Side: domain.Sell,
	})
	var notFound *domain.WalletNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "ETH", notFound.Currency)
}

func TestSellMoreThanHeld(t *testing.T) {
	f := newFixture(t)
	f.putRate(t, "ETH", "USD", "2500")
	f.fund(t, 1, "ETH", "1")

	_, err := f.engine.Execute(1, domain.TradeIntent{
		Currency: "ETH", Amount: decimal.NewFromInt(2), Side: domain.Sell,
	})
	var insufficient *domain.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, "ETH", insufficient.Currency)
}

func TestTradeValidation(t *testing.T) {
	f := newFixture(t)
	f.putRate(t, "BTC", "USD", "59000")
	f.fund(t, 1, "USD", "100000")

	var invalid *domain.InvalidTradeError

	_, err := f.engine.Execute(1, domain.TradeIntent{Currency: "BTC", Amount: decimal.Zero, Side: domain.Buy})
	require.ErrorAs(t, err, &invalid)

	_, err = f.engine.Execute(1, domain.TradeIntent{Currency: "BTC", Amount: decimal.NewFromInt(-1), Side: domain.Buy})
	require.ErrorAs(t, err, &invalid)

	_, err = f.engine.Execute(1, domain.TradeIntent{Currency: "DOGE", Amount: decimal.NewFromInt(1), Side: domain.Buy})
	require.ErrorAs(t, err, &invalid)
	var notFound *domain.CurrencyNotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = f.engine.Execute(1, domain.TradeIntent{Currency: "USD", Amount: decimal.NewFromInt(1), Side: domain.Buy})
	require.ErrorAs(t, err, &invalid)
}

func TestBuyUnderflowRejected(t *testing.T) {
	f := newFixture(t)
	f.putRate(t, "BTC", "USD", "59337.21")
	f.fund(t, 1, "USD", "5000")

	// base leg rounds to 0.00 cents
	_, err := f.engine.Execute(1, domain.TradeIntent{
		Currency: "BTC", Amount: decimal.RequireFromString("0.00000001"), Side: domain.Buy,
	})
	var underflow *domain.PrecisionUnderflowError
	require.ErrorAs(t, err, &underflow)

	p, err := f.portfolios.Load(1)
	require.NoError(t, err)
	require.True(t, p.Wallets.Balance("USD").Equal(decimal.NewFromInt(5000)))
}

func TestBuyStaleRateRejected(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.cache.Put(domain.RatePair{
		Pair:      domain.Pair{From: "BTC", To: "USD"},
		Rate:      decimal.NewFromInt(59000),
		UpdatedAt: time.Now().UTC().Add(-time.Hour),
		Source:    "coingecko",
	}))
	f.fund(t, 1, "USD", "5000")

	_, err := f.engine.Execute(1, domain.TradeIntent{
		Currency: "BTC", Amount: decimal.RequireFromString("0.01"), Side: domain.Buy,
	})
	var stale *domain.StaleRateError
	require.ErrorAs(t, err, &stale)
}

func TestValue(t *testing.T) {
	f := newFixture(t)
	f.putRate(t, "BTC", "USD", "59000")
	f.fund(t, 1, "USD", "1000")
	f.fund(t, 1, "BTC", "0.1")
	f.fund(t, 1, "ADA", "500")

	lines, total, err := f.engine.Value(1, "USD")
	require.NoError(t, err)
	require.Len(t, lines, 3)

	// USD 1000 (identity) + BTC 0.1*59000 = 5900; ADA has no rate and is excluded
	require.True(t, total.Equal(decimal.NewFromInt(6900)))
	for _, line := range lines {
		if line.Currency == "ADA" {
			require.False(t, line.RateKnown)
		} else {
			require.True(t, line.RateKnown)
		}
	}
}
