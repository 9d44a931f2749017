// Package cli implements the valutahub subcommands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/valutatrade/valutahub/config"
	"github.com/valutatrade/valutahub/internal/clients"
	"github.com/valutatrade/valutahub/internal/domain"
	"github.com/valutatrade/valutahub/internal/services/rates"
	"github.com/valutatrade/valutahub/internal/services/trading"
	"github.com/valutatrade/valutahub/internal/services/users"
	"github.com/valutatrade/valutahub/internal/storage"
	"go.uber.org/zap"
)

// App wires stores, services and providers once at startup and is shared by
// every subcommand.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Users   *users.Manager
	Engine  *trading.Engine
	Rates   *rates.Manager
	Cache   *storage.RateCache
	History *storage.HistoryLog
	Session *storage.SessionStore
}

// NewApp constructs the application from configuration.
func NewApp(cfg config.Config, logger *zap.Logger) (*App, error) {
	usersStore, err := storage.NewJSONStore("users", filepath.Join(cfg.DataDir, "users.json"))
	if err != nil {
		return nil, err
	}
	portfoliosStore, err := storage.NewJSONStore("portfolios", filepath.Join(cfg.DataDir, "portfolios.json"))
	if err != nil {
		return nil, err
	}
	ratesStore, err := storage.NewJSONStore("rates", filepath.Join(cfg.DataDir, "rates.json"))
	if err != nil {
		return nil, err
	}
	sessionStore, err := storage.NewJSONStore("session", filepath.Join(cfg.DataDir, ".session.json"))
	if err != nil {
		return nil, err
	}

	cache, err := storage.NewRateCache(ratesStore)
	if err != nil {
		return nil, err
	}
	history, err := storage.NewHistoryLog(filepath.Join(cfg.DataDir, "exchange_rates"))
	if err != nil {
		return nil, err
	}

	providers := []rates.Provider{
		clients.NewCoinGecko(cfg.BaseCurrency, cfg.RequestTimeout),
	}
	fiat, err := clients.NewExchangeRate(cfg.ExchangeRateAPIKey, cfg.BaseCurrency, cfg.RequestTimeout)
	if err != nil {
		logger.Warn("fiat provider disabled", zap.Error(err))
	} else {
		providers = append(providers, fiat)
	}

	rateManager := rates.NewManager(cache, history, providers, rates.Config{
		TTL:             cfg.RatesTTL,
		ProviderTimeout: cfg.RequestTimeout,
	}, logger)

	portfolios := storage.NewPortfolioStore(portfoliosStore)
	engine, err := trading.NewEngine(portfolios, rateManager, cfg.BaseCurrency, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Users:   users.NewManager(storage.NewUserStore(usersStore), portfolios, logger),
		Engine:  engine,
		Rates:   rateManager,
		Cache:   cache,
		History: history,
		Session: storage.NewSessionStore(sessionStore),
	}, nil
}

// Close releases the journal and flushes the logger.
func (a *App) Close() {
	if a.History != nil {
		_ = a.History.Close()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

// Register adds every subcommand to the commander.
func Register(c *subcommands.Commander, app *App) {
	c.Register(&registerCmd{app: app}, "accounts")
	c.Register(&loginCmd{app: app}, "accounts")

	c.Register(&showPortfolioCmd{app: app}, "portfolio")
	c.Register(&buyCmd{app: app}, "portfolio")
	c.Register(&sellCmd{app: app}, "portfolio")

	c.Register(&getRateCmd{app: app}, "rates")
	c.Register(&updateRatesCmd{app: app}, "rates")
	c.Register(&showRatesCmd{app: app}, "rates")
}

// currentUser resolves the logged-in user from the session file.
func (a *App) currentUser() (domain.User, error) {
	id, ok, err := a.Session.Current()
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, fmt.Errorf("not logged in, run login first")
	}
	user, found, err := a.Users.ByID(id)
	if err != nil {
		return domain.User{}, err
	}
	if !found {
		return domain.User{}, fmt.Errorf("session user %d no longer exists, run login again", id)
	}
	return user, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}

func failUsage(msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, msg)
	return subcommands.ExitUsageError
}
