package rates

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutahub/internal/domain"
	"github.com/valutatrade/valutahub/internal/storage"
	"github.com/valutatrade/valutahub/pkg/retrier"
	"go.uber.org/zap"
)

var one = decimal.NewFromInt(1)

// Manager resolves current rates from the cache, enforces the staleness
// policy and runs refreshes against the configured providers.
type Manager struct {
	cache     *storage.RateCache
	history   *storage.HistoryLog
	providers []Provider
	retrier   *retrier.Retrier
	ttl       time.Duration
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// Config carries Manager construction parameters.
type Config struct {
	// TTL is the default maximum rate age for lookups.
	TTL time.Duration
	// ProviderTimeout bounds each provider call during a refresh.
	ProviderTimeout time.Duration
}

// NewManager creates a Manager over the given stores and providers.
func NewManager(cache *storage.RateCache, history *storage.HistoryLog, providers []Provider, cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cache:     cache,
		history:   history,
		providers: providers,
		retrier:   retrier.New(),
		ttl:       cfg.TTL,
		timeout:   cfg.ProviderTimeout,
		logger:    logger,
		now:       time.Now,
	}
}

// TTL returns the configured default maximum rate age.
func (m *Manager) TTL() time.Duration { return m.ttl }

// GetRate returns the cached rate for the pair, enforcing maxAge (the
// configured TTL when maxAge is zero). A cached direct entry always wins;
// the inverse entry serves reciprocally only when the direct one is absent.
// A stale entry fails with StaleRateError so the caller decides whether to
// refresh; a pair cached in neither direction fails with UnknownPairError.
func (m *Manager) GetRate(pair domain.Pair, maxAge time.Duration) (domain.RatePair, error) {
	if maxAge <= 0 {
		maxAge = m.ttl
	}
	now := m.now()

	if pair.From == pair.To {
		return domain.RatePair{Pair: pair, Rate: one, UpdatedAt: now, Source: "identity"}, nil
	}

	if direct, ok := m.cache.Get(pair); ok {
		if !direct.Fresh(now, maxAge) {
			return domain.RatePair{}, &domain.StaleRateError{Pair: pair, UpdatedAt: direct.UpdatedAt, MaxAge: maxAge}
		}
		return direct, nil
	}

	if inverse, ok := m.cache.Get(pair.Inverse()); ok {
		if !inverse.Fresh(now, maxAge) {
			return domain.RatePair{}, &domain.StaleRateError{Pair: pair, UpdatedAt: inverse.UpdatedAt, MaxAge: maxAge}
		}
		return domain.RatePair{
			Pair:      pair,
			Rate:      one.Div(inverse.Rate),
			UpdatedAt: inverse.UpdatedAt,
			Source:    inverse.Source,
		}, nil
	}

	return domain.RatePair{}, &domain.UnknownPairError{Pair: pair}
}

// Convert turns an amount of the from currency into the to currency using
// the current rate, unrounded. Callers round to the target precision.
func (m *Manager) Convert(amount decimal.Decimal, from, to string, maxAge time.Duration) (decimal.Decimal, error) {
	rp, err := m.GetRate(domain.Pair{From: from, To: to}, maxAge)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount.Mul(rp.Rate), nil
}

// Refresh fetches current rates from every provider in scope and writes
// them through: journal append first, then cache put, so a crash mid-refresh
// never leaves a cached rate without its journal entry. Provider failures
// are collected into the report; Refresh fails outright only when no
// provider in scope delivered anything.
func (m *Manager) Refresh(ctx context.Context, scope domain.RefreshScope) (domain.RefreshReport, error) {
	report := domain.RefreshReport{}

	ran := 0
	for _, p := range m.providers {
		if !scope.Includes(p.Kind()) {
			continue
		}
		ran++

		m.logger.Info("fetching rates",
			zap.String("provider", p.Name()),
			zap.String("scope", scope.String()))

		result, err := m.fetch(ctx, p)
		if err != nil {
			provErr := asProviderError(p.Name(), err)
			m.logger.Error("provider fetch failed",
				zap.String("provider", p.Name()),
				zap.Error(provErr))
			report.Failures = append(report.Failures, provErr)
			continue
		}

		m.logger.Info("provider fetch done",
			zap.String("provider", p.Name()),
			zap.Int("rates", len(result.Observations)),
			zap.Duration("latency", result.Latency))

		observedAt := m.now()
		meta := domain.RecordMeta{
			RequestMS:  result.Latency.Milliseconds(),
			StatusCode: result.StatusCode,
		}

		for _, obs := range result.Observations {
			rec := domain.NewRateRecord(obs.Pair, obs.Rate, observedAt, p.Name(), meta)
			if err := m.history.Append(rec); err != nil {
				return report, errors.Wrapf(err, "append journal entry for %s", obs.Pair.String())
			}

			rp := domain.RatePair{Pair: obs.Pair, Rate: obs.Rate, UpdatedAt: observedAt, Source: p.Name()}
			if err := m.cache.Put(rp); err != nil {
				return report, errors.Wrapf(err, "cache rate for %s", obs.Pair.String())
			}

			report.Updated = append(report.Updated, obs.Pair)
		}
	}

	if ran == 0 {
		return report, errors.Errorf("no provider serves scope %s", scope.String())
	}
	if len(report.Updated) == 0 && len(report.Failures) > 0 {
		return report, errors.New("all providers failed, no rates updated")
	}

	report.LastRefresh = m.cache.LastRefresh()
	return report, nil
}

func (m *Manager) fetch(ctx context.Context, p Provider) (FetchResult, error) {
	return retrier.DoWithData(m.retrier, ctx, func(ctx context.Context) (FetchResult, error) {
		fetchCtx := ctx
		if m.timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(ctx, m.timeout)
			defer cancel()
		}
		return p.Fetch(fetchCtx)
	})
}

func asProviderError(provider string, err error) *domain.ProviderError {
	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		return provErr
	}
	return &domain.ProviderError{Provider: provider, Err: err}
}
