package storage

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutahub/internal/domain"
)

type cachedPair struct {
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
	Source    string          `json:"source"`
}

type rateCacheFile struct {
	Pairs       map[string]cachedPair `json:"pairs"`
	LastRefresh time.Time             `json:"last_refresh"`
}

// RateCache holds the current best-known rate per ordered pair, one entry
// per pair, overwritten on refresh. Every Put commits synchronously so a
// crash after Put returns is durable.
type RateCache struct {
	store *JSONStore

	mu   sync.RWMutex
	data rateCacheFile
}

// NewRateCache opens the cache store and loads the current snapshot.
func NewRateCache(store *JSONStore) (*RateCache, error) {
	c := &RateCache{
		store: store,
		data:  rateCacheFile{Pairs: make(map[string]cachedPair)},
	}
	if err := store.Load(&c.data); err != nil {
		return nil, err
	}
	if c.data.Pairs == nil {
		c.data.Pairs = make(map[string]cachedPair)
	}
	return c, nil
}

// Get returns the cached rate for the exact ordered pair.
func (c *RateCache) Get(pair domain.Pair) (domain.RatePair, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data.Pairs[pair.String()]
	if !ok {
		return domain.RatePair{}, false
	}
	return domain.RatePair{Pair: pair, Rate: entry.Rate, UpdatedAt: entry.UpdatedAt, Source: entry.Source}, true
}

// Put replaces the entry for the pair and commits the whole snapshot.
func (c *RateCache) Put(rp domain.RatePair) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous, hadPrevious := c.data.Pairs[rp.Pair.String()]
	previousRefresh := c.data.LastRefresh

	c.data.Pairs[rp.Pair.String()] = cachedPair{Rate: rp.Rate, UpdatedAt: rp.UpdatedAt, Source: rp.Source}
	if rp.UpdatedAt.After(c.data.LastRefresh) {
		c.data.LastRefresh = rp.UpdatedAt
	}

	if err := c.store.Commit(&c.data); err != nil {
		// Keep the in-memory view consistent with the last durable state.
		if hadPrevious {
			c.data.Pairs[rp.Pair.String()] = previous
		} else {
			delete(c.data.Pairs, rp.Pair.String())
		}
		c.data.LastRefresh = previousRefresh
		return err
	}
	return nil
}

// All returns every cached pair, unordered.
func (c *RateCache) All() []domain.RatePair {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.RatePair, 0, len(c.data.Pairs))
	for key, entry := range c.data.Pairs {
		pair, err := domain.ParsePair(key)
		if err != nil {
			continue
		}
		out = append(out, domain.RatePair{Pair: pair, Rate: entry.Rate, UpdatedAt: entry.UpdatedAt, Source: entry.Source})
	}
	return out
}

// LastRefresh returns the timestamp of the most recent Put, zero when the
// cache has never been written.
func (c *RateCache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.LastRefresh
}
