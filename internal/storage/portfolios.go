package storage

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutahub/internal/domain"
)

type walletEntry struct {
	Balance decimal.Decimal `json:"balance"`
}

type portfolioEntry struct {
	UserID  int                    `json:"user_id"`
	Wallets map[string]walletEntry `json:"wallets"`
}

// PortfolioStore persists per-user wallets as one JSON document with full
// replace semantics. There is no partial-wallet update: callers read, modify
// a copy and save the whole portfolio back.
type PortfolioStore struct {
	store *JSONStore
	mu    sync.Mutex
}

// NewPortfolioStore wraps the portfolios JSON store.
func NewPortfolioStore(store *JSONStore) *PortfolioStore {
	return &PortfolioStore{store: store}
}

func (s *PortfolioStore) readAll() ([]portfolioEntry, error) {
	var entries []portfolioEntry
	if err := s.store.Load(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Load returns the user's portfolio, empty when the user has none yet.
func (s *PortfolioStore) Load(userID int) (domain.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return domain.Portfolio{}, err
	}

	for _, e := range entries {
		if e.UserID != userID {
			continue
		}
		p := domain.NewPortfolio(userID)
		for code, w := range e.Wallets {
			p.Wallets[code] = w.Balance
		}
		return p, nil
	}
	return domain.NewPortfolio(userID), nil
}

// Save replaces the user's portfolio and commits atomically.
func (s *PortfolioStore) Save(p domain.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return err
	}

	wallets := make(map[string]walletEntry, len(p.Wallets))
	for code, balance := range p.Wallets {
		wallets[code] = walletEntry{Balance: balance}
	}
	entry := portfolioEntry{UserID: p.UserID, Wallets: wallets}

	replaced := false
	for i := range entries {
		if entries[i].UserID == p.UserID {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}

	return s.store.Commit(entries)
}
