package storage

import (
	"sync"
	"time"

	"github.com/valutatrade/valutahub/internal/domain"
)

type userEntry struct {
	UserID           int       `json:"user_id"`
	Username         string    `json:"username"`
	HashedPassword   string    `json:"hashed_password"`
	Salt             string    `json:"salt"`
	RegistrationDate time.Time `json:"registration_date"`
}

// UserStore persists account records.
type UserStore struct {
	store *JSONStore
	mu    sync.Mutex
}

// NewUserStore wraps the users JSON store.
func NewUserStore(store *JSONStore) *UserStore {
	return &UserStore{store: store}
}

func (s *UserStore) readAll() ([]userEntry, error) {
	var entries []userEntry
	if err := s.store.Load(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func fromEntry(e userEntry) domain.User {
	return domain.User{
		ID:             e.UserID,
		Username:       e.Username,
		HashedPassword: e.HashedPassword,
		Salt:           e.Salt,
		RegisteredAt:   e.RegistrationDate,
	}
}

// ByID returns the user with the given id.
func (s *UserStore) ByID(id int) (domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return domain.User{}, false, err
	}
	for _, e := range entries {
		if e.UserID == id {
			return fromEntry(e), true, nil
		}
	}
	return domain.User{}, false, nil
}

// ByUsername returns the user with the given username.
func (s *UserStore) ByUsername(username string) (domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return domain.User{}, false, err
	}
	for _, e := range entries {
		if e.Username == username {
			return fromEntry(e), true, nil
		}
	}
	return domain.User{}, false, nil
}

// NextID returns max(user_id)+1.
func (s *UserStore) NextID() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return 0, err
	}
	next := 1
	for _, e := range entries {
		if e.UserID >= next {
			next = e.UserID + 1
		}
	}
	return next, nil
}

// Save appends or replaces the user record and commits atomically.
func (s *UserStore) Save(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return err
	}

	entry := userEntry{
		UserID:           u.ID,
		Username:         u.Username,
		HashedPassword:   u.HashedPassword,
		Salt:             u.Salt,
		RegistrationDate: u.RegisteredAt,
	}

	replaced := false
	for i := range entries {
		if entries[i].UserID == u.ID {
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
