package storage

import "os"

type sessionFile struct {
	UserID int `json:"user_id"`
}

// SessionStore remembers which user is logged in between CLI invocations.
type SessionStore struct {
	store *JSONStore
}

// NewSessionStore wraps the session JSON store.
func NewSessionStore(store *JSONStore) *SessionStore {
	return &SessionStore{store: store}
}

// Current returns the logged-in user id, false when nobody is logged in.
func (s *SessionStore) Current() (int, bool, error) {
	data := sessionFile{}
	if err := s.store.Load(&data); err != nil {
		return 0, false, err
	}
	if data.UserID == 0 {
		return 0, false, nil
	}
	return data.UserID, true, nil
}

// Set records the logged-in user.
func (s *SessionStore) Set(userID int) error {
	return s.store.Commit(sessionFile{UserID: userID})
}

// Clear forgets the session.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.store.Path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
