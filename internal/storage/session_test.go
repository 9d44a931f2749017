package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newSessionStore(t *testing.T, dir string) *SessionStore {
	t.Helper()
	store, err := NewJSONStore("session", filepath.Join(dir, ".session.json"))
	require.NoError(t, err)
	return NewSessionStore(store)
}

func TestSessionLifecycle(t *testing.T) {
	s := newSessionStore(t, t.TempDir())

	_, ok, err := s.Current()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(7))

	id, ok, err := s.Current()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 7, id)

	require.NoError(t, s.Clear())
	_, ok, err = s.Current()
	require.NoError(t, err)
	require.False(t, ok)

	// clearing twice is not an error
	require.NoError(t, s.Clear())
}
