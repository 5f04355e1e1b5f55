package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "store.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestNewSQLiteStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStore("  ")
	require.Error(t, err)
}

func TestSetGetDelete(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.Get("prefs:game-catalog")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set("prefs:game-catalog", `{"viewMode":"grid","perPage":20}`))
	require.NoError(t, s.Set("prefs:game-catalog", `{"viewMode":"list","perPage":10}`))

	value, ok, err := s.Get("prefs:game-catalog")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"viewMode":"list","perPage":10}`, value)

	require.NoError(t, s.Delete("prefs:game-catalog"))
	require.NoError(t, s.Delete("prefs:game-catalog"))
	_, ok, err = s.Get("prefs:game-catalog")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeysByPrefix(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Set("prefs:b", "2"))
	require.NoError(t, s.Set("prefs:a", "1"))
	require.NoError(t, s.Set("auth:token", "t"))
	require.NoError(t, s.Set("prefs_other", "x"))

	keys, err := s.Keys("prefs:")
	require.NoError(t, err)
	require.Equal(t, []string{"prefs:a", "prefs:b"}, keys)

	all, err := s.Keys("")
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func TestEmptyKeyRejected(t *testing.T) {
	s := newTestStore(t)
	require.ErrorIs(t, s.Set("", "v"), ErrEmptyKey)
	_, _, err := s.Get("")
	require.ErrorIs(t, err, ErrEmptyKey)
}

func TestValuesSurviveReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Set("auth:token", "abc"))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()
	value, ok, err := reopened.Get("auth:token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", value)
}
