package kvstore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cristianoliveira/retroshelf/internal/colors"
	"github.com/cristianoliveira/retroshelf/internal/config"
	"github.com/cristianoliveira/retroshelf/internal/kvstore/sqlite"
)

const (
	// BackendSQLite selects the SQLite-backed store.
	BackendSQLite = "sqlite"
	// BackendTOML selects the single-file TOML store.
	BackendTOML = "toml"
	// BackendMemory selects a non-durable in-process store.
	BackendMemory = "memory"

	sqliteFileName = "retroshelf.db"
	tomlFileName   = "store.toml"
)

var _ Store = (*sqlite.SQLiteStore)(nil)

// NewFromConfig creates a store based on the prefs_backend configuration key.
func NewFromConfig() Store {
	return NewForBackend(config.Get("prefs_backend", BackendSQLite), config.Get("state_dir", ""))
}

// NewForBackend creates a store for the named backend inside stateDir. It
// never fails: when a durable backend cannot be opened it warns and falls
// back to the next one (sqlite, toml, memory), so preferences degrade to
// non-persistent rather than blocking the app.
func NewForBackend(backend, stateDir string) Store {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSQLite:
		store, err := openSQLite(stateDir)
		if err == nil {
			return store
		}
		colors.Warning(fmt.Sprintf("failed to initialize sqlite store, falling back to toml: %v", err))
		return NewForBackend(BackendTOML, stateDir)
	case BackendTOML:
		store, err := openTOML(stateDir)
		if err == nil {
			return store
		}
		colors.Warning(fmt.Sprintf("failed to initialize toml store, preferences will not persist: %v", err))
		return NewMemoryStore()
	case BackendMemory:
		return NewMemoryStore()
	default:
		colors.Warning(fmt.Sprintf("unknown prefs backend '%s', falling back to sqlite", backend))
		return NewForBackend(BackendSQLite, stateDir)
	}
}

func openSQLite(stateDir string) (Store, error) {
	if strings.TrimSpace(stateDir) == "" {
		return nil, fmt.Errorf("state_dir not configured")
	}
	return sqlite.NewSQLiteStore(filepath.Join(stateDir, sqliteFileName))
}

func openTOML(stateDir string) (Store, error) {
	if strings.TrimSpace(stateDir) == "" {
		return nil, fmt.Errorf("state_dir not configured")
	}
	return NewTOMLStore(filepath.Join(stateDir, tomlFileName))
}
