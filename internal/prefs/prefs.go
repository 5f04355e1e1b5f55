// Package prefs persists per-surface view preferences (view mode and page
// size) in the durable client-local store.
package prefs

import (
	"encoding/json"
	"strings"

	"github.com/cristianoliveira/retroshelf/internal/kvstore"
	"github.com/cristianoliveira/retroshelf/internal/logging"
)

// KeyPrefix namespaces preference entries inside the shared store.
const KeyPrefix = "prefs:"

// ViewPreference holds display settings for one list surface.
//
// JSON Schema:
//
//	{
//	  "viewMode": "grid",
//	  "perPage": 20
//	}
//
// Zero values mean "not set" and are filled from the surface defaults.
type ViewPreference struct {
	ViewMode ViewMode `json:"viewMode,omitempty"`
	PerPage  int      `json:"perPage,omitempty"`
}

// IsEmpty returns true if no field is set.
func (p ViewPreference) IsEmpty() bool {
	return p.ViewMode == "" && p.PerPage == 0
}

// Store reads and writes ViewPreference values keyed by namespace.
// Failures never reach the caller: a preference that cannot be read is
// absent, one that cannot be written simply does not persist.
type Store struct {
	kv     kvstore.Store
	logger logging.Logger
}

// NewStore creates a preference store over kv.
func NewStore(kv kvstore.Store, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Noop()
	}
	return &Store{kv: kv, logger: logger}
}

// Load returns the stored preference for namespace, or nil if it is absent
// or cannot be parsed. Unknown fields are ignored; invalid fields come back zero.
func (s *Store) Load(namespace string) *ViewPreference {
	if s == nil || s.kv == nil {
		return nil
	}
	raw, ok, err := s.kv.Get(storageKey(namespace))
	if err != nil {
		s.logger.Debug("prefs load failed", "namespace", namespace, "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var stored struct {
		ViewMode string          `json:"viewMode"`
		PerPage  json.RawMessage `json:"perPage"`
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Debug("prefs parse failed", "namespace", namespace, "error", err)
		return nil
	}

	pref := &ViewPreference{}
	if mode, ok := ParseViewMode(stored.ViewMode); ok {
		pref.ViewMode = mode
	}
	var perPage int
	if len(stored.PerPage) > 0 && json.Unmarshal(stored.PerPage, &perPage) == nil && perPage > 0 {
		pref.PerPage = perPage
	}
	return pref
}

// Save stores pref under namespace. Errors are logged and swallowed.
func (s *Store) Save(namespace string, pref ViewPreference) {
	if s == nil || s.kv == nil {
		return
	}
	data, err := json.Marshal(pref)
	if err != nil {
		s.logger.Debug("prefs marshal failed", "namespace", namespace, "error", err)
		return
	}
	if err := s.kv.Set(storageKey(namespace), string(data)); err != nil {
		s.logger.Debug("prefs save failed", "namespace", namespace, "error", err)
	}
}

// Reset deletes the stored preference for namespace.
func (s *Store) Reset(namespace string) error {
	return s.kv.Delete(storageKey(namespace))
}

// Namespaces lists every namespace that has a stored preference.
func (s *Store) Namespaces() ([]string, error) {
	keys, err := s.kv.Keys(KeyPrefix)
	if err != nil {
		return nil, err
	}
	namespaces := make([]string, 0, len(keys))
	for _, k := range keys {
		namespaces = append(namespaces, strings.TrimPrefix(k, KeyPrefix))
	}
	return namespaces, nil
}

func storageKey(namespace string) string {
	return KeyPrefix + namespace
}
