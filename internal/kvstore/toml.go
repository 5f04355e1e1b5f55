package kvstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// tomlDocument is the on-disk layout of the TOML store.
type tomlDocument struct {
	Values map[string]string `toml:"values"`
}

// TOMLStore keeps every key in a single TOML file. Each write re-reads the
// file under a directory lock and replaces it atomically, so separate
// processes sharing the file see last-writer-wins per key.
type TOMLStore struct {
	mu     sync.Mutex
	path   string
	closed bool
}

var _ Store = (*TOMLStore)(nil)

// NewTOMLStore opens (or lazily creates) a TOML store at path.
func NewTOMLStore(path string) (*TOMLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("toml store: path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("toml store: create directory: %w", err)
	}
	return &TOMLStore{path: path}, nil
}

// Path returns the file backing the store.
func (s *TOMLStore) Path() string {
	return s.path
}

func (s *TOMLStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrClosed
	}
	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *TOMLStore) Set(key, value string) error {
	return s.update(func(values map[string]string) {
		values[key] = value
	})
}

func (s *TOMLStore) Delete(key string) error {
	return s.update(func(values map[string]string) {
		delete(values, key)
	})
}

func (s *TOMLStore) Keys(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	values, err := s.read()
	if err != nil {
		return nil, err
	}
	return sortedKeys(values, prefix), nil
}

func (s *TOMLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *TOMLStore) update(mutate func(map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return withLock(s.path+".lock", func() error {
		values, err := s.read()
		if err != nil {
			return err
		}
		mutate(values)
		return s.write(values)
	})
}

// read loads the document. A missing file is an empty store.
func (s *TOMLStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("toml store: read %s: %w", s.path, err)
	}
	var doc tomlDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("toml store: parse %s: %w", s.path, err)
	}
	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}
	return doc.Values, nil
}

func (s *TOMLStore) write(values map[string]string) error {
	data, err := toml.Marshal(tomlDocument{Values: values})
	if err != nil {
		return fmt.Errorf("toml store: marshal: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".store-*.toml")
	if err != nil {
		return fmt.Errorf("toml store: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("toml store: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("toml store: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("toml store: replace %s: %w", s.path, err)
	}
	return nil
}
