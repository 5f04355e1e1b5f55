// Package kvstore provides the durable client-local key-value store that
// backs view preferences and the session token.
package kvstore

import "errors"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kvstore: store is closed")

// Store is a small string key-value store. Values are opaque to the store;
// callers serialize them (usually JSON).
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys returns the stored keys starting with prefix, sorted.
	Keys(prefix string) ([]string, error)
	// Close releases resources held by the store.
	Close() error
}
