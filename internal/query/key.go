package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Key identifies one cached request. It is the ordered tuple of every
// resolved parameter; list parameters are sorted before they are added.
// Keys are immutable: every Add returns a new Key.
type Key struct {
	namespace string
	parts     []keyPart
}

type keyPart struct {
	name  string
	value string
}

// NewKey starts a key for namespace.
func NewKey(namespace string) Key {
	return Key{namespace: namespace}
}

// Add appends one parameter.
func (k Key) Add(name, value string) Key {
	parts := make([]keyPart, len(k.parts), len(k.parts)+1)
	copy(parts, k.parts)
	return Key{namespace: k.namespace, parts: append(parts, keyPart{name: name, value: value})}
}

// AddList appends a list parameter in sorted order. values is not modified.
func (k Key) AddList(name string, values []string) Key {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return k.Add(name, strings.Join(sorted, ","))
}

// AddInts appends an integer list parameter in ascending order.
func (k Key) AddInts(name string, values []int) Key {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, n := range sorted {
		parts[i] = strconv.Itoa(n)
	}
	return k.Add(name, strings.Join(parts, ","))
}

// Namespace returns the namespace the key was started with.
func (k Key) Namespace() string {
	return k.namespace
}

// IsZero reports whether the key was never initialized.
func (k Key) IsZero() bool {
	return k.namespace == "" && len(k.parts) == 0
}

// String returns the cache identity, e.g. "game-catalog?locale=en&page=1".
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(k.namespace)
	for i, p := range k.parts {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}
