// Package urlstate mirrors list state into a URL query string.
//
// A Router is the seam between list coordinators and whatever owns the
// navigable location. Writes always replace the current history entry; they
// never push, so filter tweaks do not pile up in back-navigation.
package urlstate

import (
	"context"
	"net/url"
)

// Well-known parameter names shared by every list surface.
const (
	ParamPage    = "page"
	ParamPerPage = "perPage"
	ParamSort    = "sort"
	ParamSearch  = "search"
)

// Router reads and writes the query string of the current location.
type Router interface {
	// Read returns the raw value of name and whether it is present.
	Read(name string) (string, bool)
	// Write merges updates into the current query. An empty value deletes the
	// key. page is forced to 1 unless updates carry page.
	Write(ctx context.Context, updates map[string]string) error
	// Replace swaps the whole query for values.
	Replace(ctx context.Context, values url.Values) error
	// Query returns a copy of the current query.
	Query() url.Values
}

// Merge applies the Write rules to a copy of current and returns it.
func Merge(current url.Values, updates map[string]string) url.Values {
	next := cloneValues(current)
	for name, value := range updates {
		if value == "" {
			next.Del(name)
			continue
		}
		next.Set(name, value)
	}
	if _, ok := updates[ParamPage]; !ok {
		next.Set(ParamPage, "1")
	}
	return next
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
