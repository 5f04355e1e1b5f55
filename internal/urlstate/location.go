package urlstate

import (
	"context"
	"fmt"
	"net/url"
	"sync"
)

// Location is an in-process Router holding one navigable URL.
// External changes arrive through Navigate; subscribers are told about every
// change, internal or external.
type Location struct {
	mu          sync.RWMutex
	current     *url.URL
	replaces    int
	subscribers []chan url.Values
}

var _ Router = (*Location)(nil)

// NewLocation parses rawURL as the starting location. A bare query string
// such as "?page=2" or "page=2" is accepted.
func NewLocation(rawURL string) (*Location, error) {
	u, err := parseLocation(rawURL)
	if err != nil {
		return nil, err
	}
	return &Location{current: u}, nil
}

func parseLocation(rawURL string) (*url.URL, error) {
	if rawURL != "" && rawURL[0] != '?' && rawURL[0] != '/' && !hasScheme(rawURL) {
		rawURL = "?" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse location %q: %w", rawURL, err)
	}
	if _, err := url.ParseQuery(u.RawQuery); err != nil {
		return nil, fmt.Errorf("parse query %q: %w", u.RawQuery, err)
	}
	return u, nil
}

func hasScheme(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != ""
}

// Read implements Router.
func (l *Location) Read(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	q := l.current.Query()
	if !q.Has(name) {
		return "", false
	}
	return q.Get(name), true
}

// Query implements Router.
func (l *Location) Query() url.Values {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current.Query()
}

// Write implements Router.
func (l *Location) Write(ctx context.Context, updates map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	next := Merge(l.current.Query(), updates)
	l.replaceLocked(next)
	l.mu.Unlock()
	l.notify(next)
	return nil
}

// Replace implements Router.
func (l *Location) Replace(ctx context.Context, values url.Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	next := cloneValues(values)
	l.replaceLocked(next)
	l.mu.Unlock()
	l.notify(next)
	return nil
}

func (l *Location) replaceLocked(values url.Values) {
	u := *l.current
	u.RawQuery = Encode(values)
	l.current = &u
	l.replaces++
}

// Navigate moves to rawURL as if the user edited the address bar.
// It does not count as a replace-navigation.
func (l *Location) Navigate(rawURL string) error {
	u, err := parseLocation(rawURL)
	if err != nil {
		return err
	}
	l.mu.Lock()
	if u.Path == "" {
		u.Path = l.current.Path
	}
	l.current = u
	q := u.Query()
	l.mu.Unlock()
	l.notify(q)
	return nil
}

// String returns the current location.
func (l *Location) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current.String()
}

// RawQuery returns the encoded query without the leading '?'.
func (l *Location) RawQuery() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current.RawQuery
}

// Replaces returns how many replace-navigations have happened.
func (l *Location) Replaces() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.replaces
}

// Subscribe returns a channel that receives the query after every change.
// Sends never block: a slow subscriber misses intermediate states.
func (l *Location) Subscribe() <-chan url.Values {
	ch := make(chan url.Values, 1)
	l.mu.Lock()
	l.subscribers = append(l.subscribers, ch)
	l.mu.Unlock()
	return ch
}

func (l *Location) notify(values url.Values) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, ch := range l.subscribers {
		select {
		case ch <- cloneValues(values):
		default:
			// Drop the stale pending value and keep the newest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- cloneValues(values):
			default:
			}
		}
	}
}
