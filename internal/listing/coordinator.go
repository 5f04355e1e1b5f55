// Package listing coordinates the state of one list view.
//
// A Coordinator composes the persisted view preference (view mode and page
// size) with the URL query string (page, perPage, sort, search and filters)
// and derives the parameter set the fetch layer keys off. The URL is the
// source of truth for query state; storage is the source of truth for the
// view preference.
package listing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cristianoliveira/retroshelf/internal/logging"
	"github.com/cristianoliveira/retroshelf/internal/prefs"
	"github.com/cristianoliveira/retroshelf/internal/urlstate"
)

var (
	// ErrUnknownFilter is returned when a filter name is not declared by the surface.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrUnknownSort is returned when a sort token is not offered by the surface.
	ErrUnknownSort = errors.New("unknown sort")
	// ErrInvalidPerPage is returned for a page size below 1.
	ErrInvalidPerPage = errors.New("perPage must be greater than zero")
	// ErrInvalidViewMode is returned for a view mode outside the supported set.
	ErrInvalidViewMode = errors.New("invalid view mode")
)

const fallbackPerPage = 20

// afterFunc schedules f after d and returns a stop function.
type afterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Options configures a Coordinator.
type Options struct {
	SearchDebounce time.Duration
	Logger         logging.Logger

	afterFunc afterFunc
}

// Option modifies coordinator options.
type Option func(*Options)

// WithSearchDebounce coalesces search URL writes made within d of each
// other. In-memory state still changes immediately. Zero disables it.
func WithSearchDebounce(d time.Duration) Option {
	return func(o *Options) {
		o.SearchDebounce = d
	}
}

// WithLogger sets the logger used for swallowed background failures.
func WithLogger(logger logging.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Coordinator owns the list state of one surface.
// All methods are safe for concurrent use.
type Coordinator struct {
	mu       sync.Mutex
	def      Definition
	router   urlstate.Router
	prefs    *prefs.Store
	opts     Options
	state    ListQueryState
	viewMode prefs.ViewMode
	// prefPerPage is the page size used when the URL carries none.
	prefPerPage int

	pending   map[string]string
	stopTimer func() bool
	// timerGen identifies the live debounce timer. A callback carrying an
	// older value lost the race with a later write and does nothing.
	timerGen  uint64
}

// New creates a coordinator and initializes it: stored preference first,
// then the URL (which wins for perPage), then the definition defaults.
func New(def Definition, router urlstate.Router, store *prefs.Store, opts ...Option) *Coordinator {
	o := Options{afterFunc: timeAfterFunc}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = logging.Noop()
	}
	if o.afterFunc == nil {
		o.afterFunc = timeAfterFunc
	}
	if def.DefaultPerPage <= 0 {
		def.DefaultPerPage = fallbackPerPage
	}
	if !def.DefaultViewMode.IsValid() {
		def.DefaultViewMode = prefs.ViewModeGrid
	}

	c := &Coordinator{
		def:         def,
		router:      router,
		prefs:       store,
		opts:        o,
		viewMode:    def.DefaultViewMode,
		prefPerPage: def.DefaultPerPage,
	}
	if pref := store.Load(def.Namespace); pref != nil {
		if pref.ViewMode != "" {
			c.viewMode = pref.ViewMode
		}
		if pref.PerPage > 0 {
			c.prefPerPage = pref.PerPage
		}
	}
	c.state = c.readState(router.Query())
	return c
}

// readState resolves the full query state from values. Every dimension
// absent from values falls back to its default.
func (c *Coordinator) readState(values url.Values) ListQueryState {
	s := ListQueryState{
		Page:    urlstate.ParsePositiveInt(values.Get(urlstate.ParamPage), 1),
		PerPage: urlstate.ParsePositiveInt(values.Get(urlstate.ParamPerPage), c.prefPerPage),
		Sort:    c.def.DefaultSort,
		Filters: make(map[string]FilterValue),
	}
	if sort := values.Get(urlstate.ParamSort); sort != "" && c.def.IsSortOption(sort) {
		s.Sort = sort
	}
	s.SearchQuery = values.Get(urlstate.ParamSearch)
	for _, f := range c.def.Filters {
		if !values.Has(f.Name) {
			continue
		}
		if v := ParseFilterValue(f.Kind, values.Get(f.Name)); !v.IsZero() {
			s.Filters[f.Name] = v
		}
	}
	return s
}

// Definition returns the surface definition.
func (c *Coordinator) Definition() Definition {
	return c.def
}

// State returns a copy of the current query state.
func (c *Coordinator) State() ListQueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// View returns the current view mode.
func (c *Coordinator) View() prefs.ViewMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMode
}

// Sync re-reads the URL. A parameter removed externally resets its
// dimension; pending debounced writes are dropped.
func (c *Coordinator) Sync() ListQueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	c.state = c.readState(c.router.Query())
	return c.state.Clone()
}

// FetchParams derives the fetch parameters from the in-memory state, so a
// fetch issued right after a setter sees the post-update values.
func (c *Coordinator) FetchParams(locale string) Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state.Clone()
	kinds := make(map[string]FilterKind, len(c.def.Filters))
	for _, f := range c.def.Filters {
		kinds[f.Name] = f.Kind
	}
	return Params{
		Namespace: c.def.Namespace,
		Path:      c.def.Path,
		Locale:    locale,
		Page:      s.Page,
		PerPage:   s.PerPage,
		Sort:      s.Sort,
		Search:    s.SearchQuery,
		Filters:   s.Filters,
		Kinds:     kinds,
	}
}

// SetSort changes the sort token and resets page to 1. Tokens the surface
// does not offer fail with ErrUnknownSort and leave state untouched.
func (c *Coordinator) SetSort(ctx context.Context, sort string) error {
	if !c.def.IsSortOption(sort) {
		return fmt.Errorf("%w: %q", ErrUnknownSort, sort)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Sort = sort
	c.state.Page = 1
	return c.writeLocked(ctx, map[string]string{urlstate.ParamSort: sort})
}

// SetSearchQuery changes the search term and resets page to 1. With a
// search debounce the URL write is deferred; state changes immediately.
func (c *Coordinator) SetSearchQuery(ctx context.Context, q string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SearchQuery = q
	c.state.Page = 1
	if c.opts.SearchDebounce <= 0 {
		return c.writeLocked(ctx, map[string]string{urlstate.ParamSearch: q})
	}
	if c.pending == nil {
		c.pending = make(map[string]string)
	}
	c.pending[urlstate.ParamSearch] = q
	if c.stopTimer != nil {
		c.stopTimer()
	}
	c.timerGen++
	gen := c.timerGen
	c.stopTimer = c.opts.afterFunc(c.opts.SearchDebounce, func() { c.flushFromTimer(gen) })
	return nil
}

// SetFilter replaces the selection of one filter dimension and resets page to 1.
func (c *Coordinator) SetFilter(ctx context.Context, name string, value FilterValue) error {
	spec, ok := c.def.FilterSpec(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	value = value.normalize(spec.Kind)

	c.mu.Lock()
	defer c.mu.Unlock()
	if value.IsZero() {
		delete(c.state.Filters, name)
	} else {
		c.state.Filters[name] = value
	}
	c.state.Page = 1
	return c.writeLocked(ctx, map[string]string{name: value.Encode(spec.Kind)})
}

// SetPage moves to page. Values below 1 are clamped to 1.
func (c *Coordinator) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Page = page
	return c.writeLocked(ctx, map[string]string{urlstate.ParamPage: strconv.Itoa(page)})
}

// SetPerPage changes the page size, resets page to 1 and persists the size.
func (c *Coordinator) SetPerPage(ctx context.Context, perPage int) error {
	if perPage <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPerPage, perPage)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PerPage = perPage
	c.state.Page = 1
	c.prefPerPage = perPage
	c.savePrefLocked()
	return c.writeLocked(ctx, map[string]string{
		urlstate.ParamPerPage: strconv.Itoa(perPage),
		urlstate.ParamPage:    "1",
	})
}

// SetViewMode changes and persists the view mode. The URL is not touched.
func (c *Coordinator) SetViewMode(mode prefs.ViewMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidViewMode, mode)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewMode = mode
	c.savePrefLocked()
	return nil
}

// ClearFilters drops every filter and the search term, resets page to 1 and
// replaces the query with exactly {sort, page=1, perPage}.
func (c *Coordinator) ClearFilters(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	c.state.Filters = make(map[string]FilterValue)
	c.state.SearchQuery = ""
	c.state.Page = 1

	values := url.Values{}
	if c.state.Sort != "" {
		values.Set(urlstate.ParamSort, c.state.Sort)
	}
	values.Set(urlstate.ParamPage, "1")
	values.Set(urlstate.ParamPerPage, strconv.Itoa(c.state.PerPage))
	return c.router.Replace(ctx, values)
}

// Flush writes any pending debounced updates now.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return nil
	}
	return c.writeLocked(ctx, nil)
}

// Close stops any pending debounce timer without writing.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
}

func (c *Coordinator) flushFromTimer(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.timerGen || len(c.pending) == 0 {
		return
	}
	if err := c.writeLocked(context.Background(), nil); err != nil {
		c.opts.Logger.Warn("debounced url write failed", "namespace", c.def.Namespace, "error", err)
	}
}

// writeLocked merges pending debounced updates under updates and writes them.
func (c *Coordinator) writeLocked(ctx context.Context, updates map[string]string) error {
	merged := make(map[string]string, len(c.pending)+len(updates))
	for k, v := range c.pending {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	c.cancelPendingLocked()
	if err := c.router.Write(ctx, merged); err != nil {
		return fmt.Errorf("write url for %s: %w", c.def.Namespace, err)
	}
	return nil
}

func (c *Coordinator) cancelPendingLocked() {
	c.timerGen++
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	c.pending = nil
}

func (c *Coordinator) savePrefLocked() {
	c.prefs.Save(c.def.Namespace, prefs.ViewPreference{
		ViewMode: c.viewMode,
		PerPage:  c.prefPerPage,
	})
}
