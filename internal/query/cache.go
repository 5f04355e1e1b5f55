// Package query is the deduplicating fetch and cache layer list views read
// through.
//
// Identical keys share one in-flight request (singleflight) and one cache
// entry. Each view owns a slot; the slot remembers the last key it asked for
// and the last data it showed, so a new key can render the previous data as
// a placeholder until its own response lands. A response for a key that the
// slot has since moved away from is cached but never shown in that slot.
package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/retroshelf/internal/api"
	"github.com/cristianoliveira/retroshelf/internal/config"
	"github.com/cristianoliveira/retroshelf/internal/logging"
	"golang.org/x/sync/singleflight"
)

const (
	defaultStaleTime   = 30 * time.Second
	defaultMaxAttempts = 3
	defaultBaseDelay   = 200 * time.Millisecond
	maxDelay           = 5 * time.Second
)

// Gate reports whether requests may be issued. The session implements it so
// no request fires before the stored token has been restored.
type Gate interface {
	Initialized() bool
}

// GateFunc adapts a function to Gate.
type GateFunc func() bool

// Initialized implements Gate.
func (f GateFunc) Initialized() bool { return f() }

// Fetcher performs the network request for one key.
type Fetcher func(ctx context.Context) (any, error)

// Entry is what a view renders for one key.
type Entry struct {
	Data          any
	Err           error
	IsLoading     bool
	IsPlaceholder bool
	UpdatedAt     time.Time
}

// Kind classifies Err.
func (e Entry) Kind() api.ErrorKind {
	return api.Classify(e.Err)
}

// NotFound reports whether the request failed with a not-found error.
func (e Entry) NotFound() bool {
	return e.Kind() == api.KindNotFound
}

// RetryPolicy bounds retries of transient failures. Delays double from
// BaseDelay on each attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if d <= 0 || d > maxDelay {
		return maxDelay
	}
	return d
}

// Options configures a Cache.
type Options struct {
	Gate      Gate
	StaleTime time.Duration
	Retry     RetryPolicy
	Logger    logging.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option modifies cache options.
type Option func(*Options)

// WithGate sets the readiness gate.
func WithGate(g Gate) Option {
	return func(o *Options) { o.Gate = g }
}

// WithStaleTime sets how long a successful entry is served without refetching.
func WithStaleTime(d time.Duration) Option {
	return func(o *Options) { o.StaleTime = d }
}

// WithRetry sets the retry policy. MaxAttempts is clamped to [1, 3].
func WithRetry(p RetryPolicy) Option {
	return func(o *Options) { o.Retry = p }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

type cached struct {
	data      any
	err       error
	updatedAt time.Time
}

type slotState struct {
	current  string
	lastData any
	hasData  bool
}

// Cache deduplicates and caches fetches. It is safe for concurrent use.
type Cache struct {
	opts  Options
	group singleflight.Group

	mu       sync.Mutex
	entries  map[string]*cached
	failures map[string]error
	slots    map[string]*slotState
	callers  map[string]int
}

// New creates a cache.
func New(opts ...Option) *Cache {
	o := Options{
		StaleTime: defaultStaleTime,
		Retry:     RetryPolicy{MaxAttempts: defaultMaxAttempts, BaseDelay: defaultBaseDelay},
		now:       time.Now,
		sleep:     sleepCtx,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = logging.Noop()
	}
	if o.Retry.MaxAttempts < 1 {
		o.Retry.MaxAttempts = 1
	}
	if o.Retry.MaxAttempts > defaultMaxAttempts {
		o.Retry.MaxAttempts = defaultMaxAttempts
	}
	return &Cache{
		opts:     o,
		entries:  make(map[string]*cached),
		failures: make(map[string]error),
		slots:    make(map[string]*slotState),
		callers:  make(map[string]int),
	}
}

// NewFromConfig creates a cache using cache_stale_time, retry_max_attempts
// and retry_base_delay.
func NewFromConfig(gate Gate, opts ...Option) *Cache {
	base := []Option{
		WithGate(gate),
		WithStaleTime(config.GetDuration("cache_stale_time", defaultStaleTime)),
		WithRetry(RetryPolicy{
			MaxAttempts: config.GetInt("retry_max_attempts", defaultMaxAttempts),
			BaseDelay:   config.GetDuration("retry_base_delay", defaultBaseDelay),
		}),
		WithLogger(logging.GetGlobal()),
	}
	return New(append(base, opts...)...)
}

func (c *Cache) ready() bool {
	return c.opts.Gate == nil || c.opts.Gate.Initialized()
}

// Fetch returns the entry for key, running fn at most once across concurrent
// callers of the same key. A fresh cached entry is returned without calling
// fn. Before the gate opens it reports loading and does not call fn.
// The first caller's ctx governs the shared request.
func (c *Cache) Fetch(ctx context.Context, slot string, key Key, fn Fetcher) Entry {
	if !c.ready() {
		return Entry{IsLoading: true}
	}
	ks := key.String()

	c.mu.Lock()
	c.slotLocked(slot).current = ks
	if e, ok := c.entries[ks]; ok && c.freshLocked(e) {
		c.showLocked(slot, ks, e)
		c.mu.Unlock()
		return Entry{Data: e.data, Err: e.err, UpdatedAt: e.updatedAt}
	}
	c.callers[ks]++
	c.mu.Unlock()

	_, _, _ = c.group.Do(ks, func() (any, error) {
		// A caller that missed the previous flight finds its result here.
		c.mu.Lock()
		e, ok := c.entries[ks]
		fresh := ok && c.freshLocked(e)
		c.mu.Unlock()
		if !fresh {
			c.run(ctx, ks, fn)
		}
		return nil, nil
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.callers[ks]--; c.callers[ks] <= 0 {
		delete(c.callers, ks)
	}
	e, ok := c.entries[ks]
	if !ok {
		// Retryable failure: surfaced but not cached.
		return Entry{Err: c.lastErr(ks)}
	}
	c.showLocked(slot, ks, e)
	return Entry{Data: e.data, Err: e.err, UpdatedAt: e.updatedAt}
}

// Peek returns what slot should render for key without blocking. Missing
// data for a new key falls back to the slot's previous data, flagged as a
// placeholder.
func (c *Cache) Peek(slot string, key Key) Entry {
	if !c.ready() {
		return Entry{IsLoading: true}
	}
	ks := key.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[ks]; ok {
		return Entry{Data: e.data, Err: e.err, UpdatedAt: e.updatedAt}
	}
	if err := c.lastErr(ks); err != nil && c.callers[ks] == 0 {
		return Entry{Err: err}
	}
	if s, ok := c.slots[slot]; ok && s.hasData {
		return Entry{Data: s.lastData, IsLoading: true, IsPlaceholder: true}
	}
	return Entry{IsLoading: true}
}

// Current returns the key string slot last asked for.
func (c *Cache) Current(slot string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.slots[slot]; ok {
		return s.current
	}
	return ""
}

// Invalidate drops every entry whose key starts with prefix. Slots keep
// their last data so views can show it while refetching.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for ks := range c.entries {
		if strings.HasPrefix(ks, prefix) {
			delete(c.entries, ks)
			n++
		}
	}
	for ks := range c.failures {
		if strings.HasPrefix(ks, prefix) {
			delete(c.failures, ks)
		}
	}
	if n > 0 {
		c.opts.Logger.Debug("cache invalidated", "prefix", prefix, "entries", n)
	}
	return n
}

func (c *Cache) run(ctx context.Context, ks string, fn Fetcher) {
	var (
		data any
		err  error
	)
	for attempt := 1; ; attempt++ {
		data, err = fn(ctx)
		if err == nil {
			break
		}
		kind := api.Classify(err)
		if !kind.Retryable() || attempt >= c.opts.Retry.MaxAttempts || ctx.Err() != nil {
			break
		}
		delay := c.opts.Retry.delay(attempt)
		c.opts.Logger.Debug("retrying request", "key", ks, "attempt", attempt, "kind", kind.String(), "delay", delay)
		if c.opts.sleep(ctx, delay) != nil {
			break
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil && api.Classify(err).Retryable() {
		delete(c.entries, ks)
		c.failures[ks] = err
		c.opts.Logger.Warn("request failed", "key", ks, "error", err)
		return
	}
	delete(c.failures, ks)
	c.entries[ks] = &cached{data: data, err: err, updatedAt: c.opts.now()}
}

func (c *Cache) lastErr(ks string) error {
	return c.failures[ks]
}

func (c *Cache) freshLocked(e *cached) bool {
	return c.opts.now().Sub(e.updatedAt) < c.opts.StaleTime
}

func (c *Cache) slotLocked(slot string) *slotState {
	s, ok := c.slots[slot]
	if !ok {
		s = &slotState{}
		c.slots[slot] = s
	}
	return s
}

// showLocked records e as what slot renders, unless slot moved on to
// another key.
func (c *Cache) showLocked(slot, ks string, e *cached) {
	s := c.slotLocked(slot)
	if s.current != ks || e.err != nil {
		return
	}
	s.lastData = e.data
	s.hasData = true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
