package listing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/retroshelf/internal/urlstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeClock captures scheduled callbacks so tests fire them by hand.
type fakeClock struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (c *fakeClock) afterFunc(d time.Duration, f func()) func() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.pending = append(c.pending, t)
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		wasActive := !t.stopped
		t.stopped = true
		return wasActive
	}
}

// fire runs every timer that was not stopped.
func (c *fakeClock) fire() int {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.pending {
		if !t.stopped {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.pending = nil
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
	return len(due)
}

func withClock(c *fakeClock) Option {
	return func(o *Options) {
		o.afterFunc = c.afterFunc
	}
}

func TestSearchWithoutDebounceWritesEveryKeystroke(t *testing.T) {
	f := newFixture(t, "/games")
	c := f.coordinator(GameCatalog())

	for _, q := range []string{"z", "ze", "zel"} {
		require.NoError(t, c.SetSearchQuery(context.Background(), q))
	}

	assert.Equal(t, 3, f.loc.Replaces())
}

func TestSearchDebounceCoalescesWrites(t *testing.T) {
	clock := &fakeClock{}
	f := newFixture(t, "/games?page=4")
	c := f.coordinator(GameCatalog(), WithSearchDebounce(300*time.Millisecond), withClock(clock))

	for _, q := range []string{"z", "ze", "zel"} {
		require.NoError(t, c.SetSearchQuery(context.Background(), q))
		assert.Equal(t, q, c.State().SearchQuery, "state changes before the write")
		assert.Equal(t, 1, c.State().Page)
	}
	assert.Zero(t, f.loc.Replaces())

	assert.Equal(t, 1, clock.fire())
	assert.Equal(t, 1, f.loc.Replaces())
	search, _ := f.loc.Read(urlstate.ParamSearch)
	assert.Equal(t, "zel", search)
	page, _ := f.loc.Read(urlstate.ParamPage)
	assert.Equal(t, "1", page)
}

func TestStaleTimerCallbackDoesNotFlushNewerSearch(t *testing.T) {
	clock := &fakeClock{}
	f := newFixture(t, "/games")
	c := f.coordinator(GameCatalog(), WithSearchDebounce(time.Second), withClock(clock))

	require.NoError(t, c.SetSearchQuery(context.Background(), "a"))
	clock.mu.Lock()
	stale := clock.pending[0].f
	clock.mu.Unlock()
	require.NoError(t, c.SetSearchQuery(context.Background(), "b"))

	// The first timer fired before the second keystroke could stop it.
	stale()
	assert.Zero(t, f.loc.Replaces())
	_, ok := f.loc.Read(urlstate.ParamSearch)
	assert.False(t, ok)

	assert.Equal(t, 1, clock.fire())
	search, _ := f.loc.Read(urlstate.ParamSearch)
	assert.Equal(t, "b", search)
	assert.Equal(t, 1, f.loc.Replaces())
}

func TestOtherWritesCarryPendingSearch(t *testing.T) {
	clock := &fakeClock{}
	f := newFixture(t, "/games")
	c := f.coordinator(GameCatalog(), WithSearchDebounce(time.Second), withClock(clock))

	require.NoError(t, c.SetSearchQuery(context.Background(), "kirby"))
	require.NoError(t, c.SetSort(context.Background(), "name-desc"))

	assert.Equal(t, "sort=name-desc&page=1&search=kirby", f.loc.RawQuery())
	assert.Zero(t, clock.fire(), "the write consumed the pending timer")
}

func TestFlushAndClearFiltersDropPending(t *testing.T) {
	clock := &fakeClock{}
	f := newFixture(t, "/games?sort=name-asc&perPage=20")
	c := f.coordinator(GameCatalog(), WithSearchDebounce(time.Second), withClock(clock))

	require.NoError(t, c.SetSearchQuery(context.Background(), "sonic"))
	require.NoError(t, c.Flush(context.Background()))
	search, _ := f.loc.Read(urlstate.ParamSearch)
	assert.Equal(t, "sonic", search)
	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, 1, f.loc.Replaces())

	require.NoError(t, c.SetSearchQuery(context.Background(), "tails"))
	require.NoError(t, c.ClearFilters(context.Background()))
	assert.Zero(t, clock.fire())
	assert.Equal(t, "sort=name-asc&page=1&perPage=20", f.loc.RawQuery())
}

func TestRealTimerDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, "/games")
	c := f.coordinator(GameCatalog(), WithSearchDebounce(5*time.Millisecond))
	ch := f.loc.Subscribe()

	require.NoError(t, c.SetSearchQuery(context.Background(), "mega man"))

	select {
	case got := <-ch:
		assert.Equal(t, "mega man", got.Get(urlstate.ParamSearch))
	case <-time.After(2 * time.Second):
		t.Fatal("debounced write never happened")
	}

	require.NoError(t, c.SetSearchQuery(context.Background(), "never written"))
	c.Close()
}
