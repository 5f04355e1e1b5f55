package urlstate

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocation(t *testing.T, raw string) *Location {
	t.Helper()
	loc, err := NewLocation(raw)
	require.NoError(t, err)
	return loc
}

func TestReadDistinguishesAbsentFromEmpty(t *testing.T) {
	loc := newLocation(t, "/games?search=&page=3")

	v, ok := loc.Read("page")
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	v, ok = loc.Read("search")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = loc.Read("sort")
	assert.False(t, ok)
}

func TestWriteMergesAndResetsPage(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		updates map[string]string
		want    string
	}{
		{
			name:    "filter change resets page",
			start:   "?page=7&sort=name-asc",
			updates: map[string]string{"genres": "1,2"},
			want:    "sort=name-asc&page=1&genres=1%2C2",
		},
		{
			name:    "explicit page kept",
			start:   "?page=7&sort=name-asc",
			updates: map[string]string{"page": "8"},
			want:    "sort=name-asc&page=8",
		},
		{
			name:    "empty value deletes",
			start:   "?search=zelda&page=2",
			updates: map[string]string{"search": ""},
			want:    "page=1",
		},
		{
			name:    "unrelated params survive merge",
			start:   "?ref=home",
			updates: map[string]string{"sort": "price-asc"},
			want:    "sort=price-asc&page=1&ref=home",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := newLocation(t, tt.start)
			require.NoError(t, loc.Write(context.Background(), tt.updates))
			assert.Equal(t, tt.want, loc.RawQuery())
			assert.Equal(t, 1, loc.Replaces())
		})
	}
}

func TestReplaceDiscardsEverything(t *testing.T) {
	loc := newLocation(t, "/c?sort=name-asc&page=4&perPage=20&weirdParam=x&search=foo")

	err := loc.Replace(context.Background(), url.Values{
		"sort":    {"name-asc"},
		"page":    {"1"},
		"perPage": {"20"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/c?sort=name-asc&page=1&perPage=20", loc.String())
}

func TestWriteHonoursCancelledContext(t *testing.T) {
	loc := newLocation(t, "?page=2")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, loc.Write(ctx, map[string]string{"sort": "x"}), context.Canceled)
	assert.Equal(t, "page=2", loc.RawQuery())
	assert.Zero(t, loc.Replaces())
}

func TestNavigateNotifiesSubscribers(t *testing.T) {
	loc := newLocation(t, "/games?search=zelda")
	ch := loc.Subscribe()

	require.NoError(t, loc.Navigate("?page=2"))

	got := <-ch
	assert.Equal(t, "2", got.Get("page"))
	assert.False(t, got.Has("search"))
	assert.Equal(t, "/games?page=2", loc.String())
	assert.Zero(t, loc.Replaces())
}

func TestSubscriberKeepsNewestValue(t *testing.T) {
	loc := newLocation(t, "")
	ch := loc.Subscribe()

	require.NoError(t, loc.Write(context.Background(), map[string]string{"sort": "a"}))
	require.NoError(t, loc.Write(context.Background(), map[string]string{"sort": "b"}))

	got := <-ch
	assert.Equal(t, "b", got.Get("sort"))
}

func TestBareQueryAccepted(t *testing.T) {
	loc := newLocation(t, "page=3&sort=name-desc")
	v, _ := loc.Read("sort")
	assert.Equal(t, "name-desc", v)
}

func TestInvalidQueryRejected(t *testing.T) {
	_, err := NewLocation("?page=%zz")
	assert.Error(t, err)
}

func TestCoercion(t *testing.T) {
	assert.Equal(t, 5, ParseInt(" 5 ", 1))
	assert.Equal(t, 1, ParseInt("five", 1))
	assert.Equal(t, 20, ParsePositiveInt("-3", 20))
	assert.Equal(t, 20, ParsePositiveInt("0", 20))

	v, ok := ParseBool("YES")
	assert.True(t, ok)
	assert.True(t, v)
	_, ok = ParseBool("maybe")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, ParseList(" a, ,b,"))
	assert.Nil(t, ParseList(" , "))
	assert.Equal(t, "a,b", JoinList([]string{"a", "b"}))
	assert.Equal(t, []int{3, 1}, ParseIntList("3,x,1"))
	assert.Nil(t, ParseIntList("x"))
	assert.Equal(t, "3,1", JoinIntList([]int{3, 1}))
}

func TestEncodeOrdersWellKnownParamsFirst(t *testing.T) {
	values := url.Values{
		"zeta":    {"1"},
		"search":  {"mario kart"},
		"perPage": {"20"},
		"alpha":   {"x"},
		"page":    {"2"},
		"sort":    {"name-asc"},
	}
	assert.Equal(t, "sort=name-asc&page=2&perPage=20&search=mario+kart&alpha=x&zeta=1", Encode(values))
	assert.Equal(t, "", Encode(nil))
}
