package main

import (
	"testing"

	"github.com/cristianoliveira/retroshelf/internal/errors"
	"github.com/cristianoliveira/retroshelf/internal/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListCmdPanicsOnNilLoader(t *testing.T) {
	require.Panics(t, func() { NewListCmd(nil) })
}

func TestListPrintsPageAndURL(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, NewListCmd(env.load), "", "games", "--view", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Item 0")
	assert.Contains(t, out, "page 1/8 · 150 results")
	assert.Contains(t, out, "/games")

	req := env.backend.last("/api/games")
	require.NotNil(t, req)
	assert.Equal(t, "1", req.URL.Query().Get("page"))
	assert.Equal(t, "20", req.URL.Query().Get("perPage"))
	assert.Equal(t, "name-asc", req.URL.Query().Get("sort"))
}

func TestListSendsFilters(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, NewListCmd(env.load), "", "games", "--filter", "genres=1,2", "--sort", "rating-desc")
	require.NoError(t, err)

	req := env.backend.last("/api/games")
	require.NotNil(t, req)
	assert.Equal(t, "1,2", req.URL.Query().Get("genres"))
	assert.Equal(t, "rating-desc", req.URL.Query().Get("sort"))
	assert.Contains(t, out, "genres=1%2C2")
}

func TestListSeedsFromURL(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, NewListCmd(env.load), "", "games", "--url", "https://retroshelf.app/games?page=3&sort=name-desc")
	require.NoError(t, err)
	req := env.backend.last("/api/games")
	require.NotNil(t, req)
	assert.Equal(t, "3", req.URL.Query().Get("page"))
	assert.Equal(t, "name-desc", req.URL.Query().Get("sort"))
}

func TestListFlagsResetSeededPage(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, NewListCmd(env.load), "", "games", "--url", "?page=4", "--sort", "name-desc")
	require.NoError(t, err)
	req := env.backend.last("/api/games")
	require.NotNil(t, req)
	assert.Equal(t, "1", req.URL.Query().Get("page"))
}

func TestListExplicitPageWins(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, NewListCmd(env.load), "", "games", "--sort", "name-desc", "--page", "2")
	require.NoError(t, err)
	req := env.backend.last("/api/games")
	require.NotNil(t, req)
	assert.Equal(t, "2", req.URL.Query().Get("page"))
}

func TestListRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown resource", []string{"cartridges"}, "cartridges"},
		{"unknown sort", []string{"games", "--sort", "price-asc"}, "unknown sort"},
		{"malformed filter", []string{"games", "--filter", "genres"}, "invalid --filter"},
		{"bad view", []string{"games", "--view", "carousel"}, "carousel"},
		{"bad kind", []string{"profile", "--user", "mario", "--kind", "pets"}, "pets"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := execute(t, NewListCmd(env.load), "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Zero(t, env.backend.count())
		})
	}
}

func TestListUnknownFilter(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, NewListCmd(env.load), "", "games", "--filter", "brand=sega")
	require.ErrorIs(t, err, listing.ErrUnknownFilter)
	assert.Zero(t, env.backend.count())
}

func TestListRemembersViewMode(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, NewListCmd(env.load), "", "games", "--view", "table")
	require.NoError(t, err)

	out, err := execute(t, NewListCmd(env.load), "", "games")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.NotContains(t, out, "view=")
}

func TestListReportsNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.backend.status["/api/games"] = 404

	_, err := execute(t, NewListCmd(env.load), "", "games")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, env.output.Lines(), errors.MsgNotFound)
}

func TestListProfileSurface(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, NewListCmd(env.load), "", "profile", "--user", "mario", "--kind", "consoles")
	require.NoError(t, err)
	assert.NotNil(t, env.backend.last("/api/users/mario/collection/consoles"))
}

func TestStartURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "/games"},
		{"?page=2", "/games?page=2"},
		{"https://retroshelf.app/other?page=2&sort=name-desc", "/games?page=2&sort=name-desc"},
		{"page=2", "/games?page=2"},
		{"nonsense", "/games"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, startURL("games", tt.raw))
		})
	}
}
