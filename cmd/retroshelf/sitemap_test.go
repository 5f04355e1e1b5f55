package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapList(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, NewSitemapCmd(env.load), "", "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// 150 items per resource at 100 per sitemap
	require.Len(t, lines, 9)
	assert.Equal(t, []string{"static", "https://retroshelf.app/sitemap/static.xml"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"games-1", "https://retroshelf.app/sitemap/games-1.xml"}, strings.Fields(lines[2]))
}

func TestSitemapShowIndex(t *testing.T) {
	orig := now
	now = func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
	env := newTestEnv(t)

	out, err := execute(t, NewSitemapCmd(env.load), "", "show", "index")
	require.NoError(t, err)
	assert.Contains(t, out, "<sitemapindex")
	assert.Contains(t, out, "<loc>https://retroshelf.app/sitemap/users-0.xml</loc>")
	assert.Contains(t, out, "<lastmod>2026-10-01T00:00:00Z</lastmod>")
}

func TestSitemapShowResource(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, NewSitemapCmd(env.load), "", "show", "games-1")
	require.NoError(t, err)
	assert.Contains(t, out, "<urlset")
	assert.Contains(t, out, "https://retroshelf.app/games/games-100")

	req := env.backend.last("/api/games")
	require.NotNil(t, req)
	assert.Equal(t, "2", req.URL.Query().Get("page"))
	assert.Equal(t, "100", req.URL.Query().Get("perPage"))
}

func TestSitemapShowUnknown(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, NewSitemapCmd(env.load), "", "show", "pets-0")
	require.ErrorIs(t, err, errReported)
}
