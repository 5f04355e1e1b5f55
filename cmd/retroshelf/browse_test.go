package main

import (
	"context"
	"testing"

	"github.com/cristianoliveira/retroshelf/internal/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubBrowser(t *testing.T) **browser.Model {
	t.Helper()
	var got *browser.Model
	orig := browserRunner
	browserRunner = func(ctx context.Context, m *browser.Model) error {
		got = m
		return nil
	}
	t.Cleanup(func() { browserRunner = orig })
	return &got
}

func TestNewBrowseCmdPanicsOnNilLoader(t *testing.T) {
	require.Panics(t, func() { NewBrowseCmd(nil) })
}

func TestBrowseStartsFromFlags(t *testing.T) {
	env := newTestEnv(t)
	got := stubBrowser(t)

	_, err := execute(t, NewBrowseCmd(env.load), "", "consoles", "--search", "sega", "--page", "2")
	require.NoError(t, err)
	require.NotNil(t, *got)

	state := (*got).State()
	assert.Equal(t, "sega", state.SearchQuery)
	assert.Equal(t, 2, state.Page)
}

func TestBrowseRejectsUnknownResource(t *testing.T) {
	env := newTestEnv(t)
	got := stubBrowser(t)

	_, err := execute(t, NewBrowseCmd(env.load), "", "cartridges")
	require.Error(t, err)
	assert.Nil(t, *got)
}
