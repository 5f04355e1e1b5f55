package cmd

import (
	"bytes"
	"testing"

	"github.com/cristianoliveira/retroshelf/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintHelpOrdersCommands(t *testing.T) {
	root := &cobra.Command{Use: "retroshelf"}
	root.AddCommand(
		&cobra.Command{Use: "version", Short: "Show version information"},
		&cobra.Command{Use: "list <resource>", Short: "List a catalog surface"},
		&cobra.Command{Use: "hidden-extra", Short: "Not in the help order"},
		&cobra.Command{Use: "login", Short: "Sign in"},
	)
	var buf bytes.Buffer
	root.SetOut(&buf)

	printHelpText(root)

	out := buf.String()
	assert.Contains(t, out, "USAGE:\n    retroshelf [COMMAND] [OPTIONS]")
	assert.NotContains(t, out, "hidden-extra")
	list := bytes.Index(buf.Bytes(), []byte("list <resource>"))
	login := bytes.Index(buf.Bytes(), []byte("login"))
	ver := bytes.Index(buf.Bytes(), []byte("    version"))
	require.True(t, list >= 0 && login >= 0 && ver >= 0)
	assert.Less(t, list, login)
	assert.Less(t, login, ver)
}

func TestGlobalFlagsOverrideConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	config.Load()

	c := &cobra.Command{Use: "probe", RunE: func(*cobra.Command, []string) error { return nil }}
	c.PersistentFlags().AddFlagSet(RootCmd.PersistentFlags())
	require.NoError(t, c.ParseFlags([]string{"--locale", "pt", "--api-url", "https://api.retro.test"}))

	require.NoError(t, applyGlobalFlags(c))
	assert.Equal(t, "pt", config.Get("locale", ""))
	assert.Equal(t, "https://api.retro.test", config.Get("api_url", ""))
	assert.Equal(t, "sqlite", config.Get("prefs_backend", ""))
}
