package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cristianoliveira/retroshelf/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("HOME", tmp)
	t.Chdir(tmp)
	config.Load()
	return tmp
}

func TestConfigFromGlobal(t *testing.T) {
	setupTest(t)

	t.Setenv("RETROSHELF_LOGGING_ENABLED", "true")
	t.Setenv("RETROSHELF_LOGGING_LEVEL", "warn")
	t.Setenv("RETROSHELF_LOGGING_MAX_FILES", "5")
	config.Load()

	cfg := FromGlobalConfig()
	require.True(t, cfg.Enabled)
	require.Equal(t, "warn", cfg.Level)
	require.Equal(t, 5, cfg.MaxFiles)
	require.Equal(t, filepath.Base(os.Args[0]), cfg.Command)
	require.Equal(t, os.Getpid(), cfg.PID)
}

func TestLogLevelMapping(t *testing.T) {
	setupTest(t)

	t.Setenv("RETROSHELF_DEBUG", "true")
	t.Setenv("RETROSHELF_QUIET", "true")
	t.Setenv("RETROSHELF_LOGGING_LEVEL", "info")
	config.Load()
	require.Equal(t, "debug", FromGlobalConfig().Level)

	t.Setenv("RETROSHELF_DEBUG", "")
	config.Load()
	require.Equal(t, "error", FromGlobalConfig().Level)

	t.Setenv("RETROSHELF_QUIET", "")
	t.Setenv("RETROSHELF_LOGGING_LEVEL", "warn")
	config.Load()
	require.Equal(t, "warn", FromGlobalConfig().Level)
}

func TestLogDir(t *testing.T) {
	tmp := setupTest(t)

	stateDir := config.Get("state_dir", "")
	require.True(t, strings.HasPrefix(stateDir, tmp), "state_dir %s not in temp dir %s", stateDir, tmp)

	logDir, err := LogDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(stateDir, "logs"), logDir)
	info, err := os.Stat(logDir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestInitDisabled(t *testing.T) {
	logger, err := Init(Config{Enabled: false})
	require.NoError(t, err)
	require.IsType(t, noopLogger{}, logger)
	logger.Info("test")
	require.NoError(t, logger.Shutdown())
}

func TestInitWritesJSONAndRedacts(t *testing.T) {
	setupTest(t)

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Level = "debug"
	cfg.Command = "list games"
	logger, err := Init(cfg)
	require.NoError(t, err)

	logger.With("namespace", "game-catalog").Info("fetch", "authToken", "abc123", "page", 2)
	impl := logger.(*loggerImpl)
	path := impl.filePath()
	require.NoError(t, logger.Shutdown())

	require.True(t, strings.HasPrefix(filepath.Base(path), logFilePrefix))
	require.True(t, strings.HasSuffix(path, "_list_games.log"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "fetch", entry["msg"])
	assert.Equal(t, "[REDACTED]", entry["authToken"])
	assert.Equal(t, "game-catalog", entry["namespace"])
	assert.NotContains(t, string(data), "abc123")
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", "Authorization", "Bearer x")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "[REDACTED]")
}

func TestRedactorSegments(t *testing.T) {
	r := newRedactor()
	tests := map[string]bool{
		"token":       true,
		"authToken":   true,
		"API_KEY":     true,
		"bearer":      true,
		"monkey":      false,
		"namespace":   false,
		"tokenizer":   false,
		"page":        false,
		"session_key": true,
	}
	for key, want := range tests {
		assert.Equal(t, want, r.isSensitive(key), key)
	}
}

func TestRotateKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, logFilePrefix+string(rune('a'+i))+".log")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
		mtime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), []byte("x"), 0600))

	require.NoError(t, rotate(dir, 3))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{logFilePrefix + "d.log", logFilePrefix + "e.log", "other.log"}, names)
}

func TestNewWithFormatLogfmt(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithFormat(&buf, "info", FormatLogfmt)
	logger.With("namespace", "game-catalog").Info("fetch", "page", 2)

	out := buf.String()
	assert.Contains(t, out, "msg=fetch")
	assert.Contains(t, out, "namespace=game-catalog")
	assert.Contains(t, out, "page=2")
	assert.Less(t, strings.Index(out, "namespace="), strings.Index(out, "page="))
}

func TestWithDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(&buf, "info")
	_ = parent.With("slot", "games")
	parent.Info("plain")
	assert.NotContains(t, buf.String(), "slot")
}

func TestShutdownIsSharedAndRepeatable(t *testing.T) {
	setupTest(t)
	cfg := DefaultConfig()
	cfg.Enabled = true
	logger, err := Init(cfg)
	require.NoError(t, err)

	child := logger.With("k", "v")
	require.NoError(t, child.Shutdown())
	require.NoError(t, logger.Shutdown())
}

func TestFileName(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "retroshelf_20261017_093000_PID7_sitemap_serve.log", fileName(Config{PID: 7, Command: " sitemap  serve "}, at))
	assert.Equal(t, "retroshelf_20261017_093000_PID7_retroshelf.log", fileName(Config{PID: 7}, at))
}
