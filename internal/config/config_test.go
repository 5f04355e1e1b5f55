package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Chdir(dir)
	return dir
}

func TestLoadAndGet(t *testing.T) {
	setupConfigDir(t)
	Load()

	require.Equal(t, "default", Get("missing", "default"))
	require.Equal(t, "http://localhost:3001", Get("api_url", ""))
	require.Equal(t, 3, GetInt("retry_max_attempts", 0))
	require.Equal(t, 30*time.Second, GetDuration("cache_stale_time", 0))
	require.Equal(t, time.Duration(0), GetDuration("search_debounce", time.Second))
	require.False(t, GetBool("logging_enabled", true))
}

func TestEnvOverridesFile(t *testing.T) {
	dir := setupConfigDir(t)
	configPath := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("locale = \"fr\"\ndefault_per_page = 50\n"), FileModeFile))
	t.Setenv("RETROSHELF_CONFIG_PATH", configPath)
	t.Setenv("RETROSHELF_LOCALE", "es")

	Load()

	assert.Equal(t, "es", Get("locale", ""))
	assert.Equal(t, 50, GetInt("default_per_page", 0))
}

func TestDotenvIsReadBeforeEnvironment(t *testing.T) {
	dir := setupConfigDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RETROSHELF_API_URL=https://api.example.com/\nOTHER=ignored\n"), FileModeFile))

	Load()
	assert.Equal(t, "https://api.example.com", Get("api_url", ""))
	assert.Equal(t, "", Get("other", ""))

	t.Setenv("RETROSHELF_API_URL", "https://env.example.com")
	Load()
	assert.Equal(t, "https://env.example.com", Get("api_url", ""))
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	setupConfigDir(t)
	t.Setenv("RETROSHELF_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("RETROSHELF_PREFS_BACKEND", "redis")
	t.Setenv("RETROSHELF_API_URL", "not a url")
	t.Setenv("RETROSHELF_SEARCH_DEBOUNCE", "nope")

	Load()

	assert.Equal(t, 3, GetInt("retry_max_attempts", 0))
	assert.Equal(t, "sqlite", Get("prefs_backend", ""))
	assert.Equal(t, "http://localhost:3001", Get("api_url", ""))
	assert.Equal(t, time.Duration(0), GetDuration("search_debounce", time.Second))
}

func TestSampleConfigCreated(t *testing.T) {
	dir := setupConfigDir(t)
	Load()

	data, err := os.ReadFile(filepath.Join(dir, "config", "retroshelf", "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# retroshelf configuration")
	assert.Contains(t, string(data), "api_url")
}

func TestSetOverridesValue(t *testing.T) {
	setupConfigDir(t)
	Load()
	Set("locale", "de")
	assert.Equal(t, "de", Get("locale", ""))
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator Validator
		value     string
		want      string
	}{
		{"positive int ok", PositiveIntValidator(), "5", "5"},
		{"positive int zero", PositiveIntValidator(), "0", "def"},
		{"range ok", IntRangeValidator(1, 3), "2", "2"},
		{"range high", IntRangeValidator(1, 3), "4", "def"},
		{"enum lowercases", EnumValidator(map[string]bool{"toml": true}), "TOML", "toml"},
		{"bool yes", BoolValidator(), "yes", "true"},
		{"duration normalizes", DurationValidator(false), "1500ms", "1.5s"},
		{"duration empty allowed", DurationValidator(true), "", ""},
		{"url trims slash", URLValidator(), "https://x.dev/", "https://x.dev"},
		{"url scheme", URLValidator(), "ftp://x.dev", "def"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.validator("key", tt.value, "def")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
