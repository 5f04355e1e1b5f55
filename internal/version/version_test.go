package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setVersion(t *testing.T, version, commit string) {
	t.Helper()
	origVersion, origCommit := Version, Commit
	t.Cleanup(func() {
		Version, Commit = origVersion, origCommit
	})
	Version, Commit = version, commit
}

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		commit   string
		expected string
	}{
		{"development without commit", "development", "unknown", "development"},
		{"release with commit", "1.0.0", "abc1234", "1.0.0+abc1234"},
		{"unknown commit shows only version", "2.0.0", "unknown", "2.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setVersion(t, tt.version, tt.commit)
			assert.Equal(t, tt.expected, String())
		})
	}
}

func TestUserAgentAndLong(t *testing.T) {
	setVersion(t, "0.3.0", "f00d")
	assert.Equal(t, "retroshelf/0.3.0+f00d", UserAgent())
	assert.Contains(t, Long(), "retroshelf 0.3.0\ncommit: f00d")
}
