package logging

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// redactor redacts sensitive values in log key-value pairs.
type redactor struct {
	sensitiveWords map[string]bool
}

// newRedactor creates a new redactor with the default sensitive key pattern.
func newRedactor() *redactor {
	words := []string{"secret", "password", "token", "key", "auth", "authorization", "credential", "bearer"}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return &redactor{sensitiveWords: m}
}

// redact walks through a slice of key-value pairs (flattened as [key1, value1, key2, value2, ...]).
// If a key contains a sensitive word as a separate segment, its value is replaced with "[REDACTED]".
// Returns a new slice; the original slice is not modified.
func (r *redactor) redact(pairs []any) []any {
	if len(pairs) == 0 {
		return pairs
	}
	result := make([]any, len(pairs))
	copy(result, pairs)
	for i := 0; i+1 < len(result); i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}
		if r.isSensitive(key) {
			result[i+1] = "[REDACTED]"
		}
	}
	return result
}

// isSensitive returns true if the key contains any sensitive word as a separate segment.
// Segments are split by non-alphanumeric characters and camelCase boundaries.
func (r *redactor) isSensitive(key string) bool {
	for _, part := range nonAlphanumeric.Split(splitCamel(key), -1) {
		if r.sensitiveWords[part] {
			return true
		}
	}
	return false
}

// splitCamel lowercases key and inserts "_" at lower-to-upper boundaries,
// so authToken becomes auth_token while API_KEY stays api_key.
func splitCamel(key string) string {
	var b strings.Builder
	prevLower := false
	for _, c := range key {
		isUpper := c >= 'A' && c <= 'Z'
		if isUpper {
			if prevLower {
				b.WriteByte('_')
			}
			c += 'a' - 'A'
		}
		prevLower = (c >= 'a' && c <= 'z' && !isUpper) || (c >= '0' && c <= '9')
		b.WriteRune(c)
	}
	return b.String()
}
