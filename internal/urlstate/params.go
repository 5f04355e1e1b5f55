package urlstate

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// leadingParams are written first, in this order, by Encode.
var leadingParams = []string{ParamSort, ParamPage, ParamPerPage, ParamSearch}

// Encode renders values with the well-known list parameters first
// (sort, page, perPage, search) and every other key sorted after them.
func Encode(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	seen := make(map[string]bool, len(leadingParams))
	for _, k := range leadingParams {
		if _, ok := values[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(values))
	for k := range values {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// ParseInt parses raw as an integer, returning def when it is not one.
func ParseInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}

// ParsePositiveInt parses raw as an integer greater than zero, returning def otherwise.
func ParsePositiveInt(raw string, def int) int {
	n := ParseInt(raw, def)
	if n <= 0 {
		return def
	}
	return n
}

// ParseBool accepts true/false, 1/0 and yes/no. ok is false for anything else.
func ParseBool(raw string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	default:
		return false, false
	}
}

// FormatBool is the inverse of ParseBool.
func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}

// ParseList splits a comma-joined list, trimming items and dropping empties.
// It returns nil for an empty list.
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// JoinList joins items with commas. An empty list yields "".
func JoinList(items []string) string {
	return strings.Join(items, ",")
}

// ParseIntList parses a comma-joined list of integers, skipping entries that
// are not integers.
func ParseIntList(raw string) []int {
	items := ParseList(raw)
	if items == nil {
		return nil
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		if n, err := strconv.Atoi(item); err == nil {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// JoinIntList joins integers with commas.
func JoinIntList(items []int) string {
	parts := make([]string, len(items))
	for i, n := range items {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
