package listing

import (
	"fmt"
	"slices"

	"github.com/cristianoliveira/retroshelf/internal/urlstate"
)

// FilterKind is the value shape of one filter dimension.
type FilterKind int

const (
	// KindStrings is a multi-valued string filter, comma-joined in the URL.
	KindStrings FilterKind = iota
	// KindBool is a tri-state boolean filter: unset, true or false.
	KindBool
	// KindInts is a multi-valued integer filter, comma-joined in the URL.
	KindInts
)

// String returns the kind name.
func (k FilterKind) String() string {
	switch k {
	case KindStrings:
		return "strings"
	case KindBool:
		return "bool"
	case KindInts:
		return "ints"
	default:
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
}

// FilterSpec declares one filter dimension of a list surface.
type FilterSpec struct {
	Name string
	Kind FilterKind
}

// FilterValue holds the selection for one dimension. Only the field that
// matches the dimension's kind is used.
type FilterValue struct {
	Strings []string
	Bool    *bool
	Ints    []int
}

// Strings builds a string-list filter value.
func Strings(values ...string) FilterValue {
	return FilterValue{Strings: values}
}

// Bool builds a boolean filter value.
func Bool(v bool) FilterValue {
	return FilterValue{Bool: &v}
}

// Ints builds an integer-list filter value.
func Ints(values ...int) FilterValue {
	return FilterValue{Ints: values}
}

// IsZero reports whether the value selects nothing.
func (v FilterValue) IsZero() bool {
	return len(v.Strings) == 0 && v.Bool == nil && len(v.Ints) == 0
}

// Clone returns a deep copy.
func (v FilterValue) Clone() FilterValue {
	out := FilterValue{
		Strings: slices.Clone(v.Strings),
		Ints:    slices.Clone(v.Ints),
	}
	if v.Bool != nil {
		b := *v.Bool
		out.Bool = &b
	}
	return out
}

// Encode renders the value for kind as a URL parameter value, preserving
// selection order. A zero value encodes to "".
func (v FilterValue) Encode(kind FilterKind) string {
	switch kind {
	case KindBool:
		if v.Bool == nil {
			return ""
		}
		return urlstate.FormatBool(*v.Bool)
	case KindInts:
		return urlstate.JoinIntList(v.Ints)
	default:
		return urlstate.JoinList(v.Strings)
	}
}

// ParseFilterValue decodes a URL parameter value for kind. Unparseable
// input yields the zero value.
func ParseFilterValue(kind FilterKind, raw string) FilterValue {
	switch kind {
	case KindBool:
		b, ok := urlstate.ParseBool(raw)
		if !ok {
			return FilterValue{}
		}
		return Bool(b)
	case KindInts:
		return FilterValue{Ints: urlstate.ParseIntList(raw)}
	default:
		return FilterValue{Strings: urlstate.ParseList(raw)}
	}
}

// normalize keeps only the field that belongs to kind.
func (v FilterValue) normalize(kind FilterKind) FilterValue {
	switch kind {
	case KindBool:
		return FilterValue{Bool: v.Clone().Bool}
	case KindInts:
		if len(v.Ints) == 0 {
			return FilterValue{}
		}
		return FilterValue{Ints: slices.Clone(v.Ints)}
	default:
		if len(v.Strings) == 0 {
			return FilterValue{}
		}
		return FilterValue{Strings: slices.Clone(v.Strings)}
	}
}
