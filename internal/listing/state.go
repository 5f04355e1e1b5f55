package listing

import (
	"maps"
	"net/url"
	"slices"
	"sort"
	"strconv"

	"github.com/cristianoliveira/retroshelf/internal/prefs"
	"github.com/cristianoliveira/retroshelf/internal/query"
	"github.com/cristianoliveira/retroshelf/internal/urlstate"
)

// ListQueryState is the pagination, sort, search and filter state of one
// list view. Page is 1-based.
type ListQueryState struct {
	Page        int
	PerPage     int
	Sort        string
	SearchQuery string
	Filters     map[string]FilterValue
}

// Clone returns a deep copy of s.
func (s ListQueryState) Clone() ListQueryState {
	out := s
	out.Filters = make(map[string]FilterValue, len(s.Filters))
	for k, v := range s.Filters {
		out.Filters[k] = v.Clone()
	}
	return out
}

// Filter returns the selection for name, or the zero value.
func (s ListQueryState) Filter(name string) FilterValue {
	return s.Filters[name]
}

// Definition declares one list surface: its storage namespace, its API
// collection path, defaults and filter dimensions.
type Definition struct {
	Namespace       string
	Path            string
	DefaultSort     string
	DefaultPerPage  int
	DefaultViewMode prefs.ViewMode
	Filters         []FilterSpec
	SortOptions     []string
}

// FilterSpec returns the spec for name.
func (d Definition) FilterSpec(name string) (FilterSpec, bool) {
	for _, f := range d.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return FilterSpec{}, false
}

// IsSortOption reports whether sort is accepted. Surfaces without declared
// options accept any token.
func (d Definition) IsSortOption(sort string) bool {
	return len(d.SortOptions) == 0 || slices.Contains(d.SortOptions, sort)
}

// Params is the fully resolved parameter set a list fetch depends on.
type Params struct {
	Namespace string
	Path      string
	Locale    string
	Page      int
	PerPage   int
	Sort      string
	Search    string
	Filters   map[string]FilterValue
	Kinds     map[string]FilterKind
}

// Query renders the params as REST query parameters. List values are sorted
// so equal selections produce equal queries.
func (p Params) Query() url.Values {
	q := url.Values{}
	q.Set(urlstate.ParamPage, strconv.Itoa(p.Page))
	q.Set(urlstate.ParamPerPage, strconv.Itoa(p.PerPage))
	if p.Sort != "" {
		q.Set(urlstate.ParamSort, p.Sort)
	}
	if p.Search != "" {
		q.Set(urlstate.ParamSearch, p.Search)
	}
	for _, name := range p.filterNames() {
		v := canonical(p.Filters[name])
		if encoded := v.Encode(p.Kinds[name]); encoded != "" {
			q.Set(name, encoded)
		}
	}
	return q
}

// Key returns the cache identity of the params. Filter lists are added in
// sorted order, so [1,2] and [2,1] map to the same entry.
func (p Params) Key() query.Key {
	key := query.NewKey(p.Namespace).
		Add("locale", p.Locale).
		Add(urlstate.ParamPage, strconv.Itoa(p.Page)).
		Add(urlstate.ParamPerPage, strconv.Itoa(p.PerPage)).
		Add(urlstate.ParamSort, p.Sort).
		Add(urlstate.ParamSearch, p.Search)
	for _, name := range p.filterNames() {
		v := p.Filters[name]
		switch p.Kinds[name] {
		case KindBool:
			if v.Bool != nil {
				key = key.Add(name, urlstate.FormatBool(*v.Bool))
			}
		case KindInts:
			key = key.AddInts(name, v.Ints)
		default:
			key = key.AddList(name, v.Strings)
		}
	}
	return key
}

func (p Params) filterNames() []string {
	names := slices.Collect(maps.Keys(p.Filters))
	sort.Strings(names)
	return names
}

func canonical(v FilterValue) FilterValue {
	out := v.Clone()
	sort.Strings(out.Strings)
	sort.Ints(out.Ints)
	return out
}
