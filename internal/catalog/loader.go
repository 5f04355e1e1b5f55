package catalog

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/retroshelf/internal/listing"
	"github.com/cristianoliveira/retroshelf/internal/query"
)

// FetchFunc fetches one page for resolved list params.
type FetchFunc[T any] func(ctx context.Context, p listing.Params) (Page[T], error)

// Loader feeds a list view: it derives the params from the coordinator's
// in-memory state and resolves them through the cache. The coordinator's
// namespace is the cache slot.
type Loader[T any] struct {
	coord  *listing.Coordinator
	cache  *query.Cache
	locale string
	fetch  FetchFunc[T]
}

// NewLoader creates a loader.
func NewLoader[T any](coord *listing.Coordinator, cache *query.Cache, locale string, fetch FetchFunc[T]) *Loader[T] {
	return &Loader[T]{coord: coord, cache: cache, locale: locale, fetch: fetch}
}

// Coordinator returns the coordinator the loader reads from.
func (l *Loader[T]) Coordinator() *listing.Coordinator {
	return l.coord
}

// Locale returns the locale sent with every request.
func (l *Loader[T]) Locale() string {
	return l.locale
}

// Load resolves the current page, fetching it if needed.
func (l *Loader[T]) Load(ctx context.Context) query.Result[Page[T]] {
	return l.LoadParams(ctx, l.coord.FetchParams(l.locale))
}

// LoadParams resolves p. Callers that fetch asynchronously capture p when
// the request is issued so a later state change cannot alter it.
func (l *Loader[T]) LoadParams(ctx context.Context, p listing.Params) query.Result[Page[T]] {
	return query.Resolve(ctx, l.cache, l.slot(), p.Key(), func(ctx context.Context) (Page[T], error) {
		return l.fetch(ctx, p)
	})
}

// Peek returns what the view shows for the current state without fetching.
func (l *Loader[T]) Peek() query.Result[Page[T]] {
	p := l.coord.FetchParams(l.locale)
	return query.PeekAs[Page[T]](l.cache, l.slot(), p.Key())
}

func (l *Loader[T]) slot() string {
	return l.coord.Definition().Namespace
}

// Resource names a list surface on the command line.
type Resource string

const (
	ResourceGames       Resource = "games"
	ResourceConsoles    Resource = "consoles"
	ResourceAccessories Resource = "accessories"
	ResourceListings    Resource = "listings"
	ResourceProfile     Resource = "profile"
)

// Resources lists every surface name.
var Resources = []Resource{ResourceGames, ResourceConsoles, ResourceAccessories, ResourceListings, ResourceProfile}

// Surface is a list definition plus the fetcher that renders it as rows.
type Surface struct {
	Resource   Resource
	Definition listing.Definition
	Fetch      FetchFunc[Summary]
}

// SurfaceOptions selects a public profile tab for ResourceProfile.
type SurfaceOptions struct {
	User string
	Kind listing.ProfileKind
}

// Surface resolves a resource name to its definition and row fetcher.
func (s *Service) Surface(resource string, opts SurfaceOptions) (Surface, error) {
	switch Resource(resource) {
	case ResourceGames:
		return Surface{ResourceGames, listing.GameCatalog(), summarize(s.ListGames)}, nil
	case ResourceConsoles:
		return Surface{ResourceConsoles, listing.ConsoleCatalog(), summarize(s.ListConsoles)}, nil
	case ResourceAccessories:
		return Surface{ResourceAccessories, listing.AccessoryCatalog(), summarize(s.ListAccessories)}, nil
	case ResourceListings:
		return Surface{ResourceListings, listing.Marketplace(), summarize(s.ListListings)}, nil
	case ResourceProfile:
		if opts.User == "" {
			return Surface{}, fmt.Errorf("profile listing needs a user slug")
		}
		kind := opts.Kind
		if kind == "" {
			kind = listing.ProfileGames
		}
		return Surface{ResourceProfile, listing.PublicProfile(opts.User, kind), summarize(s.ListProfileItems)}, nil
	default:
		return Surface{}, fmt.Errorf("unknown resource %q (want one of games, consoles, accessories, listings, profile)", resource)
	}
}

func summarize[T Summarizer](fetch FetchFunc[T]) FetchFunc[Summary] {
	return func(ctx context.Context, p listing.Params) (Page[Summary], error) {
		page, err := fetch(ctx, p)
		if err != nil {
			return Page[Summary]{}, err
		}
		return Summaries(page), nil
	}
}
