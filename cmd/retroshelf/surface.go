package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cristianoliveira/retroshelf/internal/catalog"
	"github.com/cristianoliveira/retroshelf/internal/listing"
	"github.com/cristianoliveira/retroshelf/internal/prefs"
	"github.com/cristianoliveira/retroshelf/internal/urlstate"
	"github.com/spf13/cobra"
)

// surfaceFlags are the list state flags shared by list and browse.
type surfaceFlags struct {
	page    int
	perPage int
	sort    string
	search  string
	filters []string
	view    string
	rawURL  string
	user    string
	kind    string
}

func (f *surfaceFlags) register(c *cobra.Command) {
	c.Flags().IntVar(&f.page, "page", 0, "Page to show (1-based)")
	c.Flags().IntVar(&f.perPage, "per-page", 0, "Items per page (remembered per surface)")
	c.Flags().StringVar(&f.sort, "sort", "", "Sort token, e.g. name-asc")
	c.Flags().StringVar(&f.search, "search", "", "Search text")
	c.Flags().StringArrayVar(&f.filters, "filter", nil, "Filter as key=v1,v2 (repeatable)")
	c.Flags().StringVar(&f.view, "view", "", "View mode: grid, list, table, compact (remembered per surface)")
	c.Flags().StringVar(&f.rawURL, "url", "", "Start from a URL or query string, e.g. '?genres=1,2&page=3'")
	c.Flags().StringVar(&f.user, "user", "", "Profile slug for the profile resource")
	c.Flags().StringVar(&f.kind, "kind", "", "Profile tab: games, consoles, accessories, kits")
}

// openedSurface is a coordinator positioned by the flags, plus its loader.
type openedSurface struct {
	surface  catalog.Surface
	location *urlstate.Location
	coord    *listing.Coordinator
	loader   *catalog.Loader[catalog.Summary]
}

// openSurface resolves resource, seeds the location from --url and applies
// the remaining flags in an order that keeps an explicit --page: every
// other setter resets the page to 1.
func openSurface(ctx context.Context, a *app, resource string, f *surfaceFlags, opts ...listing.Option) (*openedSurface, error) {
	var kind listing.ProfileKind
	if f.kind != "" {
		k, err := listing.ParseProfileKind(f.kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	surface, err := a.catalog.Surface(resource, catalog.SurfaceOptions{User: f.user, Kind: kind})
	if err != nil {
		return nil, err
	}

	loc, err := urlstate.NewLocation(startURL(surface.Definition.Path, f.rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid --url: %w", err)
	}
	opts = append([]listing.Option{listing.WithLogger(a.logger)}, opts...)
	coord := listing.New(surface.Definition, loc, a.prefs, opts...)

	if err := applyFlags(ctx, coord, f); err != nil {
		coord.Close()
		return nil, err
	}
	return &openedSurface{
		surface:  surface,
		location: loc,
		coord:    coord,
		loader:   catalog.NewLoader(coord, a.cache, a.client.Locale(), surface.Fetch),
	}, nil
}

// startURL keeps the query of raw and puts it on the surface's path.
func startURL(path, raw string) string {
	base := "/" + path
	if raw == "" {
		return base
	}
	if i := strings.Index(raw, "?"); i >= 0 {
		return base + raw[i:]
	}
	if strings.Contains(raw, "=") {
		return base + "?" + raw
	}
	return base
}

func applyFlags(ctx context.Context, coord *listing.Coordinator, f *surfaceFlags) error {
	if f.view != "" {
		mode, ok := prefs.ParseViewMode(f.view)
		if !ok {
			return fmt.Errorf("%w: %q", listing.ErrInvalidViewMode, f.view)
		}
		if err := coord.SetViewMode(mode); err != nil {
			return err
		}
	}
	if f.perPage != 0 {
		if err := coord.SetPerPage(ctx, f.perPage); err != nil {
			return err
		}
	}
	if f.sort != "" {
		if err := coord.SetSort(ctx, f.sort); err != nil {
			if errors.Is(err, listing.ErrUnknownSort) {
				return fmt.Errorf("%w (want one of %s)", err, strings.Join(coord.Definition().SortOptions, ", "))
			}
			return err
		}
	}
	if f.search != "" {
		if err := coord.SetSearchQuery(ctx, f.search); err != nil {
			return err
		}
	}
	for _, raw := range f.filters {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --filter %q (want key=v1,v2)", raw)
		}
		spec, known := coord.Definition().FilterSpec(name)
		if !known {
			return fmt.Errorf("%w: %q", listing.ErrUnknownFilter, name)
		}
		if err := coord.SetFilter(ctx, name, listing.ParseFilterValue(spec.Kind, value)); err != nil {
			return err
		}
	}
	if f.page != 0 {
		if err := coord.SetPage(ctx, f.page); err != nil {
			return err
		}
	}
	return coord.Flush(ctx)
}
