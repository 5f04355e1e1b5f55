// Package sitemap builds the public site's sitemaps: one for static routes
// and one per page of items for each public resource.
package sitemap

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cristianoliveira/retroshelf/internal/catalog"
	"github.com/cristianoliveira/retroshelf/internal/config"
	"github.com/cristianoliveira/retroshelf/internal/logging"
	"golang.org/x/sync/errgroup"
)

// StaticID names the static-routes sitemap.
const StaticID = "static"

// DefaultPageSize is the number of items per resource sitemap.
const DefaultPageSize = 100

// Change frequencies used in entries.
const (
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
)

// ErrUnknownSitemap is returned for ids that name no sitemap.
var ErrUnknownSitemap = errors.New("unknown sitemap")

// Entry is one URL in a sitemap.
type Entry struct {
	URL             string
	LastModified    time.Time
	ChangeFrequency string
	Priority        float64
}

// Source is the read side of the catalog a generator pages through.
// *catalog.Service implements it.
type Source interface {
	Count(ctx context.Context, path string) (int, error)
	ListRefs(ctx context.Context, path string, page, perPage int) (catalog.Page[catalog.Ref], error)
}

var _ Source = (*catalog.Service)(nil)

// resource is one paged section of the sitemap.
type resource struct {
	name       string
	changeFreq string
	priority   float64
}

var resources = []resource{
	{"games", Weekly, 0.7},
	{"consoles", Weekly, 0.7},
	{"accessories", Weekly, 0.7},
	{"users", Monthly, 0.5},
}

// staticRoutes are the public pages that exist regardless of data.
var staticRoutes = []string{"", "games", "consoles", "accessories", "marketplace", "login", "register"}

// Options configures a Generator.
type Options struct {
	PageSize int
	Logger   logging.Logger
	now      func() time.Time
}

// Option mutates Options.
type Option func(*Options)

// WithPageSize sets the number of items per resource sitemap.
func WithPageSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.PageSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Generator produces sitemap ids and their entries.
type Generator struct {
	src     Source
	baseURL string
	opts    Options
}

// NewGenerator creates a generator for the site rooted at baseURL.
func NewGenerator(src Source, baseURL string, opts ...Option) *Generator {
	o := Options{PageSize: DefaultPageSize, Logger: logging.Noop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Generator{src: src, baseURL: strings.TrimRight(baseURL, "/"), opts: o}
}

// NewFromConfig creates a generator from sitemap_base_url and sitemap_page_size.
func NewFromConfig(src Source, opts ...Option) *Generator {
	base := []Option{WithPageSize(config.GetInt("sitemap_page_size", DefaultPageSize))}
	return NewGenerator(src, config.Get("sitemap_base_url", "https://retroshelf.app"), append(base, opts...)...)
}

// BaseURL returns the site root entries are built under.
func (g *Generator) BaseURL() string {
	return g.baseURL
}

// IDs lists every sitemap: the static one first, then ceil(total/pageSize)
// per resource in resource order. Totals are fetched concurrently.
func (g *Generator) IDs(ctx context.Context) ([]string, error) {
	totals := make([]int, len(resources))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, res := range resources {
		eg.Go(func() error {
			n, err := g.src.Count(egCtx, res.name)
			if err != nil {
				return fmt.Errorf("count %s: %w", res.name, err)
			}
			totals[i] = n
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	ids := []string{StaticID}
	for i, res := range resources {
		pages := (totals[i] + g.opts.PageSize - 1) / g.opts.PageSize
		for p := 0; p < pages; p++ {
			ids = append(ids, res.name+"-"+strconv.Itoa(p))
		}
		g.opts.Logger.Debug("sitemap resource counted", "resource", res.name, "total", totals[i], "sitemaps", pages)
	}
	return ids, nil
}

// Build returns the entries of sitemap id.
func (g *Generator) Build(ctx context.Context, id string) ([]Entry, error) {
	if id == StaticID {
		return g.static(), nil
	}
	res, index, err := parseID(id)
	if err != nil {
		return nil, err
	}
	page, err := g.src.ListRefs(ctx, res.name, index+1, g.opts.PageSize)
	if err != nil {
		return nil, fmt.Errorf("build sitemap %s: %w", id, err)
	}
	if index > 0 && index >= page.TotalPages {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSitemap, id)
	}
	entries := make([]Entry, 0, len(page.Items))
	for _, ref := range page.Items {
		if ref.Slug == "" {
			continue
		}
		entries = append(entries, Entry{
			URL:             g.baseURL + "/" + res.name + "/" + ref.Slug,
			LastModified:    ref.UpdatedAt,
			ChangeFrequency: res.changeFreq,
			Priority:        res.priority,
		})
	}
	return entries, nil
}

func (g *Generator) static() []Entry {
	now := g.opts.now()
	entries := make([]Entry, len(staticRoutes))
	for i, route := range staticRoutes {
		e := Entry{URL: g.baseURL + "/" + route, LastModified: now, ChangeFrequency: Weekly, Priority: 0.8}
		if route == "" {
			e.URL, e.ChangeFrequency, e.Priority = g.baseURL, Daily, 1.0
		}
		entries[i] = e
	}
	return entries
}

// parseID splits "<resource>-<index>".
func parseID(id string) (resource, int, error) {
	i := strings.LastIndex(id, "-")
	if i <= 0 {
		return resource{}, 0, fmt.Errorf("%w: %s", ErrUnknownSitemap, id)
	}
	index, err := strconv.Atoi(id[i+1:])
	if err != nil || index < 0 {
		return resource{}, 0, fmt.Errorf("%w: %s", ErrUnknownSitemap, id)
	}
	for _, res := range resources {
		if res.name == id[:i] {
			return res, index, nil
		}
	}
	return resource{}, 0, fmt.Errorf("%w: %s", ErrUnknownSitemap, id)
}
