package main

import (
	"fmt"
	"time"

	"github.com/cristianoliveira/retroshelf/cmd"
	"github.com/cristianoliveira/retroshelf/internal/config"
	"github.com/cristianoliveira/retroshelf/internal/sitemap"
	"github.com/spf13/cobra"
)

const sitemapCommandLong = `Generate the public site's sitemaps.

USAGE:
    retroshelf sitemap <subcommand>

SUBCOMMANDS:
    list         Print every sitemap id and its URL
    show <id>    Print one sitemap as XML (use "index" for the index)
    serve        Serve /sitemap.xml and /sitemap/<id>.xml over HTTP

Sitemap URLs are built under sitemap_base_url; each resource sitemap holds
sitemap_page_size items.`

// NewSitemapCmd creates the sitemap command with explicit dependencies.
func NewSitemapCmd(load appLoader) *cobra.Command {
	if load == nil {
		panic("NewSitemapCmd: load dependency cannot be nil")
	}
	c := &cobra.Command{
		Use:   "sitemap",
		Short: "Generate the public site's sitemaps",
		Long:  sitemapCommandLong,
	}
	c.AddCommand(newSitemapListCmd(load), newSitemapShowCmd(load), newSitemapServeCmd(load))
	return c
}

// now stamps the sitemap index. Replaced in tests.
var now = time.Now

func generator(c *cobra.Command, load appLoader) (*app, *sitemap.Generator, error) {
	a, err := load(c.Context())
	if err != nil {
		return nil, nil, err
	}
	return a, sitemap.NewFromConfig(a.catalog, sitemap.WithLogger(a.logger)), nil
}

func newSitemapListCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every sitemap id",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			a, gen, err := generator(c, load)
			if err != nil {
				return err
			}
			ids, err := gen.IDs(c.Context())
			if err != nil {
				return a.report(err)
			}
			for _, id := range ids {
				fmt.Fprintf(c.OutOrStdout(), "%-16s %s\n", id, sitemap.SitemapURL(gen.BaseURL(), id))
			}
			return nil
		},
	}
}

func newSitemapShowCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one sitemap as XML",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a, gen, err := generator(c, load)
			if err != nil {
				return err
			}
			if args[0] == "index" {
				ids, err := gen.IDs(c.Context())
				if err != nil {
					return a.report(err)
				}
				return sitemap.WriteIndex(c.OutOrStdout(), gen.BaseURL(), ids, now())
			}
			entries, err := gen.Build(c.Context(), args[0])
			if err != nil {
				return a.report(err)
			}
			return sitemap.WriteURLSet(c.OutOrStdout(), entries)
		},
	}
}

func newSitemapServeCmd(load appLoader) *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve sitemaps over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			a, gen, err := generator(c, load)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = config.Get("sitemap_addr", "127.0.0.1:8089")
			}
			return sitemap.Serve(c.Context(), addr, gen, a.logger)
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "Listen address (default sitemap_addr)")
	return c
}

func init() {
	cmd.RootCmd.AddCommand(NewSitemapCmd(loadApp))
}
