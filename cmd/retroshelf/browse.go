package main

import (
	"github.com/cristianoliveira/retroshelf/cmd"
	"github.com/cristianoliveira/retroshelf/internal/browser"
	"github.com/cristianoliveira/retroshelf/internal/config"
	"github.com/cristianoliveira/retroshelf/internal/errors"
	"github.com/cristianoliveira/retroshelf/internal/listing"
	"github.com/spf13/cobra"
)

const browseCommandLong = `Browse a catalog surface interactively.

USAGE:
    retroshelf browse <games|consoles|accessories|listings|profile> [OPTIONS]

Takes the same options as list. Inside the browser:

    n/p, arrows   next / previous page      s   cycle sort
    /             search                    v   cycle view mode
    f / e / x     focus, edit, clear filter +/- page size
    c             clear filters and search  r   reload
    q             quit`

// browserRunner runs the interactive program. Replaced in tests.
var browserRunner = browser.Run

// NewBrowseCmd creates the browse command with explicit dependencies.
func NewBrowseCmd(load appLoader) *cobra.Command {
	if load == nil {
		panic("NewBrowseCmd: load dependency cannot be nil")
	}
	var flags surfaceFlags
	c := &cobra.Command{
		Use:       "browse <resource>",
		Short:     "Browse a catalog surface interactively",
		Long:      browseCommandLong,
		Args:      cobra.ExactArgs(1),
		ValidArgs: resourceNames(),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			a, err := load(ctx)
			if err != nil {
				return err
			}
			debounce := listing.WithSearchDebounce(config.GetDuration("search_debounce", 0))
			s, err := openSurface(ctx, a, args[0], &flags, debounce)
			if err != nil {
				return err
			}
			defer s.coord.Close()

			m := browser.New(ctx, s.loader,
				browser.WithTitle(s.surface.Definition.Path),
				browser.WithMessages(errors.NewMessageHandler(20)),
				browser.WithLogout(a.session.ClearLocal),
				browser.WithURL(s.location.String),
				browser.WithLogger(a.logger),
			)
			return browserRunner(ctx, m)
		},
	}
	flags.register(c)
	return c
}

func init() {
	cmd.RootCmd.AddCommand(NewBrowseCmd(loadApp))
}
