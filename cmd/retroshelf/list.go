package main

import (
	"fmt"
	"io"

	"github.com/cristianoliveira/retroshelf/cmd"
	"github.com/cristianoliveira/retroshelf/internal/browser"
	"github.com/cristianoliveira/retroshelf/internal/catalog"
	"github.com/spf13/cobra"
)

const listCommandLong = `List one page of a catalog surface.

USAGE:
    retroshelf list <games|consoles|accessories|listings|profile> [OPTIONS]

OPTIONS:
    --page <n>            Page to show (1-based)
    --per-page <n>        Items per page (remembered per surface)
    --sort <token>        Sort token, e.g. name-asc
    --search <text>       Search text
    --filter <k=v1,v2>    Filter selection (repeatable)
    --view <mode>         grid, list, table, compact (remembered per surface)
    --url <query>         Start from a URL or query string
    --user <slug>         Profile slug (profile resource only)
    --kind <kind>         Profile tab: games, consoles, accessories, kits
    -h, --help            Show this help

The page is printed in the resolved view mode, followed by the effective
URL. Flags are applied on top of --url, so --url '?page=4' --sort name-desc
lands on page 1.

EXAMPLES:
    retroshelf list games --filter genres=1,2 --sort rating-desc
    retroshelf list profile --user mario --kind consoles --view table`

// NewListCmd creates the list command with explicit dependencies.
func NewListCmd(load appLoader) *cobra.Command {
	if load == nil {
		panic("NewListCmd: load dependency cannot be nil")
	}
	var flags surfaceFlags
	c := &cobra.Command{
		Use:       "list <resource>",
		Short:     "List one page of a catalog surface",
		Long:      listCommandLong,
		Args:      cobra.ExactArgs(1),
		ValidArgs: resourceNames(),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			a, err := load(ctx)
			if err != nil {
				return err
			}
			s, err := openSurface(ctx, a, args[0], &flags)
			if err != nil {
				return err
			}
			defer s.coord.Close()

			res := s.loader.Load(ctx)
			if res.Err != nil {
				return a.report(res.Err)
			}
			if res.IsLoading {
				return fmt.Errorf("session not initialized")
			}
			printPage(c.OutOrStdout(), s, res.Data)
			return nil
		},
	}
	flags.register(c)
	return c
}

func printPage(w io.Writer, s *openedSurface, page catalog.Page[catalog.Summary]) {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No results.")
	} else {
		fmt.Fprintln(w, browser.RenderItems(page.Items, s.coord.View(), 0))
	}
	fmt.Fprintf(w, "\npage %d/%d · %d results\n", page.Page, max(1, page.TotalPages), page.Total)
	fmt.Fprintln(w, s.location.String())
}

func resourceNames() []string {
	names := make([]string, len(catalog.Resources))
	for i, r := range catalog.Resources {
		names[i] = string(r)
	}
	return names
}

func init() {
	cmd.RootCmd.AddCommand(NewListCmd(loadApp))
}
