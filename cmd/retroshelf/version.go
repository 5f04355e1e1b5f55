package main

import (
	"fmt"

	"github.com/cristianoliveira/retroshelf/cmd"
	"github.com/cristianoliveira/retroshelf/internal/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var long bool
	c := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show the current version of retroshelf.`,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if long {
				fmt.Fprintln(c.OutOrStdout(), version.Long())
				return nil
			}
			fmt.Fprintf(c.OutOrStdout(), "retroshelf version %s\n", version.String())
			return nil
		},
	}
	c.Flags().BoolVar(&long, "long", false, "Include commit and build date")
	return c
}

func init() {
	cmd.RootCmd.AddCommand(NewVersionCmd())
}
