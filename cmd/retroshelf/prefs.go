package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cristianoliveira/retroshelf/cmd"
	"github.com/cristianoliveira/retroshelf/internal/colors"
	"github.com/spf13/cobra"
)

const prefsCommandLong = `Manage remembered view preferences.

Each list surface remembers its view mode and page size under its own
namespace, e.g. game-catalog or console-catalog-mario.

USAGE:
    retroshelf prefs <subcommand>

SUBCOMMANDS:
    show [namespace]     Display stored preferences as JSON
    reset [namespace]    Forget one namespace, or all of them

EXAMPLES:
    retroshelf prefs show
    retroshelf prefs reset game-catalog
    retroshelf prefs reset --force`

// NewPrefsCmd creates the prefs command with explicit dependencies.
func NewPrefsCmd(load appLoader) *cobra.Command {
	if load == nil {
		panic("NewPrefsCmd: load dependency cannot be nil")
	}
	c := &cobra.Command{
		Use:   "prefs",
		Short: "Manage remembered view preferences",
		Long:  prefsCommandLong,
	}
	c.AddCommand(newPrefsShowCmd(load), newPrefsResetCmd(load))
	return c
}

func newPrefsShowCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "show [namespace]",
		Short: "Display stored preferences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a, err := load(c.Context())
			if err != nil {
				return err
			}
			namespaces := args
			if len(namespaces) == 0 {
				if namespaces, err = a.prefs.Namespaces(); err != nil {
					return fmt.Errorf("list preferences: %w", err)
				}
			}
			out := make(map[string]any, len(namespaces))
			for _, ns := range namespaces {
				if pref := a.prefs.Load(ns); pref != nil {
					out[ns] = pref
				}
			}
			if len(out) == 0 {
				colors.Info("No stored preferences")
				return nil
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal preferences: %w", err)
			}
			fmt.Fprintln(c.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newPrefsResetCmd(load appLoader) *cobra.Command {
	var force bool
	c := &cobra.Command{
		Use:   "reset [namespace]",
		Short: "Forget stored preferences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a, err := load(c.Context())
			if err != nil {
				return err
			}
			namespaces := args
			if len(namespaces) == 0 {
				if !force && os.Getenv("CI") == "" && !confirm(c.InOrStdin(), c.OutOrStdout(), "Forget preferences for every list? (y/N): ") {
					colors.Info("Operation cancelled")
					return nil
				}
				if namespaces, err = a.prefs.Namespaces(); err != nil {
					return fmt.Errorf("list preferences: %w", err)
				}
			}
			for _, ns := range namespaces {
				if err := a.prefs.Reset(ns); err != nil {
					return fmt.Errorf("failed to reset %s: %w", ns, err)
				}
			}
			colors.Success(fmt.Sprintf("Reset %d preference(s)", len(namespaces)))
			return nil
		},
	}
	c.Flags().BoolVar(&force, "force", false, "Reset without confirmation")
	return c
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprint(out, question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	cmd.RootCmd.AddCommand(NewPrefsCmd(loadApp))
}
