// Package cmd holds the root command every retroshelf subcommand hangs off.
package cmd

import (
	"fmt"
	"strings"

	"github.com/cristianoliveira/retroshelf/internal/colors"
	"github.com/cristianoliveira/retroshelf/internal/config"
	"github.com/cristianoliveira/retroshelf/internal/version"
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:           "retroshelf",
	Short:         "Browse the retro game catalog and manage your collection.",
	Long:          `Browse the retro game catalog and manage your collection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applyGlobalFlags(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// globalFlags maps persistent flags to the configuration keys they override.
var globalFlags = map[string]string{
	"api-url":       "api_url",
	"locale":        "locale",
	"prefs-backend": "prefs_backend",
	"debug":         "debug",
	"quiet":         "quiet",
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.CompletionOptions.HiddenDefaultCmd = true
	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
			return
		}
		printHelpText(cmd)
	})

	flags := RootCmd.PersistentFlags()
	flags.String("api-url", "", "Backend API base URL (overrides api_url)")
	flags.String("locale", "", "Locale sent with every request (overrides locale)")
	flags.String("prefs-backend", "", "Preference store: sqlite, toml or memory")
	flags.Bool("debug", false, "Print debug output")
	flags.Bool("quiet", false, "Only print errors")
}

// applyGlobalFlags copies explicitly set persistent flags into the
// configuration so they win over files and environment.
func applyGlobalFlags(cmd *cobra.Command) error {
	for flag, key := range globalFlags {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		config.Set(key, f.Value.String())
	}
	colors.SetDebug(config.GetBool("debug", false))
	colors.SetQuiet(config.GetBool("quiet", false))
	return nil
}

func printHelpText(cmd *cobra.Command) {
	commandOrder := []string{
		"list",
		"browse",
		"collection",
		"login",
		"logout",
		"whoami",
		"prefs",
		"sitemap",
		"help",
		"version",
	}

	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-24s %s", found.Use, found.Short))
	}

	helpText := fmt.Sprintf(`retroshelf %s

Browse the retro game catalog and manage your collection.

USAGE:
    retroshelf [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    --api-url <url>         Backend API base URL
    --locale <locale>       Locale sent with every request
    --prefs-backend <name>  Preference store: sqlite, toml, memory
    --debug                 Print debug output
    --quiet                 Only print errors
    -h, --help              Show help message
`, version.String(), strings.Join(cmdLines, "\n"))
	fmt.Fprint(cmd.OutOrStdout(), helpText)
}
