package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/retroshelf/cmd"
	"github.com/cristianoliveira/retroshelf/internal/colors"
	"github.com/cristianoliveira/retroshelf/internal/session"
	"github.com/spf13/cobra"
)

// NewLoginCmd creates the login command with explicit dependencies.
func NewLoginCmd(load appLoader) *cobra.Command {
	if load == nil {
		panic("NewLoginCmd: load dependency cannot be nil")
	}
	var email, password string
	c := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Long: `Sign in and store the session token for later commands.

The password is read from the first line of stdin when --password is not given.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if password == "" {
				p, err := readLine(c.InOrStdin())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = p
			}
			a, err := load(c.Context())
			if err != nil {
				return err
			}
			user, err := a.session.Login(c.Context(), email, password)
			if err != nil {
				return a.report(err)
			}
			colors.Success(fmt.Sprintf("Signed in as %s", displayName(user.DisplayName, user.Email)))
			return nil
		},
	}
	c.Flags().StringVar(&email, "email", "", "Account email")
	c.Flags().StringVar(&password, "password", "", "Account password (read from stdin when omitted)")
	return c
}

// NewLogoutCmd creates the logout command with explicit dependencies.
func NewLogoutCmd(load appLoader) *cobra.Command {
	if load == nil {
		panic("NewLogoutCmd: load dependency cannot be nil")
	}
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			a, err := load(c.Context())
			if err != nil {
				return err
			}
			if !a.session.Authenticated() {
				colors.Info("Not signed in")
				return nil
			}
			if err := a.session.Logout(c.Context()); err != nil {
				// the local session is gone either way
				a.logger.Warn("backend logout failed", "error", err)
			}
			colors.Success("Signed out")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command with explicit dependencies.
func NewWhoamiCmd(load appLoader) *cobra.Command {
	if load == nil {
		panic("NewWhoamiCmd: load dependency cannot be nil")
	}
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			a, err := load(c.Context())
			if err != nil {
				return err
			}
			user, err := a.session.Whoami(c.Context())
			if stderrors.Is(err, session.ErrNotLoggedIn) {
				colors.Info("Not signed in")
				return nil
			}
			if err != nil {
				return a.report(err)
			}
			fmt.Fprintf(c.OutOrStdout(), "%s <%s> (%s)\n", displayName(user.DisplayName, user.Slug), user.Email, user.Slug)
			return nil
		},
	}
}

func displayName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	cmd.RootCmd.AddCommand(NewLoginCmd(loadApp), NewLogoutCmd(loadApp), NewWhoamiCmd(loadApp))
}
