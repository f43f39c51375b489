package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reportdesk/internal/models"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = a.prompt("Password: "); err != nil {
					return err
				}
			}
			user, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return a.signedIn(cmd, user)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password, read from stdin when empty")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = a.prompt("Password: "); err != nil {
					return err
				}
			}
			user, err := a.session.Register(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			return a.signedIn(cmd, user)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password, read from stdin when empty")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// signedIn prints the new user and where to continue: the screen that sent
// the user to login, or the role's home.
func (a *app) signedIn(cmd *cobra.Command, user *models.AuthUser) error {
	next := a.guard.AfterLogin(user, a.takeReturn(cmd.Context()))
	p := a.printer()
	if p.format != outputTable {
		return p.print(struct {
			User *models.AuthUser `json:"user" yaml:"user"`
			Next string           `json:"next" yaml:"next"`
		}{user, next}, nil, nil)
	}
	p.line("Signed in as %s (%s)", user.Email, user.Role)
	p.line("Continue at %s", next)
	return nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			a.printer().line("Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.session.IsAuthenticated() {
				return fmt.Errorf("not signed in")
			}
			user, err := a.session.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer().print(user,
				[]string{"ID", "EMAIL", "NAME", "ROLE", "PLAN", "CREDITS"},
				[][]string{{user.ID, user.Email, user.FullName, string(user.Role), string(user.Plan), fmt.Sprint(user.Credits)}},
			)
		},
	}
}

// prompt reads one line from the command input.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" && err != nil {
		return "", fmt.Errorf("no input: %w", err)
	}
	return line, nil
}
