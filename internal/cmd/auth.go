package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resin-sdk-go/internal/session"

	"github.com/spf13/cobra"
)

// newLoginCmd creates the "login" command.
func newLoginCmd(provider *AppProvider) *cobra.Command {
	var (
		username string
		token    string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to resin.io",
		Long: `Log in with a username and password, or store a token obtained
elsewhere (a session token or an API key).

The password is read from the terminal without echo.

Examples:
  resin login --username alice
  resin login --token <token>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			if token != "" {
				if err := app.API.LoginWithToken(token); err != nil {
					return fmt.Errorf("storing token: %w", err)
				}
				return reportLogin(app, "")
			}

			if username == "" {
				if username, err = app.Prompt("Username: "); err != nil {
					return err
				}
			}
			username = strings.TrimSpace(username)
			if username == "" {
				return errors.New("username is required")
			}

			password, err := app.PromptPassword("Password: ")
			if err != nil {
				return err
			}

			if err := app.API.Login(cmd.Context(), username, password); err != nil {
				return fmt.Errorf("logging in: %w", err)
			}
			return reportLogin(app, username)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username (prompted if omitted)")
	cmd.Flags().StringVarP(&token, "token", "t", "", "Session token or API key to store instead of logging in")

	return cmd
}

func reportLogin(app *App, username string) error {
	if app.JSON {
		return json.NewEncoder(app.Out).Encode(map[string]any{
			"logged_in": true,
			"username":  username,
		})
	}
	if username == "" {
		fmt.Fprintln(app.Out, app.SuccessColor("Token stored"))
		return nil
	}
	fmt.Fprintf(app.Out, "%s as %s\n", app.SuccessColor("Logged in"), username)
	return nil
}

// newRegisterCmd creates the "register" command.
func newRegisterCmd(provider *AppProvider) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a resin.io account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			password, err := app.PromptPassword("Password: ")
			if err != nil {
				return err
			}

			if _, err := app.API.Register(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("registering: %w", err)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"registered": true,
					"email":      email,
				})
			}
			fmt.Fprintf(app.Out, "%s %s\n", app.SuccessColor("Registered"), email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// newLogoutCmd creates the "logout" command.
func newLogoutCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			if err := app.API.Logout(); err != nil {
				return fmt.Errorf("logging out: %w", err)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]bool{"logged_in": false})
			}
			fmt.Fprintln(app.Out, "Logged out")
			return nil
		},
	}

	return cmd
}

// newWhoamiCmd creates the "whoami" command.
func newWhoamiCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			user, err := app.API.Whoami(cmd.Context())
			if err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(user)
			}
			fmt.Fprintf(app.Out, "ID:       %d\n", user.ID)
			fmt.Fprintf(app.Out, "Username: %s\n", user.Username)
			fmt.Fprintf(app.Out, "Email:    %s\n", user.Email)
			return nil
		},
	}

	return cmd
}

// newTokenCmd creates the "token" command.
func newTokenCmd(provider *AppProvider) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print the stored session token",
		Long: `Print the stored session token.

With --check, report whether the token should be refreshed instead:
a token that is not a well-formed JWT, or whose expiry has passed,
needs refreshing. Other time claims are ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			token, ok, err := app.Session.Token()
			if err != nil {
				return err
			}
			if !ok {
				return session.ErrNotLoggedIn
			}

			if !check {
				if app.JSON {
					return json.NewEncoder(app.Out).Encode(map[string]string{"token": token})
				}
				fmt.Fprintln(app.Out, token)
				return nil
			}

			refresh := app.Session.ShouldRefresh(token)
			exp, hasExp := app.Session.Expiry(token)

			if app.JSON {
				result := map[string]any{"should_refresh": refresh}
				if hasExp {
					result["expires_at"] = exp.UTC().Format(time.RFC3339)
				}
				return json.NewEncoder(app.Out).Encode(result)
			}

			if refresh {
				fmt.Fprintln(app.Out, app.WarnColor("Token should be refreshed"))
			} else {
				fmt.Fprintln(app.Out, app.SuccessColor("Token is valid"))
			}
			if hasExp {
				fmt.Fprintf(app.Out, "Expires: %s\n", exp.Local().Format(time.RFC1123))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report whether the token should be refreshed")

	return cmd
}
