package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleety/fleetyctl/internal/errors"
	"github.com/fleety/fleetyctl/internal/tui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your Fleety session",
	Long:  `Log in, register, or inspect the session persisted on this machine.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the Fleety platform",
	Long: `Log in to the Fleety platform and persist the session locally.

Missing credentials are prompted for when running interactively.

Examples:
  fleetyctl auth login
  fleetyctl auth login --username alice
  fleetyctl auth login --username alice --password secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}

		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		if username == "" && tui.IsInteractive() {
			username, err = tui.PromptForString(tui.Prompt{Message: "Username", Required: true})
			if err != nil {
				return err
			}
		}
		if password == "" && tui.IsInteractive() {
			password, err = tui.PromptForString(tui.Prompt{Message: "Password", Secret: true, Required: true})
			if err != nil {
				return err
			}
		}

		if err := rt.store.Login(cmd.Context(), username, password); err != nil {
			return err
		}

		user := rt.store.User()
		fmt.Printf("Logged in as %s\n", user.Username)
		return nil
	},
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a new Fleety account.

A successful registration logs you in immediately; no separate login is
needed.

Examples:
  fleetyctl auth register --username alice --email alice@example.com
  fleetyctl auth register --username alice --email alice@example.com --password secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}

		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if username == "" && tui.IsInteractive() {
			username, err = tui.PromptForString(tui.Prompt{Message: "Username", Required: true})
			if err != nil {
				return err
			}
		}
		if email == "" && tui.IsInteractive() {
			email, err = tui.PromptForString(tui.Prompt{Message: "Email", Required: true})
			if err != nil {
				return err
			}
		}
		if password == "" && tui.IsInteractive() {
			password, err = tui.PromptForString(tui.Prompt{Message: "Password", Secret: true, Required: true})
			if err != nil {
				return err
			}
		}

		if err := rt.store.Register(cmd.Context(), username, email, password); err != nil {
			return err
		}

		user := rt.store.User()
		fmt.Printf("Account created. Logged in as %s\n", user.Username)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Long: `End the current session and remove the credentials persisted on this
machine. Safe to run when no session exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}

		rt.store.Logout()
		fmt.Println("Logged out.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	Long: `Show whether a session is active and who it belongs to.

The persisted identity is verified against the platform; a stale or revoked
token is reported, not treated as an error.

Examples:
  fleetyctl auth status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}

		if !rt.store.LoggedIn() {
			fmt.Println("Not logged in.")
			fmt.Println("Use 'fleetyctl auth login' to authenticate.")
			return nil
		}

		user, err := rt.client.CurrentUser(cmd.Context())
		if err != nil {
			if errors.IsRemote(err) {
				fmt.Println("Session found but the token was rejected.")
				fmt.Println("Use 'fleetyctl auth login' to re-authenticate.")
				return nil
			}
			return err
		}

		// Keep the persisted identity in sync with the platform
		if err := rt.store.ReplaceUser(user); err != nil {
			rt.logger.Warn("failed to refresh persisted identity", "error", err)
		}

		fmt.Println("Logged in")
		fmt.Printf("User ID:  %s\n", user.ID)
		fmt.Printf("Username: %s\n", user.Username)
		fmt.Printf("Email:    %s\n", user.Email)
		if user.FirstName != "" || user.LastName != "" {
			fmt.Printf("Name:     %s %s\n", user.FirstName, user.LastName)
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authLoginCmd.Flags().StringP("username", "u", "", "Username")
	authLoginCmd.Flags().StringP("password", "p", "", "Password")

	authRegisterCmd.Flags().StringP("username", "u", "", "Username")
	authRegisterCmd.Flags().StringP("email", "e", "", "Email address")
	authRegisterCmd.Flags().StringP("password", "p", "", "Password")

	rootCmd.AddCommand(authCmd)
}
