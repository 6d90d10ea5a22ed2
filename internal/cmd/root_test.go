package cmd

import (
	"testing"

	"github.com/spf13/cobra"
)

// TestRootSubcommands tests that the top-level commands are registered
func TestRootSubcommands(t *testing.T) {
	subcommands := map[string]bool{
		"auth":      false,
		"org":       false,
		"profile":   false,
		"dashboard": false,
		"version":   false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, exists := subcommands[cmd.Name()]; exists {
			subcommands[cmd.Name()] = true
		}
	}

	for name, found := range subcommands {
		if !found {
			t.Errorf("subcommand '%s' not found on root command", name)
		}
	}
}

// TestAuthSubcommands tests that all auth subcommands are registered
func TestAuthSubcommands(t *testing.T) {
	subcommands := map[string]bool{
		"login":    false,
		"register": false,
		"logout":   false,
		"status":   false,
	}

	for _, cmd := range authCmd.Commands() {
		if _, exists := subcommands[cmd.Name()]; exists {
			subcommands[cmd.Name()] = true
		}
	}

	for name, found := range subcommands {
		if !found {
			t.Errorf("subcommand '%s' not found in auth command", name)
		}
	}
}

// TestOrgSubcommands tests that all org subcommands are registered
func TestOrgSubcommands(t *testing.T) {
	subcommands := map[string]bool{
		"list":    false,
		"members": false,
		"add":     false,
		"remove":  false,
		"promote": false,
		"demote":  false,
	}

	for _, cmd := range orgCmd.Commands() {
		if _, exists := subcommands[cmd.Name()]; exists {
			subcommands[cmd.Name()] = true
		}
	}

	for name, found := range subcommands {
		if !found {
			t.Errorf("subcommand '%s' not found in org command", name)
		}
	}
}

func findSubcommand(parent *cobra.Command, name string) *cobra.Command {
	for _, cmd := range parent.Commands() {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

// TestAuthLoginFlags tests that auth login has correct flags
func TestAuthLoginFlags(t *testing.T) {
	loginCmd := findSubcommand(authCmd, "login")
	if loginCmd == nil {
		t.Fatal("login subcommand not found")
	}

	if loginCmd.Flags().Lookup("username") == nil {
		t.Error("flag 'username' not found on auth login command")
	}
	if loginCmd.Flags().Lookup("password") == nil {
		t.Error("flag 'password' not found on auth login command")
	}
}

// TestOrgRemoveFlags tests that org remove supports skipping the prompt
func TestOrgRemoveFlags(t *testing.T) {
	removeCmd := findSubcommand(orgCmd, "remove")
	if removeCmd == nil {
		t.Fatal("remove subcommand not found")
	}

	if removeCmd.Flags().Lookup("yes") == nil {
		t.Error("flag 'yes' not found on org remove command")
	}
}

// TestOrgAddFlags tests that org add supports the admin role flag
func TestOrgAddFlags(t *testing.T) {
	addCmd := findSubcommand(orgCmd, "add")
	if addCmd == nil {
		t.Fatal("add subcommand not found")
	}

	if addCmd.Flags().Lookup("admin") == nil {
		t.Error("flag 'admin' not found on org add command")
	}
}

// TestProfileUpdateFlags tests the partial-update flags
func TestProfileUpdateFlags(t *testing.T) {
	updateCmd := findSubcommand(profileCmd, "update")
	if updateCmd == nil {
		t.Fatal("update subcommand not found")
	}

	for _, flag := range []string{"first-name", "last-name", "phone", "image"} {
		if updateCmd.Flags().Lookup(flag) == nil {
			t.Errorf("flag '%s' not found on profile update command", flag)
		}
	}
}
