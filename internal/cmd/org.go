package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fleety/fleetyctl/internal/api"
	"github.com/fleety/fleetyctl/internal/errors"
	"github.com/fleety/fleetyctl/internal/org"
	"github.com/fleety/fleetyctl/internal/tui"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Work with your organisations",
	Long:  `List the organisations you belong to and manage their rosters.`,
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your organisations",
	Long: `List every organisation the current user belongs to, with the role
held in each.

Examples:
  fleetyctl org list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := requireSession()
		if err != nil {
			return err
		}

		memberships, err := rt.client.ListMyMemberships(cmd.Context())
		if err != nil {
			return err
		}

		if len(memberships) == 0 {
			fmt.Println("You are not a member of any organisation.")
			return nil
		}

		for _, membership := range memberships {
			role := "member"
			if membership.IsOrgAdmin {
				role = "admin"
			}
			fmt.Printf("%-36s  %-24s  %s (%d members)\n",
				membership.Organisation.ID,
				membership.Organisation.Name,
				role,
				membership.Organisation.MemberCount)
		}
		return nil
	},
}

var orgMembersCmd = &cobra.Command{
	Use:   "members <org-id>",
	Short: "List an organisation's members",
	Long: `List the members of an organisation you administer.

The --filter flag narrows the list by username or email, matching
case-insensitively.

Examples:
  fleetyctl org members 7f3c2a10
  fleetyctl org members 7f3c2a10 --filter alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := requireSession()
		if err != nil {
			return err
		}

		filter, _ := cmd.Flags().GetString("filter")

		manager := org.NewManager(rt.client, rt.logger)
		if err := manager.Refresh(cmd.Context(), args[0]); err != nil {
			return err
		}

		roster := org.Search(manager.Roster(), filter)
		if len(roster) == 0 {
			if filter != "" {
				fmt.Println("No members match the filter.")
			} else {
				fmt.Println("No members.")
			}
			return nil
		}

		for _, member := range roster {
			role := "member"
			if member.IsOrgAdmin {
				role = "admin"
			}
			fmt.Printf("%-24s  %-32s  %s\n", member.User.Username, member.User.Email, role)
		}
		return nil
	},
}

var orgAddCmd = &cobra.Command{
	Use:   "add <org-id> <username>",
	Short: "Add a member to an organisation",
	Long: `Add a user to an organisation you administer.

Examples:
  fleetyctl org add 7f3c2a10 bob
  fleetyctl org add 7f3c2a10 bob --admin`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := requireSession()
		if err != nil {
			return err
		}

		makeAdmin, _ := cmd.Flags().GetBool("admin")

		manager := org.NewManager(rt.client, rt.logger)
		if err := manager.AddMember(cmd.Context(), args[0], args[1], makeAdmin); err != nil {
			return err
		}

		role := "member"
		if makeAdmin {
			role = "admin"
		}
		fmt.Printf("Added %s as %s.\n", args[1], role)
		return nil
	},
}

var orgRemoveCmd = &cobra.Command{
	Use:   "remove <org-id> <username>",
	Short: "Remove a member from an organisation",
	Long: `Remove a user from an organisation you administer.

Removal asks for confirmation before anything is sent to the platform.
Pass --yes to skip the prompt in scripts.

Examples:
  fleetyctl org remove 7f3c2a10 bob
  fleetyctl org remove 7f3c2a10 bob --yes`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := requireSession()
		if err != nil {
			return err
		}

		skipPrompt, _ := cmd.Flags().GetBool("yes")

		manager := org.NewManager(rt.client, rt.logger)
		member, err := findMember(cmd, manager, args[0], args[1])
		if err != nil {
			return err
		}

		request, err := manager.RequestRemoval(args[0], member)
		if err != nil {
			return err
		}

		if !skipPrompt {
			confirmed, err := tui.PromptForConfirmation(
				fmt.Sprintf("Remove %s from this organisation?", request.Username), false)
			if err != nil {
				return err
			}
			if !confirmed {
				manager.CancelRemoval(request.Token)
				fmt.Println("Removal cancelled.")
				return nil
			}
		}

		if err := manager.ConfirmRemoval(cmd.Context(), request.Token); err != nil {
			return err
		}

		fmt.Printf("Removed %s.\n", request.Username)
		return nil
	},
}

var orgPromoteCmd = &cobra.Command{
	Use:   "promote <org-id> <username>",
	Short: "Grant a member admin rights",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMemberRole(cmd, args[0], args[1], true)
	},
}

var orgDemoteCmd = &cobra.Command{
	Use:   "demote <org-id> <username>",
	Short: "Revoke a member's admin rights",
	Long: `Revoke a member's admin rights.

Demoting the organisation's only admin is refused; promote someone else
first.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMemberRole(cmd, args[0], args[1], false)
	},
}

func setMemberRole(cmd *cobra.Command, orgID, username string, isAdmin bool) error {
	rt, err := requireSession()
	if err != nil {
		return err
	}

	manager := org.NewManager(rt.client, rt.logger)
	member, err := findMember(cmd, manager, orgID, username)
	if err != nil {
		return err
	}

	if err := manager.SetAdmin(cmd.Context(), orgID, member.User.ID, isAdmin); err != nil {
		return err
	}

	if isAdmin {
		fmt.Printf("%s is now an admin.\n", username)
	} else {
		fmt.Printf("%s is now a regular member.\n", username)
	}
	return nil
}

// findMember refreshes the roster and resolves a username to its entry
func findMember(cmd *cobra.Command, manager *org.Manager, orgID, username string) (api.Member, error) {
	if err := manager.Refresh(cmd.Context(), orgID); err != nil {
		return api.Member{}, err
	}

	for _, member := range manager.Roster() {
		if strings.EqualFold(member.User.Username, username) {
			return member, nil
		}
	}
	return api.Member{}, errors.New(errors.ErrCodeMemberRequired,
		fmt.Sprintf("no member named %q in this organisation", username)).
		WithSuggestion("Run 'fleetyctl org members' to see the roster")
}

// requireSession builds the runtime and refuses to continue without an
// active session
func requireSession() (*runtime, error) {
	rt, err := newRuntime()
	if err != nil {
		return nil, err
	}
	if !rt.store.LoggedIn() {
		return nil, errors.NewNoActiveSessionError()
	}
	return rt, nil
}

func init() {
	orgCmd.AddCommand(orgListCmd)
	orgCmd.AddCommand(orgMembersCmd)
	orgCmd.AddCommand(orgAddCmd)
	orgCmd.AddCommand(orgRemoveCmd)
	orgCmd.AddCommand(orgPromoteCmd)
	orgCmd.AddCommand(orgDemoteCmd)

	orgMembersCmd.Flags().String("filter", "", "Filter members by username or email")
	orgAddCmd.Flags().Bool("admin", false, "Add the member as an organisation admin")
	orgRemoveCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(orgCmd)
}
