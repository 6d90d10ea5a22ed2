package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleety/fleetyctl/internal/api"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	Long: `Fetch the current profile from the platform and refresh the locally
persisted identity.

Examples:
  fleetyctl profile show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := requireSession()
		if err != nil {
			return err
		}

		user, err := rt.client.CurrentUser(cmd.Context())
		if err != nil {
			return err
		}

		if err := rt.store.ReplaceUser(user); err != nil {
			rt.logger.Warn("failed to refresh persisted identity", "error", err)
		}

		printProfile(user)
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile",
	Long: `Apply a partial profile update. Only the flags you pass are changed.

Examples:
  fleetyctl profile update --first-name Ada
  fleetyctl profile update --first-name Ada --last-name Lovelace
  fleetyctl profile update --phone "+44 20 7946 0000"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := requireSession()
		if err != nil {
			return err
		}

		var update api.ProfileUpdate
		changed := false
		if cmd.Flags().Changed("first-name") {
			v, _ := cmd.Flags().GetString("first-name")
			update.FirstName = &v
			changed = true
		}
		if cmd.Flags().Changed("last-name") {
			v, _ := cmd.Flags().GetString("last-name")
			update.LastName = &v
			changed = true
		}
		if cmd.Flags().Changed("phone") {
			v, _ := cmd.Flags().GetString("phone")
			update.PhoneNumber = &v
			changed = true
		}
		if cmd.Flags().Changed("image") {
			v, _ := cmd.Flags().GetString("image")
			update.ProfileImage = &v
			changed = true
		}

		if !changed {
			fmt.Println("Nothing to update. Pass at least one of --first-name, --last-name, --phone, --image.")
			return nil
		}

		user, err := rt.client.UpdateProfile(cmd.Context(), update)
		if err != nil {
			return err
		}

		// Mirror the confirmed profile into the persisted identity
		if err := rt.store.ReplaceUser(user); err != nil {
			rt.logger.Warn("failed to refresh persisted identity", "error", err)
		}

		fmt.Println("Profile updated.")
		printProfile(user)
		return nil
	},
}

func printProfile(user *api.User) {
	if user == nil {
		return
	}
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Email:    %s\n", user.Email)
	if user.FirstName != "" || user.LastName != "" {
		fmt.Printf("Name:     %s %s\n", user.FirstName, user.LastName)
	}
	if user.PhoneNumber != "" {
		fmt.Printf("Phone:    %s\n", user.PhoneNumber)
	}
	if user.ProfileImage != "" {
		fmt.Printf("Image:    %s\n", user.ProfileImage)
	}
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)

	profileUpdateCmd.Flags().String("first-name", "", "First name")
	profileUpdateCmd.Flags().String("last-name", "", "Last name")
	profileUpdateCmd.Flags().String("phone", "", "Phone number")
	profileUpdateCmd.Flags().String("image", "", "Profile image URL")

	rootCmd.AddCommand(profileCmd)
}
