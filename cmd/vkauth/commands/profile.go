package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-vkauth/pkg/vk"
)

// newProfileCmd creates the `vkauth profile` command.
func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Look up a VK user's profile",
		RunE:  runProfile,
	}

	cmd.Flags().Int64("user-id", 0, "VK user id")
	cmd.Flags().String("token", "", "access token (omit with VK_PUBLIC_PROFILE_LOOKUP=true)")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func runProfile(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	userID, _ := cmd.Flags().GetInt64("user-id")
	accessToken, _ := cmd.Flags().GetString("token")

	profile, err := client.Profile(cmd.Context(), &vk.Token{AccessToken: accessToken, UserID: userID})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "id:       %s\nusername: %s\n", profile.ID(), profile.Username())
	return nil
}
