package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-vkauth/pkg/vk"
)

// newURLCmd creates the `vkauth url` command.
func newURLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the VK authorization URL",
		Long: `Print the URL to open in a browser to start a VK login.

With --sign-state a signed, expiring state value bound to the return URL is
added; pass the state VK echoes back to "vkauth exchange --state".`,
		RunE: runURL,
	}

	cmd.Flags().String("return-url", "", "absolute callback URL registered with the VK application")
	cmd.Flags().String("scope", "", "permission scope, overrides VK_SCOPE")
	cmd.Flags().String("display", "", "authorization page type (page, popup, mobile)")
	cmd.Flags().Bool("revoke", false, "ask for permissions again")
	cmd.Flags().Bool("sign-state", false, "add a signed state parameter")
	_ = cmd.MarkFlagRequired("return-url")

	return cmd
}

func runURL(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	returnURL, _ := cmd.Flags().GetString("return-url")
	display, _ := cmd.Flags().GetString("display")
	revoke, _ := cmd.Flags().GetBool("revoke")
	signState, _ := cmd.Flags().GetBool("sign-state")

	var opts []vk.LoginOption
	if display != "" {
		opts = append(opts, vk.WithDisplay(display))
	}
	if revoke {
		opts = append(opts, vk.WithRevoke())
	}
	if signState {
		state, err := client.NewStateCodec().Issue(returnURL)
		if err != nil {
			return err
		}
		opts = append(opts, vk.WithState(state))
	}

	loginURL, err := client.LoginURL(returnURL, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), loginURL)
	return nil
}
