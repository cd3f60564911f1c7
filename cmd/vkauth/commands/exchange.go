package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-vkauth/pkg/vk"
)

// newExchangeCmd creates the `vkauth exchange` command.
func newExchangeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Exchange an authorization code for an access token",
		Long: `Exchange the code VK appended to the return URL for an access token and
print it as JSON. With --profile the user's profile is fetched as well.

The code is single use and expires within an hour.`,
		RunE: runExchange,
	}

	cmd.Flags().String("return-url", "", "return URL used to build the login URL")
	cmd.Flags().String("code", "", "authorization code")
	cmd.Flags().String("state", "", "state value to verify (from url --sign-state)")
	cmd.Flags().Bool("profile", false, "fetch the user's profile after the exchange")
	_ = cmd.MarkFlagRequired("return-url")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

// exchangeOutput is printed by `vkauth exchange`.
type exchangeOutput struct {
	AccessToken string     `json:"access_token"`
	UserID      int64      `json:"user_id"`
	Email       string     `json:"email,omitempty"`
	Expiry      string     `json:"expiry,omitempty"`
	Profile     vk.Profile `json:"profile,omitempty"`
}

func runExchange(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	returnURL, _ := cmd.Flags().GetString("return-url")
	code, _ := cmd.Flags().GetString("code")
	state, _ := cmd.Flags().GetString("state")
	withProfile, _ := cmd.Flags().GetBool("profile")

	if state != "" {
		if err := client.NewStateCodec().Verify(state, returnURL); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	token, err := client.Exchange(ctx, returnURL, code)
	if err != nil {
		if errors.Is(err, vk.ErrAuthorizationDenied) {
			return fmt.Errorf("VK refused the code: %w", err)
		}
		return err
	}

	out := exchangeOutput{
		AccessToken: token.AccessToken,
		UserID:      token.UserID,
		Email:       token.Email,
	}
	if !token.Expiry.IsZero() {
		out.Expiry = token.Expiry.Format(time.RFC3339)
	}

	if withProfile {
		profile, err := client.Profile(ctx, token)
		if err != nil {
			return fmt.Errorf("fetching profile: %w", err)
		}
		out.Profile = profile
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
