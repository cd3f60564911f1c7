package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-vkauth/pkg/vk"
)

// NewRootCmd creates the `vkauth` root command.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vkauth",
		Short: "Walk through the VK OAuth 2.0 login flow",
		Long: `vkauth exercises the VK authorization code flow from the command line:
build the login URL, exchange the code VK redirects back with, and look up
the user's profile.

Credentials come from the environment (VK_CLIENT_ID, VK_CLIENT_SECRET,
VK_SCOPE, VK_API_VERSION, VK_TIMEOUT, VK_PUBLIC_PROFILE_LOOKUP), optionally
loaded from an env file.

Examples:
  vkauth url --return-url https://example.com/cb
  vkauth exchange --return-url https://example.com/cb --code 7a6fa4dff77a228eeda56603b8f53806c883f011c40b72630bb50df056f6479e52a
  vkauth profile --user-id 42 --token <access token>`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnvFile(cmd)
		},
	}

	cmd.PersistentFlags().String("env-file", ".env", "env file to load before reading VK_* variables")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log provider requests")
	cmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	cmd.AddCommand(
		newURLCmd(),
		newExchangeCmd(),
		newProfileCmd(),
	)

	return cmd
}

// loadEnvFile loads the --env-file into the process environment. Variables
// already set are not overridden. A missing default file is ignored.
func loadEnvFile(cmd *cobra.Command) error {
	path, _ := cmd.Root().PersistentFlags().GetString("env-file")
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Root().PersistentFlags().Changed("env-file") {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// newLogger builds the logger selected by --verbose and --log-format.
func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	format, _ := cmd.Root().PersistentFlags().GetString("log-format")

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newClient builds a VK client from the environment.
func newClient(cmd *cobra.Command) (*vk.Client, error) {
	cfg, err := vk.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if scope, _ := cmd.Flags().GetString("scope"); scope != "" {
		cfg.Scope = scope
	}
	cfg.Logger = newLogger(cmd)

	return vk.NewClient(cfg)
}
