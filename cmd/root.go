// Package cmd provides the CLI for the label-action application.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gha-utils/label-action/action"
	"github.com/gha-utils/label-action/config"
	"github.com/gha-utils/label-action/gh"
	"github.com/gha-utils/label-action/logging"
)

var (
	v         = viper.New()
	appConfig config.Config
	logger    zerolog.Logger
)

// root is the root command for the CLI.
var root = &cobra.Command{
	Use:   "label-action",
	Short: "Manage labels on a GitHub issue or pull request from a workflow",
	Long: `
label-action manages labels on a GitHub issue or pull request through the GitHub REST API.

It is built to run as a step inside a GitHub Actions workflow: the target repository,
object number, credentials, and requested operation are read from the environment the
workflow provides, one API call is made, and the HTTP result is written back as the
'response' action output.

Supported operations:

  add     append labels to the target, keeping existing ones
  remove  remove one named label from the target
  set     replace the target's full label set
  clear   remove all labels from the target

Configuration is read from CLI flags > environment variables > a .env file.
`,
	Example: `
# Add two labels to issue 42 (typical workflow env: owner, repository, token, obj_id set already)
label-action --operation add --labels "bug,needs-review"
# Replace the label set of a pull request
label-action --operation set --labels p1 --obj-id 97
# Remove all labels, with debug logging
label-action --operation clear --log-level debug
`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error

		appConfig, err = config.Load(config.WithViper(v))
		if err != nil {
			return err
		}

		opts := []logging.Option{
			logging.WithLevel(appConfig.LogLevel),
			logging.WithFileName(appConfig.LogPath),
			logging.WithSecrets(appConfig.GetSecrets()),
		}

		logger, err = logging.New(opts...)
		if err != nil {
			return err
		}

		marshaled, err := appConfig.MarshalJSON()
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to marshal config for logging.")
		}
		logger.Debug().Str("config", string(marshaled)).Msg("Loaded config")

		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := appConfig.Validate(); err != nil {
			return action.Wrap(err)
		}

		client, err := gh.NewClient(
			gh.WithConfig(appConfig),
			gh.WithLogger(logger),
		)
		if err != nil {
			return action.Wrap(fmt.Errorf("failed to create GitHub client: %w", err))
		}

		runner, err := action.New(
			action.WithConfig(appConfig),
			action.WithClient(client),
			action.WithLogger(logger),
		)
		if err != nil {
			return action.Wrap(err)
		}

		err = runner.Run(cmd.Context())
		if err != nil {
			logger.Error().Err(err).Msg("Operation failed")
		}
		return err
	},
}

func init() {
	config.MustBindConfig(root, v)
}

// Execute is the entry point for the CLI.
func Execute() {
	if err := fang.Execute(context.Background(), root, fang.WithVersion(config.VersionString())); err != nil {
		os.Exit(1)
	}
}
