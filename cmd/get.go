package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gha-utils/label-action/action"
	"github.com/gha-utils/label-action/gh"
)

var labelScope string

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Read-only label queries against the configured target",
}

var getLabelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List labels for the repository or for the target issue/pull request",
	Long: `List labels for the configured target.

With --scope repository the labels defined on the repository are listed.
With --scope issue or --scope pull_request the labels applied to the target object are listed.
Without --scope, one GraphQL query determines whether obj_id names an issue or a pull
request, and that object's labels are listed.`,
	Example: `
# Labels defined on the repository
label-action get labels --scope repository
# Labels applied to issue or PR 42, auto-detecting which it is
label-action get labels --obj-id 42
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		scope := gh.Scope(labelScope)

		if scope == gh.ScopeRepository {
			if err := appConfig.ValidateRepo(); err != nil {
				return action.Wrap(err)
			}
		} else {
			if err := appConfig.Validate(); err != nil {
				return action.Wrap(err)
			}
		}

		client, err := gh.NewClient(
			gh.WithConfig(appConfig),
			gh.WithLogger(logger),
		)
		if err != nil {
			return action.Wrap(fmt.Errorf("failed to create GitHub client: %w", err))
		}

		ctx := cmd.Context()
		if scope == "" {
			scope, err = client.ResolveScope(ctx)
			if err != nil {
				return action.Wrap(err)
			}
			logger.Debug().Str("scope", string(scope)).Msg("Resolved object type")
		}

		labels, err := client.ListLabels(ctx, scope)
		if err != nil {
			return action.Wrap(err)
		}

		for _, label := range labels {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t#%s\t%s\n",
				label.GetName(), label.GetColor(), label.GetDescription())
		}
		return nil
	},
}

var getLabelCmd = &cobra.Command{
	Use:   "label <name>",
	Short: "Show a single label definition by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appConfig.ValidateRepo(); err != nil {
			return action.Wrap(err)
		}

		client, err := gh.NewClient(
			gh.WithConfig(appConfig),
			gh.WithLogger(logger),
		)
		if err != nil {
			return action.Wrap(fmt.Errorf("failed to create GitHub client: %w", err))
		}

		label, err := client.GetLabelDefinition(cmd.Context(), args[0])
		if err != nil {
			return action.Wrap(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t#%s\t%s\n",
			label.GetName(), label.GetColor(), label.GetDescription())
		return nil
	},
}

func init() {
	root.AddCommand(getCmd)
	getCmd.AddCommand(getLabelsCmd)
	getCmd.AddCommand(getLabelCmd)

	getLabelsCmd.Flags().StringVarP(&labelScope, "scope", "s", "",
		"Label scope: repository, issue, or pull_request. Empty auto-detects the object type")
}
