package cmd

import (
	"github.com/maintinsight/maintinsight/core"
	"github.com/spf13/cobra"
)

// modelCmd groups classifier artifact operations.
var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect the classifier artifact",
}

// modelInspectCmd prints the loaded model description.
var modelInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the model name, kind, features, classes and fingerprint",
	Long: `Load and validate the classifier artifact at --model-path and describe it.

Examples:
  maintinsight model inspect --model-path model.yaml
  maintinsight model inspect --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("model inspection", core.ExecuteModelInspect)
	},
}
