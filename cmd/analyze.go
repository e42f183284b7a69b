package cmd

import (
	"github.com/maintinsight/maintinsight/core"
	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/spf13/cobra"
)

// runExecutor runs one pipeline command and exits on failure.
func runExecutor(name string, executor core.ExecutorFunc) {
	if err := executor(rootCtx, cfg, modelHandle, cacheManager); err != nil {
		contract.LogFatal("Cannot run "+name, err)
	}
}

// analyzeCmd prints the fleet summary and monthly trends for a batch.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <csv>",
	Short: "Score a maintenance batch and report fleet risk, cost and monthly trends",
	Long: `Score every record of a maintenance CSV with the pre-trained classifier, attach
a risk label and an estimated repair cost, then report the fleet summary and the
monthly trend tables.

The CSV needs a header with unit_id, record_date, weekly_score and every feature
the model was trained on. Use - to read from stdin.

Examples:
  # Analyze a batch with the default model
  maintinsight analyze fleet.csv --model-path model.yaml

  # Include every scored record
  maintinsight analyze fleet.csv --records

  # Machine readable report
  maintinsight analyze fleet.csv --output json --output-file report.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("analysis", core.ExecuteAnalyze)
	},
}

// recordsCmd prints the scored records only.
var recordsCmd = &cobra.Command{
	Use:   "records <csv>",
	Short: "Print every scored record with risk label and estimated cost",
	Long: `Score a maintenance CSV and print the enriched table: every input column plus
predicted_risk, risk_confidence, risk_level and estimated_repair_cost.

Examples:
  # Top records in the terminal
  maintinsight records fleet.csv --limit 50

  # Export the enriched table
  maintinsight records fleet.csv --output csv --output-file scored.csv
  maintinsight records fleet.csv --output parquet --output-file scored.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("records", core.ExecuteRecords)
	},
}

// trendsCmd prints the monthly trend tables only.
var trendsCmd = &cobra.Command{
	Use:   "trends <csv>",
	Short: "Print monthly failure probability, repair cost and compliance",
	Long: `Score a maintenance CSV and group it by calendar month of record_date.

Each month shows the average failure probability, the total estimated repair cost
and the average weekly score, marked below target when it falls under
--compliance-threshold. Records with unparseable dates are left out and reported.

Examples:
  maintinsight trends fleet.csv
  maintinsight trends fleet.csv --compliance-threshold 40 --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("trends", core.ExecuteTrends)
	},
}

// summaryCmd prints the fleet summary only.
var summaryCmd = &cobra.Command{
	Use:   "summary <csv>",
	Short: "Print whole-fleet risk and cost statistics",
	Long: `Score a maintenance CSV and print the fleet summary: distinct units, high risk
units and their share, average compliance and total estimated repair cost.

Examples:
  maintinsight summary fleet.csv
  # Prometheus text exposition for a textfile collector
  maintinsight summary fleet.csv --output prom --output-file fleet.prom`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("summary", core.ExecuteSummary)
	},
}
