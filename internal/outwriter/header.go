package outwriter

import (
	"fmt"
	"path/filepath"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
)

// LogAnalysisHeader prints a concise, 2-line header before an analysis.
func LogAnalysisHeader(cfg *contract.Config, info schema.ModelInfo) {
	source := filepath.Base(cfg.InputPath)
	if cfg.InputPath == "-" || cfg.InputPath == "" {
		source = "stdin"
	}

	// Line 1: The batch and the model scoring it
	fmt.Printf("%sBatch: %s (Model: %s, %s)\n", icon(cfg, "🔎"), source, info.Name, info.Kind)

	// Line 2: The cost policy and compliance target in effect
	fmt.Printf("%sCost policy: high risk %s, low risk %s (compliance target: %s)\n",
		icon(cfg, "💰"),
		schema.FormatNumber(cfg.HighRiskCost),
		schema.FormatNumber(cfg.LowRiskCost),
		schema.FormatNumber(cfg.ComplianceThreshold))
}
