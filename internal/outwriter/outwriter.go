// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
	"golang.org/x/term"
)

// GetMaxTableCellWidth calculates the maximum width for free-text cells (unit ids)
// in table output based on terminal width and the fixed columns of the table.
func GetMaxTableCellWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Date + Weekly + Compliance + Risk + Confidence + Cost with borders/padding
	baseWidth := 85

	available := termWidth - baseWidth
	if available < 10 {
		return 10
	}
	if available > 40 {
		return 40
	}
	return available
}

// riskLabel returns the short risk label, colored when enabled.
func riskLabel(class schema.RiskClass, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(class)
	}
	return contract.GetPlainLabel(class)
}

// icon returns the emoji prefix when emojis are enabled.
func icon(cfg *contract.Config, emoji string) string {
	if cfg.UseEmojis {
		return emoji + " "
	}
	return ""
}
