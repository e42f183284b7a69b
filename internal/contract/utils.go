package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/maintinsight/maintinsight/schema"
)

// Risk label constants for display.
const (
	HighRiskValue    = "High"
	LowRiskValue     = "Low"
	BelowTargetValue = "below target"
)

// Color variables for console output.
var (
	HighRiskColor    = color.New(color.FgRed, color.Bold) // HighRiskColor represents standard danger.
	LowRiskColor     = color.New(color.FgCyan)            // LowRiskColor represents informational / low-priority signal.
	BelowTargetColor = color.New(color.FgYellow)          // BelowTargetColor represents standard caution, not bold.
)

// GetPlainLabel returns a short plain text label for a predicted risk class.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(class schema.RiskClass) string {
	if class == schema.HighRisk {
		return HighRiskValue
	}
	return LowRiskValue
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(class schema.RiskClass) string {
	text := GetPlainLabel(class)
	if class == schema.HighRisk {
		return HighRiskColor.Sprint(text)
	}
	return LowRiskColor.Sprint(text)
}

// ComplianceNote returns the annotation for a monthly average weekly score.
// It is empty when the score meets the threshold.
func ComplianceNote(avg, threshold float64, useColors bool) string {
	if avg >= threshold {
		return ""
	}
	if useColors {
		return BelowTargetColor.Sprint(BelowTargetValue)
	}
	return BelowTargetValue
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs an informational message to stderr.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "Info "+format+"\n", args...)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".maintinsight_cache.db"
	}
	return filepath.Join(homeDir, ".maintinsight_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".maintinsight_analysis.db"
	}
	return filepath.Join(homeDir, ".maintinsight_analysis.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so that at least one character survives next to the ellipsis.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
