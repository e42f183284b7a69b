package contract

import (
	"fmt"
	"strings"
)

// MissingFeaturesError reports required columns absent from a batch.
// Missing keeps the order in which the required list declared them.
type MissingFeaturesError struct {
	Missing []string
}

func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("missing required features: %s", strings.Join(e.Missing, ", "))
}

// DateParseWarning flags a record whose date could not be parsed.
// The record is left out of monthly aggregation but still counts toward fleet metrics.
type DateParseWarning struct {
	Row        int
	UnitID     string
	RecordDate string
}

func (w DateParseWarning) Error() string {
	return fmt.Sprintf("row %d (unit %q): unparseable record_date %q", w.Row, w.UnitID, w.RecordDate)
}

// ScoringError means the classifier could not score the batch.
// No partial predictions are kept when this is returned.
type ScoringError struct {
	Reason string
	Err    error
}

func (e *ScoringError) Error() string {
	if e.Err == nil {
		return "scoring failed: " + e.Reason
	}
	return fmt.Sprintf("scoring failed: %s: %v", e.Reason, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// ModelLoadError means the classifier artifact could not be loaded or is invalid.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model %q: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}
