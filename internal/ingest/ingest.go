// Package ingest reads maintenance record batches from CSV.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
)

// StdinPath selects standard input as the CSV source.
const StdinPath = "-"

// ErrMalformedCSV marks input that is not a usable CSV table.
var ErrMalformedCSV = errors.New("malformed CSV")

const utf8BOM = "\uFEFF"

// ReadSource returns the raw bytes at path, or stdin for "-".
func ReadSource(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("an input CSV path is required (use - for stdin)")
	}
	if path == StdinPath {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// ParseBatch parses CSV bytes into a Batch.
// Column presence and cell types are left to the pipeline, which knows the model's features.
func ParseBatch(data []byte, source string) (*schema.Batch, error) {
	return ReadBatch(bytes.NewReader(data), source)
}

// ReadBatch parses CSV from r into a Batch.
func ReadBatch(r io.Reader, source string) (*schema.Batch, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s has no header row", ErrMalformedCSV, source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCSV, source, err)
	}
	columns, err := normalizeHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCSV, source, err)
	}

	batch := &schema.Batch{Source: source, Columns: columns}
	for row := 1; ; row++ {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCSV, source, err)
		}
		batch.Records = append(batch.Records, buildRecord(row, columns, cells))
	}
	return batch, nil
}

// ReadScoredBatch re-ingests an exported scored table and restores the derived fields.
func ReadScoredBatch(r io.Reader, source string) (*schema.ScoredBatch, error) {
	batch, err := ReadBatch(r, source)
	if err != nil {
		return nil, err
	}
	if err := checkColumns(batch.Columns, append(append([]string{}, schema.BaseColumns...), schema.DerivedColumns...)); err != nil {
		return nil, err
	}

	scored := &schema.ScoredBatch{
		Source:  source,
		Columns: batch.Columns,
		Records: make([]schema.ScoredRecord, 0, len(batch.Records)),
	}
	for _, rec := range batch.Records {
		sr, err := restoreDerived(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCSV, source, err)
		}
		scored.Records = append(scored.Records, sr)
	}
	return scored, nil
}

func normalizeHeader(header []string) ([]string, error) {
	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		if name == "" {
			return nil, fmt.Errorf("header column %d is empty", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate header column %q", name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}
	return columns, nil
}

// checkColumns reports every required column absent from columns, in required order.
func checkColumns(columns, required []string) error {
	present := schema.ColumnIndex(columns)
	var missing []string
	for _, c := range required {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &contract.MissingFeaturesError{Missing: missing}
	}
	return nil
}

// buildRecord keeps every cell as text. WeeklyScore is filled in by scoring.
func buildRecord(row int, columns, cells []string) schema.Record {
	fields := make(map[string]string, len(columns))
	for i, c := range columns {
		fields[c] = cells[i]
	}
	return schema.Record{
		Row:        row,
		UnitID:     fields[schema.UnitIDColumn],
		RecordDate: fields[schema.RecordDateColumn],
		Fields:     fields,
	}
}

func restoreDerived(rec schema.Record) (schema.ScoredRecord, error) {
	raw := rec.Value(schema.WeeklyScoreColumn)
	weekly, err := schema.ParseNumber(raw)
	if err != nil || math.IsNaN(weekly) || math.IsInf(weekly, 0) {
		return schema.ScoredRecord{}, fmt.Errorf("row %d: column %s: %q is not a finite number", rec.Row, schema.WeeklyScoreColumn, raw)
	}
	rec.WeeklyScore = weekly
	class, ok := schema.RiskClassFromString(rec.Value(schema.PredictedRiskColumn))
	if !ok {
		return schema.ScoredRecord{}, fmt.Errorf("row %d: column %s: %q is not 0 or 1", rec.Row, schema.PredictedRiskColumn, rec.Value(schema.PredictedRiskColumn))
	}
	confidence, err := schema.ParseNumber(rec.Value(schema.RiskConfidenceColumn))
	if err != nil {
		return schema.ScoredRecord{}, fmt.Errorf("row %d: column %s: %w", rec.Row, schema.RiskConfidenceColumn, err)
	}
	cost, err := schema.ParseNumber(rec.Value(schema.EstimatedRepairCostColumn))
	if err != nil {
		return schema.ScoredRecord{}, fmt.Errorf("row %d: column %s: %w", rec.Row, schema.EstimatedRepairCostColumn, err)
	}
	return schema.ScoredRecord{
		Record:              rec,
		PredictedRisk:       class,
		RiskConfidence:      confidence,
		RiskLevel:           rec.Value(schema.RiskLevelColumn),
		EstimatedRepairCost: cost,
	}, nil
}
