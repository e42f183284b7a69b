package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/internal/parquet"
	"github.com/maintinsight/maintinsight/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// errPromRecords is returned when prom output is requested for a non-summary view.
var errPromRecords = errors.New("prom output is only available for the fleet summary")

// PrintRecords outputs the scored records, dispatching based on the output format configured.
func PrintRecords(sb *schema.ScoredBatch, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.EnrichRecords(sb.Records, cfg.ComplianceThreshold))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteScoredCSV(w, sb)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteScoredRecords(w, parquet.FromScoredRecords(0, sb.Records))
		}, "Wrote Parquet")
	case schema.PromOut:
		return errPromRecords
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeRecordsTable(w, sb.Records, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			return writeFooter(w, cfg, duration)
		}, "Wrote table")
	}
}

// WriteScoredCSV writes the scored batch as CSV: the original columns in upload order,
// then the derived columns. Numbers use the shortest exact representation so the
// file re-ingests to identical values.
func WriteScoredCSV(w io.Writer, sb *schema.ScoredBatch) error {
	columns := sb.ExportColumns()
	return writeCSVWithHeader(w, columns, func(cw *csv.Writer) error {
		row := make([]string, len(columns))
		for _, r := range sb.Records {
			for i, c := range columns {
				row[i] = scoredCell(r, c)
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func scoredCell(r schema.ScoredRecord, column string) string {
	switch column {
	case schema.PredictedRiskColumn:
		return r.PredictedRisk.String()
	case schema.RiskConfidenceColumn:
		return schema.FormatNumber(r.RiskConfidence)
	case schema.RiskLevelColumn:
		return r.RiskLevel
	case schema.EstimatedRepairCostColumn:
		return schema.FormatNumber(r.EstimatedRepairCost)
	default:
		return r.Value(column)
	}
}

// writeRecordsTable generates and writes the human-readable records table.
func writeRecordsTable(w io.Writer, records []schema.ScoredRecord, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	// 1. Define Headers
	table.Header([]string{"Rank", "Unit", "Date", "Weekly", "Compliance", "Risk", "Confidence", "Est. Cost"})

	// 2. Configure alignment to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	shown := records
	if cfg.ResultLimit > 0 && len(shown) > cfg.ResultLimit {
		shown = shown[:cfg.ResultLimit]
	}
	unitWidth := GetMaxTableCellWidth(cfg)
	data := make([][]string, 0, len(shown))
	for _, r := range schema.EnrichRecords(shown, cfg.ComplianceThreshold) {
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			contract.TruncateText(r.UnitID, unitWidth),
			r.RecordDate,
			fmtFloat(r.WeeklyScore),
			r.Label,
			riskLabel(r.PredictedRisk, cfg),
			fmtFloat(r.RiskConfidence*100) + "%",
			fmtFloat(r.EstimatedRepairCost),
		})
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	highRisk := len(schema.FilterHighRisk(records))
	_, err := fmt.Fprintf(w, "Showing "+intFmt+" of "+intFmt+" records (high risk: "+intFmt+")\n", len(shown), len(records), highRisk)
	return err
}

// writeFooter prints the timing line shared by all text views.
func writeFooter(w io.Writer, cfg *contract.Config, duration time.Duration) error {
	_, err := fmt.Fprintf(w, "Analysis completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
	return err
}
