package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/internal/parquet"
	"github.com/maintinsight/maintinsight/schema"
)

// PrintAnalysis outputs every view of an analysis.
// JSON carries the full report; CSV and parquet carry the scored records since
// those are the only per-row views; prom carries the fleet summary.
func PrintAnalysis(result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.NewAnalysisReport(result, cfg.ComplianceThreshold, cfg.ShowRecords))
		}, "Wrote JSON report")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteScoredCSV(w, result.Scored)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteScoredRecords(w, parquet.FromScoredRecords(0, result.Scored.Records))
		}, "Wrote Parquet")
	case schema.PromOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteSummaryMetrics(w, result.Summary)
		}, "Wrote metrics")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeSummaryCards(w, result.Summary, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			if result.Cached {
				if _, err := fmt.Fprintf(w, "%sServed from result cache\n", icon(cfg, "⚡")); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
			if err := writeTrendsTable(w, result.Trends, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			if cfg.ShowRecords {
				if _, err := fmt.Fprintf(w, "\n%sScored records\n", icon(cfg, "📋")); err != nil {
					return err
				}
				if err := writeRecordsTable(w, result.Scored.Records, cfg, fmtFloat, intFmt); err != nil {
					return err
				}
			}
			return writeFooter(w, cfg, duration)
		}, "Wrote report")
	}
}
