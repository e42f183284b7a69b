package outwriter

import (
	"encoding/csv"
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

// trendsJSON is the JSON layout for the monthly trend tables.
type trendsJSON struct {
	ComplianceThreshold float64                `json:"compliance_threshold"`
	FailureProbability  []schema.MonthlyValue  `json:"failure_probability"`
	EstimatedCost       []schema.MonthlyValue  `json:"estimated_cost"`
	Compliance          []schema.MonthlyValue  `json:"compliance"`
	Buckets             []schema.MonthlyBucket `json:"buckets"`
	Skipped             []schema.SkippedDate   `json:"skipped_dates,omitempty"`
}

// PrintTrends outputs the monthly trends, dispatching based on the output format configured.
func PrintTrends(trends schema.MonthlyTrends, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, trendsJSON{
				ComplianceThreshold: cfg.ComplianceThreshold,
				FailureProbability:  trends.FailureProbability(),
				EstimatedCost:       trends.EstimatedCost(),
				Compliance:          trends.Compliance(),
				Buckets:             trends.Buckets,
				Skipped:             trends.Skipped,
			})
		}, "Wrote JSON trends")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendsCSV(w, trends, cfg, fmtFloat, intFmt)
		}, "Wrote CSV trends")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteMonthlyBuckets(w, parquet.FromMonthlyBuckets(0, trends.Buckets))
		}, "Wrote Parquet trends")
	case schema.PromOut:
		return errPromRecords
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeTrendsTable(w, trends, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			return writeFooter(w, cfg, duration)
		}, "Wrote table")
	}
}

// writeTrendsCSV writes one row per month with all three aggregates.
func writeTrendsCSV(w io.Writer, trends schema.MonthlyTrends, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"year_month",
		"avg_failure_probability",
		"total_estimated_cost",
		"avg_weekly_score",
		"record_count",
		"below_target",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, b := range trends.Buckets {
			rec := []string{
				b.YearMonth,
				fmtFloat(b.AvgFailureProbability),
				fmtFloat(b.TotalEstimatedCost),
				fmtFloat(b.AvgWeeklyScore),
				fmt.Sprintf(intFmt, b.RecordCount),
				strconv.FormatBool(b.AvgWeeklyScore < cfg.ComplianceThreshold),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeTrendsTable prints the monthly trends table with the compliance annotation.
func writeTrendsTable(w io.Writer, trends schema.MonthlyTrends, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	if _, err := fmt.Fprintf(w, "%sMonthly trends\n", icon(cfg, "📅")); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()
	table.Header([]string{"Month", "Failure Prob", "Est. Cost", "Compliance", "Records", "Note"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(trends.Buckets))
	for _, b := range trends.Buckets {
		data = append(data, []string{
			b.YearMonth,
			fmtFloat(b.AvgFailureProbability) + "%",
			fmtFloat(b.TotalEstimatedCost),
			fmtFloat(b.AvgWeeklyScore),
			fmt.Sprintf(intFmt, b.RecordCount),
			contract.ComplianceNote(b.AvgWeeklyScore, cfg.ComplianceThreshold, cfg.UseColors),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if n := len(trends.Skipped); n > 0 {
		if _, err := fmt.Fprintf(w, "%s"+intFmt+" records with unparseable dates were left out of the monthly trends\n", icon(cfg, "⚠️"), n); err != nil {
			return err
		}
	}
	return nil
}
