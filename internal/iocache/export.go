package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/internal/parquet"
)

// Suffixes appended to the export prefix, one file per tracking table.
const (
	runsExportSuffix    = ".analysis_runs.parquet"
	recordsExportSuffix = ".scored_records.parquet"
	bucketsExportSuffix = ".monthly_buckets.parquet"
)

// ExecuteAnalysisExport exports every tracking table of store to Parquet files
// named after outputFile. Progress is written to w.
func ExecuteAnalysisExport(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not enabled. Set --analysis-backend to export runs")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total scored records: %d\n", status.TableSizes[scoredRecordsTable])

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	records, err := store.GetAllScoredRecords()
	if err != nil {
		return fmt.Errorf("failed to retrieve scored records: %w", err)
	}
	buckets, err := store.GetAllMonthlyBuckets()
	if err != nil {
		return fmt.Errorf("failed to retrieve monthly buckets: %w", err)
	}

	runsFile := outputFile + runsExportSuffix
	parquetRuns := parquet.ConvertAnalysisRunRecords(runs)
	if err := parquet.WriteAnalysisRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(parquetRuns), runsFile)

	recordsFile := outputFile + recordsExportSuffix
	parquetRecords := parquet.ConvertScoredRecordRecords(records)
	if err := parquet.WriteScoredRecordsParquet(parquetRecords, recordsFile); err != nil {
		return fmt.Errorf("failed to write scored records: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d scored records to: %s\n", len(parquetRecords), recordsFile)

	bucketsFile := outputFile + bucketsExportSuffix
	parquetBuckets := parquet.ConvertMonthlyBucketRecords(buckets)
	if err := parquet.WriteMonthlyBucketsParquet(parquetBuckets, bucketsFile); err != nil {
		return fmt.Errorf("failed to write monthly buckets: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d monthly buckets to: %s\n", len(parquetBuckets), bucketsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - Apache Spark")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	return nil
}
