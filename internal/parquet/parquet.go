// Package parquet provides data structures and functions for exporting maintinsight
// scoring data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/maintinsight/maintinsight/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single tracked batch analysis with metadata.
// This struct maps to the maintinsight_analysis_runs database table.
type AnalysisRun struct {
	// AnalysisID is the unique identifier for this analysis run
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// BatchID is the UUID assigned to the uploaded batch
	BatchID string `parquet:"batch_id,snappy"`

	// Source names the uploaded file or stream
	Source string `parquet:"source,snappy"`

	// StartTime is when the analysis began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the analysis run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalRecords  int32   `parquet:"total_records,snappy"`
	TotalUnits    int32   `parquet:"total_units,snappy"`
	HighRiskUnits int32   `parquet:"high_risk_units,snappy"`
	TotalCost     float64 `parquet:"total_cost,snappy"`

	// ConfigParams contains the JSON-encoded cost policy (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ScoredRecord is one classified maintenance record.
// This struct maps to the maintinsight_scored_records database table.
type ScoredRecord struct {
	// AnalysisID references the parent analysis run, 0 for direct exports
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// RowNumber is the 1-based data row in the uploaded file
	RowNumber int32 `parquet:"row_number,snappy"`

	UnitID              string  `parquet:"unit_id,dict,snappy"`
	RecordDate          string  `parquet:"record_date,snappy"`
	WeeklyScore         float64 `parquet:"weekly_score,snappy"`
	PredictedRisk       int32   `parquet:"predicted_risk,snappy"`
	RiskConfidence      float64 `parquet:"risk_confidence,snappy"`
	RiskLevel           string  `parquet:"risk_level,dict,snappy"`
	EstimatedRepairCost float64 `parquet:"estimated_repair_cost,snappy"`
}

// MonthlyBucket holds the aggregates for one calendar month.
// This struct maps to the maintinsight_monthly_buckets database table.
type MonthlyBucket struct {
	AnalysisID            int64   `parquet:"analysis_id,snappy"`
	YearMonth             string  `parquet:"year_month,snappy"`
	AvgFailureProbability float64 `parquet:"avg_failure_probability,snappy"`
	TotalEstimatedCost    float64 `parquet:"total_estimated_cost,snappy"`
	AvgWeeklyScore        float64 `parquet:"avg_weekly_score,snappy"`
	RecordCount           int32   `parquet:"record_count,snappy"`
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteScoredRecordsParquet writes a slice of ScoredRecord structs to a Parquet file.
func WriteScoredRecordsParquet(data []ScoredRecord, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteMonthlyBucketsParquet writes a slice of MonthlyBucket structs to a Parquet file.
func WriteMonthlyBucketsParquet(data []MonthlyBucket, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteScoredRecords streams scored records as Parquet to w.
func WriteScoredRecords(w io.Writer, data []ScoredRecord) error {
	return write(w, data)
}

// WriteMonthlyBuckets streams monthly buckets as Parquet to w.
func WriteMonthlyBuckets(w io.Writer, data []MonthlyBucket) error {
	return write(w, data)
}

func writeFile[T any](data []T, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return write(file, data)
}

func write[T any](w io.Writer, data []T) error {
	// The schema is automatically derived from the struct tags
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// FromScoredRecords converts pipeline output to Parquet rows.
func FromScoredRecords(analysisID int64, records []schema.ScoredRecord) []ScoredRecord {
	result := make([]ScoredRecord, len(records))
	for i, r := range records {
		result[i] = ScoredRecord{
			AnalysisID:          analysisID,
			RowNumber:           int32(r.Row),
			UnitID:              r.UnitID,
			RecordDate:          r.RecordDate,
			WeeklyScore:         r.WeeklyScore,
			PredictedRisk:       int32(r.PredictedRisk),
			RiskConfidence:      r.RiskConfidence,
			RiskLevel:           r.RiskLevel,
			EstimatedRepairCost: r.EstimatedRepairCost,
		}
	}
	return result
}

// FromMonthlyBuckets converts aggregator output to Parquet rows.
func FromMonthlyBuckets(analysisID int64, buckets []schema.MonthlyBucket) []MonthlyBucket {
	result := make([]MonthlyBucket, len(buckets))
	for i, b := range buckets {
		result[i] = MonthlyBucket{
			AnalysisID:            analysisID,
			YearMonth:             b.YearMonth,
			AvgFailureProbability: b.AvgFailureProbability,
			TotalEstimatedCost:    b.TotalEstimatedCost,
			AvgWeeklyScore:        b.AvgWeeklyScore,
			RecordCount:           int32(b.RecordCount),
		}
	}
	return result
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:    record.AnalysisID,
			BatchID:       record.BatchID,
			Source:        record.Source,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalRecords:  record.TotalRecords,
			TotalUnits:    record.TotalUnits,
			HighRiskUnits: record.HighRiskUnits,
			TotalCost:     record.TotalCost,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertScoredRecordRecords converts stored scored records for Parquet export.
func ConvertScoredRecordRecords(records []schema.ScoredRecordRecord) []ScoredRecord {
	result := make([]ScoredRecord, len(records))
	for i, record := range records {
		result[i] = ScoredRecord{
			AnalysisID:          record.AnalysisID,
			RowNumber:           record.RowNumber,
			UnitID:              record.UnitID,
			RecordDate:          record.RecordDate,
			WeeklyScore:         record.WeeklyScore,
			PredictedRisk:       record.PredictedRisk,
			RiskConfidence:      record.RiskConfidence,
			RiskLevel:           record.RiskLevel,
			EstimatedRepairCost: record.EstimatedRepairCost,
		}
	}
	return result
}

// ConvertMonthlyBucketRecords converts stored monthly buckets for Parquet export.
func ConvertMonthlyBucketRecords(records []schema.MonthlyBucketRecord) []MonthlyBucket {
	result := make([]MonthlyBucket, len(records))
	for i, record := range records {
		result[i] = MonthlyBucket{
			AnalysisID:            record.AnalysisID,
			YearMonth:             record.YearMonth,
			AvgFailureProbability: record.AvgFailureProbability,
			TotalEstimatedCost:    record.TotalEstimatedCost,
			AvgWeeklyScore:        record.AvgWeeklyScore,
			RecordCount:           record.RecordCount,
		}
	}
	return result
}
