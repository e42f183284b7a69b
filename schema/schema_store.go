package schema

import "time"

// RunSummary is the completion data written when a tracked run ends.
type RunSummary struct {
	TotalRecords  int
	TotalUnits    int
	HighRiskUnits int
	TotalCost     float64
}

// AnalysisRunRecord represents a row from the maintinsight_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID    int64
	BatchID       string
	Source        string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRecords  int32
	TotalUnits    int32
	HighRiskUnits int32
	TotalCost     float64
	ConfigParams  *string
}

// ScoredRecordRecord represents a row from the maintinsight_scored_records table.
type ScoredRecordRecord struct {
	AnalysisID          int64
	RowNumber           int32
	UnitID              string
	RecordDate          string
	WeeklyScore         float64
	PredictedRisk       int32
	RiskConfidence      float64
	RiskLevel           string
	EstimatedRepairCost float64
}

// MonthlyBucketRecord represents a row from the maintinsight_monthly_buckets table.
type MonthlyBucketRecord struct {
	AnalysisID            int64
	YearMonth             string
	AvgFailureProbability float64
	TotalEstimatedCost    float64
	AvgWeeklyScore        float64
	RecordCount           int32
}
