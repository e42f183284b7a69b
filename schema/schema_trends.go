package schema

// MonthlyBucket holds the aggregates for one calendar month of scored records.
type MonthlyBucket struct {
	YearMonth             string  `json:"year_month"`              // YYYY-MM
	AvgFailureProbability float64 `json:"avg_failure_probability"` // Mean risk confidence as a percentage (0-100)
	TotalEstimatedCost    float64 `json:"total_estimated_cost"`    // Sum of estimated repair cost
	AvgWeeklyScore        float64 `json:"avg_weekly_score"`        // Mean compliance score
	RecordCount           int     `json:"record_count"`
}

// MonthlyValue is one row of a single-metric monthly table.
type MonthlyValue struct {
	YearMonth string  `json:"year_month"`
	Value     float64 `json:"value"`
}

// SkippedDate describes a record left out of monthly aggregation.
type SkippedDate struct {
	Row        int    `json:"row"`
	UnitID     string `json:"unit_id"`
	RecordDate string `json:"record_date"`
}

// MonthlyTrends is the output of the temporal aggregator.
// Buckets are unique per YearMonth and sorted ascending.
type MonthlyTrends struct {
	Buckets []MonthlyBucket `json:"buckets"`
	Skipped []SkippedDate   `json:"skipped,omitempty"`
}

// FailureProbability returns the monthly failure probability table.
func (mt MonthlyTrends) FailureProbability() []MonthlyValue {
	return mt.project(func(b MonthlyBucket) float64 { return b.AvgFailureProbability })
}

// EstimatedCost returns the monthly total estimated cost table.
func (mt MonthlyTrends) EstimatedCost() []MonthlyValue {
	return mt.project(func(b MonthlyBucket) float64 { return b.TotalEstimatedCost })
}

// Compliance returns the monthly average weekly score table.
func (mt MonthlyTrends) Compliance() []MonthlyValue {
	return mt.project(func(b MonthlyBucket) float64 { return b.AvgWeeklyScore })
}

func (mt MonthlyTrends) project(pick func(MonthlyBucket) float64) []MonthlyValue {
	out := make([]MonthlyValue, 0, len(mt.Buckets))
	for _, b := range mt.Buckets {
		out = append(out, MonthlyValue{YearMonth: b.YearMonth, Value: pick(b)})
	}
	return out
}

// FleetSummary holds whole-batch statistics independent of time bucketing.
type FleetSummary struct {
	TotalRecords  int     `json:"total_records"`
	TotalUnits    int     `json:"total_units"`
	HighRiskUnits int     `json:"high_risk_units"`
	HighRiskShare float64 `json:"high_risk_share"` // Percentage of units, 0 when there are no units
	AvgCompliance float64 `json:"avg_compliance"`  // 0 when there are no records
	TotalCost     float64 `json:"total_cost"`
}

// AnalysisResult bundles every view produced for one batch.
type AnalysisResult struct {
	BatchID string        `json:"batch_id"`
	Scored  *ScoredBatch  `json:"scored"`
	Trends  MonthlyTrends `json:"trends"`
	Summary FleetSummary  `json:"summary"`
	Cached  bool          `json:"cached"`
}
