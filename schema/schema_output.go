package schema

// EnrichedScoredRecord adds presentation data to a ScoredRecord.
type EnrichedScoredRecord struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	ScoredRecord
}

// GetComplianceLabel returns a plain text label for a weekly score
// relative to the compliance threshold.
func GetComplianceLabel(score, threshold float64) string {
	switch {
	case score < threshold:
		return "Below Target"
	case score < threshold*1.5:
		return "Watch"
	default:
		return "On Track"
	}
}

// EnrichRecords adds rank and compliance label to a list of scored records.
// Records keep their input order; rank is the 1-based position.
func EnrichRecords(records []ScoredRecord, threshold float64) []EnrichedScoredRecord {
	output := make([]EnrichedScoredRecord, len(records))
	for i, r := range records {
		output[i] = EnrichedScoredRecord{
			Rank:         i + 1,
			Label:        GetComplianceLabel(r.WeeklyScore, threshold),
			ScoredRecord: r,
		}
	}
	return output
}

// FilterHighRisk returns only the records predicted as HighRisk.
func FilterHighRisk(records []ScoredRecord) []ScoredRecord {
	var out []ScoredRecord
	for _, r := range records {
		if r.PredictedRisk == HighRisk {
			out = append(out, r)
		}
	}
	return out
}

// AnalysisReport is the serialized form of an AnalysisResult used by JSON output,
// the HTTP service and the MCP tools.
type AnalysisReport struct {
	BatchID             string                 `json:"batch_id"`
	Source              string                 `json:"source"`
	Cached              bool                   `json:"cached"`
	ComplianceThreshold float64                `json:"compliance_threshold"`
	Summary             FleetSummary           `json:"summary"`
	Trends              []MonthlyBucket        `json:"trends"`
	Skipped             []SkippedDate          `json:"skipped_dates,omitempty"`
	Records             []EnrichedScoredRecord `json:"records,omitempty"`
}

// NewAnalysisReport builds the report view of result.
// Records are included only when includeRecords is set.
func NewAnalysisReport(result *AnalysisResult, threshold float64, includeRecords bool) AnalysisReport {
	report := AnalysisReport{
		BatchID:             result.BatchID,
		Cached:              result.Cached,
		ComplianceThreshold: threshold,
		Summary:             result.Summary,
		Trends:              result.Trends.Buckets,
		Skipped:             result.Trends.Skipped,
	}
	if result.Scored != nil {
		report.Source = result.Scored.Source
		if includeRecords {
			report.Records = EnrichRecords(result.Scored.Records, threshold)
		}
	}
	if report.Trends == nil {
		report.Trends = []MonthlyBucket{}
	}
	return report
}
