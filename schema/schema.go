// Package schema has models and constants for all parts of maintinsight.
package schema

// Record is one maintenance observation from an uploaded batch.
// Fields keeps every raw cell by column name so that classifier features and
// columns unknown to the pipeline survive export unchanged.
type Record struct {
	Row         int               `json:"row"`         // 1-based data row in the source file
	UnitID      string            `json:"unit_id"`     // Opaque unit identifier, repeats across dates
	RecordDate  string            `json:"record_date"` // Raw date cell, may be malformed
	WeeklyScore float64           `json:"weekly_score"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// Value returns the raw cell for column, or "" if absent.
func (r Record) Value(column string) string {
	return r.Fields[column]
}

// Batch is an uploaded record set with its original column order.
type Batch struct {
	Source  string   `json:"source"`
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// Len returns the number of records in the batch.
func (b *Batch) Len() int {
	return len(b.Records)
}

// HasColumn reports whether the batch header contains column.
func (b *Batch) HasColumn(column string) bool {
	for _, c := range b.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// ScoredRecord is a Record augmented with classifier output and derived cost fields.
// RiskLevel and EstimatedRepairCost depend on PredictedRisk only.
type ScoredRecord struct {
	Record
	PredictedRisk       RiskClass `json:"predicted_risk"`
	RiskConfidence      float64   `json:"risk_confidence"` // P(class == 1), in [0, 1]
	RiskLevel           string    `json:"risk_level"`
	EstimatedRepairCost float64   `json:"estimated_repair_cost"`
}

// ScoredBatch pairs the scored records with the original column order for export.
type ScoredBatch struct {
	Source  string         `json:"source"`
	Columns []string       `json:"columns"`
	Records []ScoredRecord `json:"records"`
}

// ExportColumns returns the original columns followed by the derived columns.
// Derived names already present in the source (a re-ingested export) are not repeated.
func (sb *ScoredBatch) ExportColumns() []string {
	derived := make(map[string]struct{}, len(DerivedColumns))
	for _, c := range DerivedColumns {
		derived[c] = struct{}{}
	}
	cols := make([]string, 0, len(sb.Columns)+len(DerivedColumns))
	for _, c := range sb.Columns {
		if _, ok := derived[c]; ok {
			continue
		}
		cols = append(cols, c)
	}
	return append(cols, DerivedColumns...)
}
