package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// ModelKind represents the family of a classifier artifact.
	ModelKind string
)

// RiskClass is the binary output of the classifier.
type RiskClass int

// Risk classes produced by the classifier.
const (
	LowRisk  RiskClass = 0
	HighRisk RiskClass = 1
)

// Input columns every upload must carry.
const (
	UnitIDColumn      = "unit_id"
	RecordDateColumn  = "record_date"
	WeeklyScoreColumn = "weekly_score"
)

// Derived columns appended to the scored table, in export order.
const (
	PredictedRiskColumn       = "predicted_risk"
	RiskConfidenceColumn      = "risk_confidence"
	RiskLevelColumn           = "risk_level"
	EstimatedRepairCostColumn = "estimated_repair_cost"
)

// BaseColumns are required by ingestion regardless of the loaded model.
var BaseColumns = []string{UnitIDColumn, RecordDateColumn, WeeklyScoreColumn}

// DerivedColumns lists the scoring columns in their stable export order.
var DerivedColumns = []string{
	PredictedRiskColumn,
	RiskConfidenceColumn,
	RiskLevelColumn,
	EstimatedRepairCostColumn,
}

// Risk labels attached by the cost policy.
const (
	HighRiskLabel = "HIGH RISK (Action Needed)"
	LowRiskLabel  = "Low Compliance Risk"
)

// YearMonthLayout is the bucket key format for monthly aggregation.
const YearMonthLayout = "2006-01"

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	PromOut    OutputMode = "prom" // fleet summary only
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All classifier families supported by the artifact loader.
const (
	ForestModel   ModelKind = "forest"
	LogisticModel ModelKind = "logistic"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
	PromOut:    {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidModelKinds lists all valid classifier families.
var ValidModelKinds = map[ModelKind]struct{}{
	ForestModel:   {},
	LogisticModel: {},
}
