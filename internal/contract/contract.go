// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/maintinsight/maintinsight/schema"
)

// Classifier is the pre-trained binary risk model.
// Implementations must be safe for concurrent read-only use.
type Classifier interface {
	// Features returns the ordered feature names the model was trained on.
	Features() []string

	// Classes returns the class label of each PredictProba column.
	Classes() []int

	// Predict returns one class label per row of X.
	Predict(X [][]float64) ([]int, error)

	// PredictProba returns one probability row per row of X, one column per class.
	PredictProba(X [][]float64) ([][]float64, error)
}

// Model is a Classifier whose artifact identity is known.
type Model interface {
	Classifier
	Fingerprint() string
	Info() schema.ModelInfo
}

// ModelProvider hands out the shared, lazily loaded model.
type ModelProvider interface {
	Model() (Model, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and their results.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(batchID, source string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, summary schema.RunSummary) error

	// RecordScoredRecords stores every scored record of a run
	RecordScoredRecords(analysisID int64, records []schema.ScoredRecord) error

	// RecordMonthlyBuckets stores the monthly aggregates of a run
	RecordMonthlyBuckets(analysisID int64, buckets []schema.MonthlyBucket) error

	// GetAllAnalysisRuns retrieves all analysis runs
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllScoredRecords retrieves all stored scored records
	GetAllScoredRecords() ([]schema.ScoredRecordRecord, error)

	// GetAllMonthlyBuckets retrieves all stored monthly buckets
	GetAllMonthlyBuckets() ([]schema.MonthlyBucketRecord, error)

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// Close closes the underlying connection
	Close() error
}
