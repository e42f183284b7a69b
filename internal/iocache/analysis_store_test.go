package iocache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/maintinsight/maintinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []schema.ScoredRecord {
	return []schema.ScoredRecord{
		{
			Record:              schema.Record{Row: 1, UnitID: "M-001", RecordDate: "2024-01-05", WeeklyScore: 30},
			PredictedRisk:       schema.HighRisk,
			RiskConfidence:      0.9,
			RiskLevel:           schema.HighRiskLabel,
			EstimatedRepairCost: 1500,
		},
		{
			Record:              schema.Record{Row: 2, UnitID: "M-002", RecordDate: "not-a-date", WeeklyScore: 55},
			PredictedRisk:       schema.LowRisk,
			RiskConfidence:      0.2,
			RiskLevel:           schema.LowRiskLabel,
			EstimatedRepairCost: 200,
		},
	}
}

func sampleBuckets() []schema.MonthlyBucket {
	return []schema.MonthlyBucket{
		{YearMonth: "2024-01", AvgFailureProbability: 90, TotalEstimatedCost: 1500, AvgWeeklyScore: 30, RecordCount: 1},
	}
}

// newSQLiteAnalysisStore returns an in-memory store closed at test end.
func newSQLiteAnalysisStore(t *testing.T) *AnalysisStoreImpl {
	t.Helper()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	impl, ok := store.(*AnalysisStoreImpl)
	require.True(t, ok)
	return impl
}

func TestAnalysisStore_NoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	// BeginAnalysis should return 0 for NoneBackend
	analysisID, err := store.BeginAnalysis("batch", "fleet.csv", time.Now(), map[string]any{"test": "value"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), analysisID)

	// Other operations should not error
	assert.NoError(t, store.RecordScoredRecords(1, sampleRecords()))
	assert.NoError(t, store.RecordMonthlyBuckets(1, sampleBuckets()))
	assert.NoError(t, store.EndAnalysis(1, time.Now(), schema.RunSummary{TotalRecords: 2}))

	runs, err := store.GetAllAnalysisRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestAnalysisStore_FullRun(t *testing.T) {
	store := newSQLiteAnalysisStore(t)

	startTime := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	params := map[string]any{"high_risk_cost": 1500.0, "low_risk_cost": 200.0}
	analysisID, err := store.BeginAnalysis("batch-1", "fleet.csv", startTime, params)
	require.NoError(t, err)
	assert.Greater(t, analysisID, int64(0))

	require.NoError(t, store.RecordScoredRecords(analysisID, sampleRecords()))
	require.NoError(t, store.RecordMonthlyBuckets(analysisID, sampleBuckets()))

	endTime := startTime.Add(1500 * time.Millisecond)
	summary := schema.RunSummary{TotalRecords: 2, TotalUnits: 2, HighRiskUnits: 1, TotalCost: 1700}
	require.NoError(t, store.EndAnalysis(analysisID, endTime, summary))

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, analysisID, run.AnalysisID)
	assert.Equal(t, "batch-1", run.BatchID)
	assert.Equal(t, "fleet.csv", run.Source)
	assert.True(t, startTime.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	assert.True(t, endTime.Equal(*run.EndTime))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalRecords)
	assert.Equal(t, int32(2), run.TotalUnits)
	assert.Equal(t, int32(1), run.HighRiskUnits)
	assert.Equal(t, 1700.0, run.TotalCost)
	require.NotNil(t, run.ConfigParams)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(*run.ConfigParams), &decoded))
	assert.Equal(t, 1500.0, decoded["high_risk_cost"])

	records, err := store.GetAllScoredRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, schema.ScoredRecordRecord{
		AnalysisID:          analysisID,
		RowNumber:           1,
		UnitID:              "M-001",
		RecordDate:          "2024-01-05",
		WeeklyScore:         30,
		PredictedRisk:       1,
		RiskConfidence:      0.9,
		RiskLevel:           schema.HighRiskLabel,
		EstimatedRepairCost: 1500,
	}, records[0])
	assert.Equal(t, "not-a-date", records[1].RecordDate)

	buckets, err := store.GetAllMonthlyBuckets()
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, schema.MonthlyBucketRecord{
		AnalysisID:            analysisID,
		YearMonth:             "2024-01",
		AvgFailureProbability: 90,
		TotalEstimatedCost:    1500,
		AvgWeeklyScore:        30,
		RecordCount:           1,
	}, buckets[0])
}

func TestAnalysisStore_UnfinishedRun(t *testing.T) {
	store := newSQLiteAnalysisStore(t)

	_, err := store.BeginAnalysis("batch-1", "stdin", time.Now(), nil)
	require.NoError(t, err)

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Equal(t, int32(0), runs[0].TotalRecords)
}

func TestAnalysisStore_EndUnknownRun(t *testing.T) {
	store := newSQLiteAnalysisStore(t)

	err := store.EndAnalysis(42, time.Now(), schema.RunSummary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get start_time for analysis 42")
}

func TestAnalysisStore_DuplicateRowRollsBack(t *testing.T) {
	store := newSQLiteAnalysisStore(t)

	id, err := store.BeginAnalysis("batch-1", "fleet.csv", time.Now(), nil)
	require.NoError(t, err)

	records := sampleRecords()
	records[1].Row = records[0].Row
	require.Error(t, store.RecordScoredRecords(id, records))

	stored, err := store.GetAllScoredRecords()
	require.NoError(t, err)
	assert.Empty(t, stored, "a failed batch insert must not leave partial rows")
}

func TestAnalysisStore_MultipleRunsAndStatus(t *testing.T) {
	store := newSQLiteAnalysisStore(t)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	var ids []int64
	for i := range 3 {
		start := base.Add(time.Duration(i) * time.Hour)
		id, err := store.BeginAnalysis("batch", "fleet.csv", start, nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordScoredRecords(id, sampleRecords()))
		require.NoError(t, store.EndAnalysis(id, start.Add(time.Second), schema.RunSummary{TotalRecords: 2}))
		ids = append(ids, id)
	}

	// IDs increase with each run
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, ids[2], status.LastRunID)
	assert.True(t, base.Add(2*time.Hour).Equal(status.LastRunTime))
	assert.True(t, base.Equal(status.OldestRunTime))
	assert.Equal(t, 6, status.TotalRecordsAnalyzed)
	assert.Equal(t, int64(3), status.TableSizes[analysisRunsTable])
	assert.Equal(t, int64(6), status.TableSizes[scoredRecordsTable])
	assert.Equal(t, int64(0), status.TableSizes[monthlyBucketsTable])
}

func TestGetCreateAnalysisTableQuery(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains string
	}{
		{backend: schema.SQLiteBackend, contains: "INTEGER PRIMARY KEY AUTOINCREMENT"},
		{backend: schema.MySQLBackend, contains: "BIGINT AUTO_INCREMENT PRIMARY KEY"},
		{backend: schema.PostgreSQLBackend, contains: "BIGSERIAL PRIMARY KEY"},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Contains(t, getCreateAnalysisTableQuery(analysisRunsTable, tt.backend), tt.contains)
			assert.Contains(t, getCreateAnalysisTableQuery(scoredRecordsTable, tt.backend), "PRIMARY KEY (analysis_id, row_num)")
			assert.Contains(t, getCreateAnalysisTableQuery(monthlyBucketsTable, tt.backend), "PRIMARY KEY (analysis_id, bucket_month)")
		})
	}
}
