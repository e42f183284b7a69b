package core

import (
	"testing"

	"github.com/maintinsight/maintinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordDate(t *testing.T) {
	tests := []struct {
		raw   string
		month string
		ok    bool
	}{
		{"2024-01-08", "2024-01", true},
		{" 2024-02-29 ", "2024-02", true},
		{"2024-03-01T10:00:00Z", "2024-03", true},
		{"2024-03-31T23:30:00-05:00", "2024-03", true},
		{"2024-04-01 08:15:00", "2024-04", true},
		{"2024-04-01T08:15:00", "2024-04", true},
		{"2024/05/06", "2024-05", true},
		{"06/07/2024", "2024-06", true},
		{"6/7/2024", "2024-06", true},
		{"2024-08", "2024-08", true},
		{"not-a-date", "", false},
		{"", "", false},
		{"2024-13-01", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			parsed, ok := ParseRecordDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.month, parsed.Format(schema.YearMonthLayout))
			}
		})
	}
}

func TestAggregateMonthly(t *testing.T) {
	records := []schema.ScoredRecord{
		scored("A", "2024-02-03", 30, schema.HighRisk, 0.8),
		scored("A", "2024-01-10", 20, schema.HighRisk, 0.9),
		scored("B", "2024-01-20", 60, schema.LowRisk, 0.1),
		scored("C", "not-a-date", 50, schema.LowRisk, 0.3),
	}

	trends := AggregateMonthly(records)
	require.Len(t, trends.Buckets, 2)

	jan := trends.Buckets[0]
	assert.Equal(t, "2024-01", jan.YearMonth)
	assert.InDelta(t, 50.0, jan.AvgFailureProbability, 1e-9)
	assert.Equal(t, 1700.0, jan.TotalEstimatedCost)
	assert.InDelta(t, 40.0, jan.AvgWeeklyScore, 1e-9)
	assert.Equal(t, 2, jan.RecordCount)

	feb := trends.Buckets[1]
	assert.Equal(t, "2024-02", feb.YearMonth)
	assert.InDelta(t, 80.0, feb.AvgFailureProbability, 1e-9)
	assert.Equal(t, 1500.0, feb.TotalEstimatedCost)

	require.Len(t, trends.Skipped, 1)
	assert.Equal(t, "C", trends.Skipped[0].UnitID)
	assert.Equal(t, "not-a-date", trends.Skipped[0].RecordDate)

	warnings := DateWarnings(trends)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), "not-a-date")
}

func TestAggregateMonthly_Tables(t *testing.T) {
	records := []schema.ScoredRecord{
		scored("A", "2024-01-10", 20, schema.HighRisk, 0.9),
		scored("B", "2024-03-20", 60, schema.LowRisk, 0.1),
	}
	trends := AggregateMonthly(records)

	prob := trends.FailureProbability()
	cost := trends.EstimatedCost()
	comp := trends.Compliance()
	require.Len(t, prob, 2)
	require.Len(t, cost, 2)
	require.Len(t, comp, 2)
	assert.Equal(t, "2024-01", prob[0].YearMonth)
	assert.InDelta(t, 90.0, prob[0].Value, 1e-9)
	assert.Equal(t, 200.0, cost[1].Value)
	assert.Equal(t, 60.0, comp[1].Value)
}

func TestAggregateMonthly_UniqueBucketsInRange(t *testing.T) {
	batch := testBatch(t, fleetCSV)
	records, err := ScoreBatch(batch, testModel(t))
	require.NoError(t, err)
	defaultCosts().Apply(records)

	trends := AggregateMonthly(records)
	seen := make(map[string]bool)
	for i, b := range trends.Buckets {
		assert.False(t, seen[b.YearMonth], "duplicate bucket %s", b.YearMonth)
		seen[b.YearMonth] = true
		assert.GreaterOrEqual(t, b.AvgFailureProbability, 0.0)
		assert.LessOrEqual(t, b.AvgFailureProbability, 100.0)
		if i > 0 {
			assert.Less(t, trends.Buckets[i-1].YearMonth, b.YearMonth)
		}
	}
}

func TestAggregateMonthly_Empty(t *testing.T) {
	trends := AggregateMonthly(nil)
	assert.NotNil(t, trends.Buckets)
	assert.Empty(t, trends.Buckets)
	assert.Empty(t, trends.Skipped)
	assert.Empty(t, trends.FailureProbability())
	assert.Nil(t, DateWarnings(trends))
}
