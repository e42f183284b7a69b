package core

import (
	"testing"

	"github.com/maintinsight/maintinsight/internal/ingest"
	"github.com/maintinsight/maintinsight/internal/model"
	"github.com/maintinsight/maintinsight/schema"
	"github.com/stretchr/testify/require"
)

// testModelYAML flags weekly_score <= 37 as high risk with p1 = 0.9, otherwise p1 = 0.2.
const testModelYAML = `
name: core-test
kind: forest
features: [weekly_score, monthly_score]
classes: [0, 1]
trees:
  - nodes:
      - {feature: 0, threshold: 37, left: 1, right: 2}
      - {leaf: true, value: [1, 9]}
      - {leaf: true, value: [8, 2]}
`

const fleetCSV = `unit_id,record_date,weekly_score,monthly_score,site
M-001,2024-01-08,28,110,north
M-002,2024-01-09,62,240,north
M-003,2024-01-15,41,140,south
M-001,2024-02-05,33,105,north
M-002,2024-02-12,70,260,north
M-004,2024-02-20,18,80,east
M-005,not-a-date,58,210,west
`

func testModel(t *testing.T) *model.Model {
	t.Helper()
	m, err := model.Parse([]byte(testModelYAML), "core-test.yaml")
	require.NoError(t, err)
	return m
}

func testBatch(t *testing.T, csvText string) *schema.Batch {
	t.Helper()
	batch, err := ingest.ParseBatch([]byte(csvText), "test.csv")
	require.NoError(t, err)
	return batch
}

func defaultCosts() CostModel {
	return NewCostModel(1500, 200)
}

// scored builds a priced record without going through a classifier.
func scored(unit, date string, weekly float64, class schema.RiskClass, confidence float64) schema.ScoredRecord {
	label, cost := defaultCosts().Derive(class)
	return schema.ScoredRecord{
		Record: schema.Record{
			UnitID:      unit,
			RecordDate:  date,
			WeeklyScore: weekly,
		},
		PredictedRisk:       class,
		RiskConfidence:      confidence,
		RiskLevel:           label,
		EstimatedRepairCost: cost,
	}
}
