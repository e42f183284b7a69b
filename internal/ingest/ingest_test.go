package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBatch(t *testing.T) {
	input := "unit_id,record_date,weekly_score,monthly_score,site\n" +
		"M-1,2024-01-08,28,110,north\n" +
		"M-2,garbage,62.5,240,\n"

	batch, err := ReadBatch(strings.NewReader(input), "fleet.csv")
	require.NoError(t, err)

	assert.Equal(t, "fleet.csv", batch.Source)
	assert.Equal(t, []string{"unit_id", "record_date", "weekly_score", "monthly_score", "site"}, batch.Columns)
	require.Equal(t, 2, batch.Len())

	first := batch.Records[0]
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "M-1", first.UnitID)
	assert.Equal(t, "2024-01-08", first.RecordDate)
	assert.Equal(t, "28", first.Value("weekly_score"))
	assert.Zero(t, first.WeeklyScore, "scores are parsed during scoring")
	assert.Equal(t, "110", first.Value("monthly_score"))
	assert.Equal(t, "north", first.Value("site"))

	second := batch.Records[1]
	assert.Equal(t, 2, second.Row)
	assert.Equal(t, "garbage", second.RecordDate, "malformed dates are kept raw")
	assert.Equal(t, "62.5", second.Value("weekly_score"))
	assert.Equal(t, "", second.Value("site"))
}

func TestReadBatchHeaderOnly(t *testing.T) {
	batch, err := ReadBatch(strings.NewReader("unit_id,record_date,weekly_score\n"), "empty.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, batch.Len())
}

func TestReadBatchStripsBOM(t *testing.T) {
	batch, err := ParseBatch([]byte("\uFEFFunit_id,record_date,weekly_score\nA,2024-01-01,1\n"), "bom.csv")
	require.NoError(t, err)
	assert.Equal(t, "unit_id", batch.Columns[0])
	assert.Equal(t, "A", batch.Records[0].UnitID)
}

func TestReadBatchLeavesColumnChecksToValidation(t *testing.T) {
	batch, err := ReadBatch(strings.NewReader("record_date,Weekly_Score\n2024-01-01,oops\n"), "partial.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"record_date", "Weekly_Score"}, batch.Columns)
	assert.False(t, batch.HasColumn("weekly_score"), "names are case-sensitive")
	assert.Equal(t, "", batch.Records[0].UnitID)
	assert.Equal(t, "oops", batch.Records[0].Value("Weekly_Score"))
}

func TestReadBatchMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"duplicate header", "unit_id,unit_id,record_date,weekly_score\n"},
		{"empty header", "unit_id,,record_date,weekly_score\n"},
		{"ragged row", "unit_id,record_date,weekly_score\nA,2024-01-01\n"},
		{"unterminated quote", "unit_id,record_date,weekly_score\n\"A,2024-01-01,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBatch(strings.NewReader(tt.input), "bad.csv")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedCSV), "got %v", err)
		})
	}
}

func TestReadScoredBatchNonNumericScoreNamesRow(t *testing.T) {
	input := "unit_id,record_date,weekly_score,predicted_risk,risk_confidence,risk_level,estimated_repair_cost\n" +
		"A,2024-01-01,1,0,0.1,Low Compliance Risk,200\n" +
		"B,2024-01-02,oops,0,0.1,Low Compliance Risk,200\n"
	_, err := ReadScoredBatch(strings.NewReader(input), "x.csv")
	assert.ErrorIs(t, err, ErrMalformedCSV)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "oops")
}

func TestReadScoredBatch(t *testing.T) {
	input := "unit_id,record_date,weekly_score,monthly_score,predicted_risk,risk_confidence,risk_level,estimated_repair_cost\n" +
		"M-1,2024-01-08,28,110,1,0.7333333333333333,HIGH RISK (Action Needed),1500\n" +
		"M-2,2024-01-09,62,240,0,0.1,Low Compliance Risk,200\n"

	scored, err := ReadScoredBatch(strings.NewReader(input), "predictions.csv")
	require.NoError(t, err)
	require.Len(t, scored.Records, 2)

	assert.Equal(t, schema.HighRisk, scored.Records[0].PredictedRisk)
	assert.Equal(t, 0.7333333333333333, scored.Records[0].RiskConfidence)
	assert.Equal(t, schema.HighRiskLabel, scored.Records[0].RiskLevel)
	assert.Equal(t, 1500.0, scored.Records[0].EstimatedRepairCost)
	assert.Equal(t, 28.0, scored.Records[0].WeeklyScore)

	assert.Equal(t, schema.LowRisk, scored.Records[1].PredictedRisk)
	assert.Equal(t, 200.0, scored.Records[1].EstimatedRepairCost)
}

func TestReadScoredBatchRequiresDerivedColumns(t *testing.T) {
	_, err := ReadScoredBatch(strings.NewReader("unit_id,record_date,weekly_score,predicted_risk\nA,2024-01-01,1,1\n"), "x.csv")
	var mfe *contract.MissingFeaturesError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, []string{"risk_confidence", "risk_level", "estimated_repair_cost"}, mfe.Missing)
}

func TestReadScoredBatchRequiresBaseColumns(t *testing.T) {
	input := "record_date,predicted_risk,risk_confidence,risk_level,estimated_repair_cost\n2024-01-01,1,0.9,x,1500\n"
	_, err := ReadScoredBatch(strings.NewReader(input), "x.csv")
	var mfe *contract.MissingFeaturesError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, []string{"unit_id", "weekly_score"}, mfe.Missing)
}

func TestReadScoredBatchInvalidClass(t *testing.T) {
	input := "unit_id,record_date,weekly_score,predicted_risk,risk_confidence,risk_level,estimated_repair_cost\n" +
		"A,2024-01-01,1,2,0.5,x,1\n"
	_, err := ReadScoredBatch(strings.NewReader(input), "x.csv")
	assert.ErrorIs(t, err, ErrMalformedCSV)
}

func TestReadSource(t *testing.T) {
	_, err := ReadSource("")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))
	data, err := ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	_, err = ReadSource(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
