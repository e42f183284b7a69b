package core

import (
	"testing"

	"github.com/maintinsight/maintinsight/schema"
	"github.com/stretchr/testify/assert"
)

func TestCostModel_Derive(t *testing.T) {
	cm := NewCostModel(1500, 200)

	label, cost := cm.Derive(schema.HighRisk)
	assert.Equal(t, "HIGH RISK (Action Needed)", label)
	assert.Equal(t, 1500.0, cost)

	label, cost = cm.Derive(schema.LowRisk)
	assert.Equal(t, "Low Compliance Risk", label)
	assert.Equal(t, 200.0, cost)
}

func TestCostModel_ConfiguredCosts(t *testing.T) {
	cm := NewCostModel(999.5, 0)
	_, high := cm.Derive(schema.HighRisk)
	_, low := cm.Derive(schema.LowRisk)
	assert.Equal(t, 999.5, high)
	assert.Equal(t, 0.0, low)

	h, l := cm.Costs()
	assert.Equal(t, 999.5, h)
	assert.Equal(t, 0.0, l)
}

func TestCostModel_OutOfDomainPanics(t *testing.T) {
	cm := NewCostModel(1500, 200)
	assert.Panics(t, func() { cm.Derive(schema.RiskClass(2)) })
}

func TestCostModel_Apply(t *testing.T) {
	records := []schema.ScoredRecord{
		{PredictedRisk: schema.HighRisk},
		{PredictedRisk: schema.LowRisk},
		{PredictedRisk: schema.HighRisk},
	}
	NewCostModel(1500, 200).Apply(records)

	for _, r := range records {
		if r.PredictedRisk == schema.HighRisk {
			assert.Equal(t, schema.HighRiskLabel, r.RiskLevel)
			assert.Equal(t, 1500.0, r.EstimatedRepairCost)
		} else {
			assert.Equal(t, schema.LowRiskLabel, r.RiskLevel)
			assert.Equal(t, 200.0, r.EstimatedRepairCost)
		}
	}
}
