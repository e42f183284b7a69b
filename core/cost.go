package core

import (
	"fmt"

	"github.com/maintinsight/maintinsight/schema"
)

// RiskPolicy is the label and repair cost attached to one risk class.
type RiskPolicy struct {
	Label string
	Cost  float64
}

// CostModel maps each risk class to its policy.
type CostModel struct {
	policies map[schema.RiskClass]RiskPolicy
}

// NewCostModel builds the policy table for the two risk classes.
func NewCostModel(highRiskCost, lowRiskCost float64) CostModel {
	return CostModel{
		policies: map[schema.RiskClass]RiskPolicy{
			schema.HighRisk: {Label: schema.HighRiskLabel, Cost: highRiskCost},
			schema.LowRisk:  {Label: schema.LowRiskLabel, Cost: lowRiskCost},
		},
	}
}

// Derive returns the label and cost for class.
// It panics for a class outside the policy table.
func (cm CostModel) Derive(class schema.RiskClass) (string, float64) {
	p, ok := cm.policies[class]
	if !ok {
		panic(fmt.Sprintf("core: no cost policy for risk class %d", class))
	}
	return p.Label, p.Cost
}

// Apply fills RiskLevel and EstimatedRepairCost on every record in place.
func (cm CostModel) Apply(records []schema.ScoredRecord) {
	for i := range records {
		records[i].RiskLevel, records[i].EstimatedRepairCost = cm.Derive(records[i].PredictedRisk)
	}
}

// Costs returns the high and low risk costs, used as cache key material.
func (cm CostModel) Costs() (high, low float64) {
	return cm.policies[schema.HighRisk].Cost, cm.policies[schema.LowRisk].Cost
}
