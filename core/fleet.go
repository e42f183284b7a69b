package core

import "github.com/maintinsight/maintinsight/schema"

// ComputeFleetSummary computes whole-batch statistics over every scored record,
// including those whose dates could not be parsed.
// Records with a blank unit_id count toward records, cost and compliance but not toward units.
func ComputeFleetSummary(records []schema.ScoredRecord) schema.FleetSummary {
	units := make(map[string]struct{})
	highRisk := make(map[string]struct{})
	var scoreSum, costSum float64

	for _, r := range records {
		if r.UnitID != "" {
			units[r.UnitID] = struct{}{}
			if r.PredictedRisk == schema.HighRisk {
				highRisk[r.UnitID] = struct{}{}
			}
		}
		scoreSum += r.WeeklyScore
		costSum += r.EstimatedRepairCost
	}

	summary := schema.FleetSummary{
		TotalRecords:  len(records),
		TotalUnits:    len(units),
		HighRiskUnits: len(highRisk),
		TotalCost:     costSum,
	}
	if summary.TotalUnits > 0 {
		summary.HighRiskShare = float64(summary.HighRiskUnits) / float64(summary.TotalUnits) * 100
	}
	if len(records) > 0 {
		summary.AvgCompliance = scoreSum / float64(len(records))
	}
	return summary
}
