package core

import (
	"fmt"
	"math"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
)

// ScoreBatch classifies every record of the batch in a single classifier call.
// Confidence is read from the probability column whose class label is 1.
// Any failure, including a feature or weekly_score cell that is not a finite number,
// yields *contract.ScoringError and no records.
// RiskLevel and EstimatedRepairCost are left for the CostModel.
func ScoreBatch(batch *schema.Batch, clf contract.Classifier) ([]schema.ScoredRecord, error) {
	if len(batch.Records) == 0 {
		return []schema.ScoredRecord{}, nil
	}

	weekly, err := parseWeeklyScores(batch.Records)
	if err != nil {
		return nil, err
	}
	features := clf.Features()
	X, err := buildFeatureMatrix(batch.Records, features)
	if err != nil {
		return nil, err
	}

	positive, err := positiveColumn(clf.Classes())
	if err != nil {
		return nil, err
	}

	preds, err := clf.Predict(X)
	if err != nil {
		return nil, &contract.ScoringError{Reason: "predict", Err: err}
	}
	proba, err := clf.PredictProba(X)
	if err != nil {
		return nil, &contract.ScoringError{Reason: "predict probabilities", Err: err}
	}
	if len(preds) != len(X) || len(proba) != len(X) {
		return nil, &contract.ScoringError{
			Reason: fmt.Sprintf("classifier returned %d predictions and %d probability rows for %d records", len(preds), len(proba), len(X)),
		}
	}

	scored := make([]schema.ScoredRecord, len(batch.Records))
	for i, rec := range batch.Records {
		class, ok := toRiskClass(preds[i])
		if !ok {
			return nil, &contract.ScoringError{Reason: fmt.Sprintf("row %d: predicted class %d is not binary", rec.Row, preds[i])}
		}
		if len(proba[i]) <= positive {
			return nil, &contract.ScoringError{Reason: fmt.Sprintf("row %d: probability row has %d columns", rec.Row, len(proba[i]))}
		}
		p := proba[i][positive]
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, &contract.ScoringError{Reason: fmt.Sprintf("row %d: probability %v outside [0, 1]", rec.Row, p)}
		}
		rec.WeeklyScore = weekly[i]
		scored[i] = schema.ScoredRecord{
			Record:         rec,
			PredictedRisk:  class,
			RiskConfidence: p,
		}
	}
	return scored, nil
}

// buildFeatureMatrix lays out feature values in the classifier's declared order.
func buildFeatureMatrix(records []schema.Record, features []string) ([][]float64, error) {
	X := make([][]float64, len(records))
	for i, rec := range records {
		row := make([]float64, len(features))
		for j, name := range features {
			v, err := numericCell(rec, name)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}
		X[i] = row
	}
	return X, nil
}

// parseWeeklyScores reads the compliance score of every record.
func parseWeeklyScores(records []schema.Record) ([]float64, error) {
	scores := make([]float64, len(records))
	for i, rec := range records {
		v, err := numericCell(rec, schema.WeeklyScoreColumn)
		if err != nil {
			return nil, err
		}
		scores[i] = v
	}
	return scores, nil
}

// numericCell parses one cell as a finite float.
func numericCell(rec schema.Record, column string) (float64, error) {
	raw, ok := rec.Fields[column]
	if !ok {
		return 0, &contract.ScoringError{Reason: fmt.Sprintf("row %d: column %s is absent", rec.Row, column)}
	}
	v, err := schema.ParseNumber(raw)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &contract.ScoringError{Reason: fmt.Sprintf("row %d: column %s: %q is not a finite number", rec.Row, column, raw)}
	}
	return v, nil
}

// positiveColumn finds the probability column bound to class label 1.
func positiveColumn(classes []int) (int, error) {
	for i, c := range classes {
		if c == int(schema.HighRisk) {
			return i, nil
		}
	}
	return 0, &contract.ScoringError{Reason: fmt.Sprintf("classifier classes %v do not include 1", classes)}
}

func toRiskClass(label int) (schema.RiskClass, bool) {
	switch label {
	case int(schema.LowRisk):
		return schema.LowRisk, true
	case int(schema.HighRisk):
		return schema.HighRisk, true
	default:
		return schema.LowRisk, false
	}
}
