package model

import (
	"fmt"
	"math"
	"slices"
)

const defaultLogisticThreshold = 0.5

// Logistic is a binary logistic regression over named features.
type Logistic struct {
	features  []string
	classes   []int
	intercept float64
	weights   []float64 // Aligned with features
	threshold float64
}

// NewLogistic validates the coefficients against the feature list.
// Features without a coefficient get weight 0.
func NewLogistic(features []string, classes []int, p LogisticParams) (*Logistic, error) {
	index := make(map[string]int, len(features))
	for i, f := range features {
		index[f] = i
	}
	weights := make([]float64, len(features))
	for name, w := range p.Coefficients {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("coefficient for unknown feature %q", name)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("coefficient for %q is not finite", name)
		}
		weights[i] = w
	}
	if math.IsNaN(p.Intercept) || math.IsInf(p.Intercept, 0) {
		return nil, fmt.Errorf("intercept is not finite")
	}
	threshold := p.Threshold
	if threshold == 0 {
		threshold = defaultLogisticThreshold
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("threshold must be in (0, 1), got %v", threshold)
	}
	return &Logistic{
		features:  slices.Clone(features),
		classes:   slices.Clone(classes),
		intercept: p.Intercept,
		weights:   weights,
		threshold: threshold,
	}, nil
}

// Features implements the Classifier interface.
func (l *Logistic) Features() []string { return slices.Clone(l.features) }

// Classes implements the Classifier interface.
func (l *Logistic) Classes() []int { return slices.Clone(l.classes) }

// PredictProba returns P(class) laid out in Classes order.
func (l *Logistic) PredictProba(X [][]float64) ([][]float64, error) {
	if err := checkMatrix(X, len(l.features)); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		p1 := l.positive(row)
		probs := make([]float64, len(l.classes))
		for c, label := range l.classes {
			if label == 1 {
				probs[c] = p1
			} else {
				probs[c] = 1 - p1
			}
		}
		out[i] = probs
	}
	return out, nil
}

// Predict returns 1 when P(class 1) reaches the threshold.
func (l *Logistic) Predict(X [][]float64) ([]int, error) {
	if err := checkMatrix(X, len(l.features)); err != nil {
		return nil, err
	}
	preds := make([]int, len(X))
	for i, row := range X {
		if l.positive(row) >= l.threshold {
			preds[i] = 1
		}
	}
	return preds, nil
}

func (l *Logistic) positive(row []float64) float64 {
	z := l.intercept
	for j, x := range row {
		z += l.weights[j] * x
	}
	return 1 / (1 + math.Exp(-z))
}
