package model

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Forest is an ensemble of decision trees whose leaf distributions are averaged.
type Forest struct {
	features []string
	classes  []int
	trees    []Tree
}

// NewForest validates the trees and normalizes every leaf into a probability distribution.
func NewForest(features []string, classes []int, trees []Tree) (*Forest, error) {
	if len(trees) == 0 {
		return nil, errors.New("forest has no trees")
	}
	normalized := make([]Tree, len(trees))
	for t, tree := range trees {
		nodes, err := validateTree(tree, len(features), len(classes))
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", t, err)
		}
		normalized[t] = Tree{Nodes: nodes}
	}
	return &Forest{
		features: slices.Clone(features),
		classes:  slices.Clone(classes),
		trees:    normalized,
	}, nil
}

// validateTree checks node references and leaf arity, returning a copy with normalized leaves.
// Children must point forward, which rules out cycles.
func validateTree(tree Tree, nFeatures, nClasses int) ([]Node, error) {
	if len(tree.Nodes) == 0 {
		return nil, errors.New("tree has no nodes")
	}
	nodes := make([]Node, len(tree.Nodes))
	for i, n := range tree.Nodes {
		if n.Leaf {
			if len(n.Value) != nClasses {
				return nil, fmt.Errorf("node %d: leaf has %d values, expected %d", i, len(n.Value), nClasses)
			}
			sum := 0.0
			for _, v := range n.Value {
				if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, fmt.Errorf("node %d: invalid leaf value %v", i, v)
				}
				sum += v
			}
			if sum == 0 {
				return nil, fmt.Errorf("node %d: leaf values sum to zero", i)
			}
			value := make([]float64, nClasses)
			for c, v := range n.Value {
				value[c] = v / sum
			}
			nodes[i] = Node{Leaf: true, Value: value}
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return nil, fmt.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		if math.IsNaN(n.Threshold) {
			return nil, fmt.Errorf("node %d: threshold is NaN", i)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(tree.Nodes) {
				return nil, fmt.Errorf("node %d: child index %d must be in (%d, %d)", i, child, i, len(tree.Nodes))
			}
		}
		nodes[i] = n
	}
	return nodes, nil
}

// Features implements the Classifier interface.
func (f *Forest) Features() []string { return slices.Clone(f.features) }

// Classes implements the Classifier interface.
func (f *Forest) Classes() []int { return slices.Clone(f.classes) }

// PredictProba averages the leaf distributions reached in every tree.
func (f *Forest) PredictProba(X [][]float64) ([][]float64, error) {
	if err := checkMatrix(X, len(f.features)); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		acc := make([]float64, len(f.classes))
		for _, tree := range f.trees {
			leaf := walk(tree.Nodes, row)
			for c, v := range leaf {
				acc[c] += v
			}
		}
		for c := range acc {
			acc[c] /= float64(len(f.trees))
		}
		out[i] = acc
	}
	return out, nil
}

// Predict returns the class with the highest averaged probability.
// Ties go to the lower column.
func (f *Forest) Predict(X [][]float64) ([]int, error) {
	proba, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	preds := make([]int, len(proba))
	for i, row := range proba {
		best := 0
		for c := 1; c < len(row); c++ {
			if row[c] > row[best] {
				best = c
			}
		}
		preds[i] = f.classes[best]
	}
	return preds, nil
}

func walk(nodes []Node, row []float64) []float64 {
	i := 0
	for !nodes[i].Leaf {
		n := nodes[i]
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return nodes[i].Value
}
