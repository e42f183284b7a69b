package model

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singleTreeYAML = `
name: test-rf
kind: forest
features: [weekly_score, monthly_score]
classes: [0, 1]
trees:
  - nodes:
      - {feature: 0, threshold: 37, left: 1, right: 2}
      - {leaf: true, value: [1, 9]}
      - {leaf: true, value: [8, 2]}
`

const logisticJSON = `{
  "name": "test-lr",
  "kind": "logistic",
  "features": ["weekly_score"],
  "classes": [0, 1],
  "logistic": {"intercept": 0, "coefficients": {"weekly_score": -0.1}}
}`

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadForest(t *testing.T) {
	m, err := Load(writeArtifact(t, "model.yaml", singleTreeYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"weekly_score", "monthly_score"}, m.Features())
	assert.Equal(t, []int{0, 1}, m.Classes())

	X := [][]float64{{20, 0}, {50, 0}, {37, 999}}
	proba, err := m.PredictProba(X)
	require.NoError(t, err)
	require.Len(t, proba, 3)
	assert.InDeltaSlice(t, []float64{0.1, 0.9}, proba[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0.8, 0.2}, proba[1], 1e-12)
	assert.InDeltaSlice(t, []float64{0.1, 0.9}, proba[2], 1e-12, "threshold is inclusive on the left")

	preds, err := m.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1}, preds)

	info := m.Info()
	assert.Equal(t, "test-rf", info.Name)
	assert.Equal(t, schema.ForestModel, info.Kind)
	assert.Equal(t, 1, info.Trees)
	assert.Len(t, info.Fingerprint, 64)
}

func TestForestAveragesTrees(t *testing.T) {
	trees := []Tree{
		{Nodes: []Node{
			{Feature: 0, Threshold: 37, Left: 1, Right: 2},
			{Leaf: true, Value: []float64{0.1, 0.9}},
			{Leaf: true, Value: []float64{0.8, 0.2}},
		}},
		{Nodes: []Node{{Leaf: true, Value: []float64{5, 5}}}},
	}
	f, err := NewForest([]string{"weekly_score"}, []int{0, 1}, trees)
	require.NoError(t, err)

	proba, err := f.PredictProba([][]float64{{10}, {90}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.3, 0.7}, proba[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0.65, 0.35}, proba[1], 1e-12)
}

func TestForestTieGoesToLowerColumn(t *testing.T) {
	trees := []Tree{{Nodes: []Node{{Leaf: true, Value: []float64{1, 1}}}}}

	f, err := NewForest([]string{"x"}, []int{1, 0}, trees)
	require.NoError(t, err)
	preds, err := f.Predict([][]float64{{0}})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, preds)

	f, err = NewForest([]string{"x"}, []int{0, 1}, trees)
	require.NoError(t, err)
	preds, err = f.Predict([][]float64{{0}})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, preds)
}

func TestForestRejectsWrongRowWidth(t *testing.T) {
	m, err := Parse([]byte(singleTreeYAML), "inline")
	require.NoError(t, err)

	_, err = m.PredictProba([][]float64{{1}})
	assert.Error(t, err)
	_, err = m.Predict([][]float64{{1, 2, 3}})
	assert.Error(t, err)
}

func TestLoadLogisticJSON(t *testing.T) {
	m, err := Load(writeArtifact(t, "model.json", logisticJSON))
	require.NoError(t, err)
	assert.Equal(t, schema.LogisticModel, m.Info().Kind)

	proba, err := m.PredictProba([][]float64{{0}, {37}})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, proba[0][1], 1e-12)
	assert.InDelta(t, 0.5, proba[0][0], 1e-12)
	assert.InDelta(t, 0.024127, proba[1][1], 1e-6)
	assert.InDelta(t, 1.0, proba[1][0]+proba[1][1], 1e-12)

	preds, err := m.Predict([][]float64{{0}, {37}, {-10}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1}, preds)
}

func TestLogisticReversedClasses(t *testing.T) {
	l, err := NewLogistic([]string{"x"}, []int{1, 0}, LogisticParams{Intercept: 2})
	require.NoError(t, err)
	proba, err := l.PredictProba([][]float64{{0}})
	require.NoError(t, err)
	assert.Greater(t, proba[0][0], proba[0][1], "class 1 lives in column 0")
}

func TestLoadInvalidArtifacts(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "::: not yaml :::\n\t- ["},
		{"unknown kind", "kind: svm\nfeatures: [a]\nclasses: [0, 1]\n"},
		{"no features", "kind: forest\nclasses: [0, 1]\ntrees: [{nodes: [{leaf: true, value: [1, 1]}]}]\n"},
		{"duplicate features", "kind: forest\nfeatures: [a, a]\nclasses: [0, 1]\ntrees: [{nodes: [{leaf: true, value: [1, 1]}]}]\n"},
		{"non binary classes", "kind: forest\nfeatures: [a]\nclasses: [0, 1, 2]\ntrees: [{nodes: [{leaf: true, value: [1, 1, 1]}]}]\n"},
		{"classes without one", "kind: forest\nfeatures: [a]\nclasses: [0, 2]\ntrees: [{nodes: [{leaf: true, value: [1, 1]}]}]\n"},
		{"no trees", "kind: forest\nfeatures: [a]\nclasses: [0, 1]\n"},
		{"leaf arity", "kind: forest\nfeatures: [a]\nclasses: [0, 1]\ntrees: [{nodes: [{leaf: true, value: [1]}]}]\n"},
		{"zero leaf", "kind: forest\nfeatures: [a]\nclasses: [0, 1]\ntrees: [{nodes: [{leaf: true, value: [0, 0]}]}]\n"},
		{"negative leaf", "kind: forest\nfeatures: [a]\nclasses: [0, 1]\ntrees: [{nodes: [{leaf: true, value: [-1, 2]}]}]\n"},
		{"cycle", "kind: forest\nfeatures: [a]\nclasses: [0, 1]\ntrees: [{nodes: [{feature: 0, threshold: 1, left: 0, right: 1}, {leaf: true, value: [1, 1]}]}]\n"},
		{"child out of range", "kind: forest\nfeatures: [a]\nclasses: [0, 1]\ntrees: [{nodes: [{feature: 0, threshold: 1, left: 1, right: 5}, {leaf: true, value: [1, 1]}]}]\n"},
		{"feature out of range", "kind: forest\nfeatures: [a]\nclasses: [0, 1]\ntrees: [{nodes: [{feature: 3, threshold: 1, left: 1, right: 2}, {leaf: true, value: [1, 1]}, {leaf: true, value: [1, 1]}]}]\n"},
		{"logistic missing section", "kind: logistic\nfeatures: [a]\nclasses: [0, 1]\n"},
		{"logistic unknown coefficient", "kind: logistic\nfeatures: [a]\nclasses: [0, 1]\nlogistic: {coefficients: {b: 1}}\n"},
		{"logistic bad threshold", "kind: logistic\nfeatures: [a]\nclasses: [0, 1]\nlogistic: {threshold: 1.5}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), tt.name)
			require.Error(t, err)
			var loadErr *contract.ModelLoadError
			assert.True(t, errors.As(err, &loadErr), "expected ModelLoadError, got %T", err)
			assert.Equal(t, tt.name, loadErr.Path)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	var loadErr *contract.ModelLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFingerprintIsContentAddressed(t *testing.T) {
	a, err := Parse([]byte(singleTreeYAML), "a")
	require.NoError(t, err)
	b, err := Parse([]byte(singleTreeYAML), "b")
	require.NoError(t, err)
	c, err := Parse([]byte(singleTreeYAML+"\n# changed\n"), "c")
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestHandleLoadsOnce(t *testing.T) {
	path := writeArtifact(t, "model.yaml", singleTreeYAML)
	h := NewHandle(path)
	assert.Equal(t, path, h.Path())

	var wg sync.WaitGroup
	models := make([]*Model, 8)
	for i := range models {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := h.Get()
			assert.NoError(t, err)
			models[i] = m
		}(i)
	}
	wg.Wait()
	for _, m := range models[1:] {
		assert.Same(t, models[0], m)
	}

	// Removing the file after the first load has no effect
	require.NoError(t, os.Remove(path))
	m, err := h.Get()
	require.NoError(t, err)
	assert.Same(t, models[0], m)
}

func TestHandleRemembersFailure(t *testing.T) {
	h := NewHandle(filepath.Join(t.TempDir(), "absent.yaml"))
	_, err1 := h.Get()
	_, err2 := h.Get()
	require.Error(t, err1)
	assert.Same(t, err1, err2)
}

func TestStaticHandle(t *testing.T) {
	m, err := Parse([]byte(singleTreeYAML), "inline")
	require.NoError(t, err)
	h := NewStaticHandle(m)
	got, err := h.Get()
	require.NoError(t, err)
	assert.Same(t, m, got)
	assert.Equal(t, "inline", h.Path())
}

func TestExampleArtifactLoads(t *testing.T) {
	m, err := Load(filepath.Join("..", "..", "examples", "model.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"weekly_score", "monthly_score"}, m.Features())
	assert.Equal(t, 3, m.Info().Trees)
}
