// Package model loads pre-trained risk classifiers from YAML or JSON artifacts.
package model

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
	"gopkg.in/yaml.v3"
)

// Node is one decision tree node. Split nodes send x <= Threshold left.
type Node struct {
	Feature   int       `yaml:"feature" json:"feature"`
	Threshold float64   `yaml:"threshold" json:"threshold"`
	Left      int       `yaml:"left" json:"left"`
	Right     int       `yaml:"right" json:"right"`
	Leaf      bool      `yaml:"leaf" json:"leaf"`
	Value     []float64 `yaml:"value" json:"value"` // Class weights, one per Classes entry
}

// Tree is a decision tree rooted at Nodes[0].
type Tree struct {
	Nodes []Node `yaml:"nodes" json:"nodes"`
}

// LogisticParams holds a binary logistic regression.
type LogisticParams struct {
	Intercept    float64            `yaml:"intercept" json:"intercept"`
	Coefficients map[string]float64 `yaml:"coefficients" json:"coefficients"`
	Threshold    float64            `yaml:"threshold" json:"threshold"` // 0 means 0.5
}

// Artifact is the on-disk classifier description.
// JSON artifacts parse through the same YAML decoder.
type Artifact struct {
	Name     string           `yaml:"name" json:"name"`
	Kind     schema.ModelKind `yaml:"kind" json:"kind"`
	Features []string         `yaml:"features" json:"features"`
	Classes  []int            `yaml:"classes" json:"classes"`
	Trees    []Tree           `yaml:"trees,omitempty" json:"trees,omitempty"`
	Logistic *LogisticParams  `yaml:"logistic,omitempty" json:"logistic,omitempty"`
}

// Model is a loaded, validated classifier.
type Model struct {
	contract.Classifier
	artifact    Artifact
	path        string
	fingerprint string
}

var _ contract.Model = &Model{} // Compile-time check

// Load reads and validates the artifact at path.
// Every failure is reported as *contract.ModelLoadError.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &contract.ModelLoadError{Path: path, Err: err}
	}
	return Parse(data, path)
}

// Parse decodes and validates artifact bytes. source names the artifact in errors.
func Parse(data []byte, source string) (*Model, error) {
	var a Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, &contract.ModelLoadError{Path: source, Err: fmt.Errorf("decode artifact: %w", err)}
	}
	clf, err := build(a)
	if err != nil {
		return nil, &contract.ModelLoadError{Path: source, Err: err}
	}
	return &Model{
		Classifier:  clf,
		artifact:    a,
		path:        source,
		fingerprint: fmt.Sprintf("%x", sha256.Sum256(data)),
	}, nil
}

// Fingerprint returns the sha256 of the artifact bytes.
func (m *Model) Fingerprint() string {
	return m.fingerprint
}

// Info describes the model for display.
func (m *Model) Info() schema.ModelInfo {
	return schema.ModelInfo{
		Name:        m.artifact.Name,
		Kind:        m.artifact.Kind,
		Path:        m.path,
		Features:    slices.Clone(m.artifact.Features),
		Classes:     slices.Clone(m.artifact.Classes),
		Trees:       len(m.artifact.Trees),
		Fingerprint: m.fingerprint,
	}
}

// build validates the common fields and constructs the kind-specific classifier.
func build(a Artifact) (contract.Classifier, error) {
	if _, ok := schema.ValidModelKinds[a.Kind]; !ok {
		return nil, fmt.Errorf("unknown model kind %q. must be forest or logistic", a.Kind)
	}
	if len(a.Features) == 0 {
		return nil, errors.New("artifact declares no features")
	}
	seen := make(map[string]struct{}, len(a.Features))
	for _, f := range a.Features {
		if f == "" {
			return nil, errors.New("artifact declares an empty feature name")
		}
		if _, dup := seen[f]; dup {
			return nil, fmt.Errorf("duplicate feature %q", f)
		}
		seen[f] = struct{}{}
	}
	if err := validateClasses(a.Classes); err != nil {
		return nil, err
	}

	switch a.Kind {
	case schema.ForestModel:
		return NewForest(a.Features, a.Classes, a.Trees)
	default:
		if a.Logistic == nil {
			return nil, errors.New("logistic model requires a logistic section")
		}
		return NewLogistic(a.Features, a.Classes, *a.Logistic)
	}
}

// validateClasses requires a binary class set containing both 0 and 1.
func validateClasses(classes []int) error {
	if len(classes) != 2 {
		return fmt.Errorf("expected 2 classes, got %d", len(classes))
	}
	if !slices.Contains(classes, 0) || !slices.Contains(classes, 1) {
		return fmt.Errorf("classes must be {0, 1}, got %v", classes)
	}
	return nil
}

// checkMatrix verifies every row has the expected width.
func checkMatrix(X [][]float64, width int) error {
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), width)
		}
	}
	return nil
}
