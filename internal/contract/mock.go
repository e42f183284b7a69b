package contract

import "github.com/stretchr/testify/mock"

// MockClassifier is a mock implementation of Classifier for testing.
type MockClassifier struct {
	mock.Mock
}

var _ Classifier = &MockClassifier{} // Compile-time check

// Features implements the Classifier interface.
func (m *MockClassifier) Features() []string {
	args := m.Called()
	features, _ := args.Get(0).([]string)
	return features
}

// Classes implements the Classifier interface.
func (m *MockClassifier) Classes() []int {
	args := m.Called()
	classes, _ := args.Get(0).([]int)
	return classes
}

// Predict implements the Classifier interface.
func (m *MockClassifier) Predict(X [][]float64) ([]int, error) {
	args := m.Called(X)
	preds, _ := args.Get(0).([]int)
	return preds, args.Error(1)
}

// PredictProba implements the Classifier interface.
func (m *MockClassifier) PredictProba(X [][]float64) ([][]float64, error) {
	args := m.Called(X)
	proba, _ := args.Get(0).([][]float64)
	return proba, args.Error(1)
}
