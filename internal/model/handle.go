package model

import (
	"sync"

	"github.com/maintinsight/maintinsight/internal/contract"
)

// Handle lazily loads a model once and shares it read-only for the process lifetime.
// A failed load is remembered and returned on every call.
type Handle struct {
	path  string
	once  sync.Once
	model *Model
	err   error
}

var _ contract.ModelProvider = &Handle{} // Compile-time check

// NewHandle creates a handle for the artifact at path without loading it.
func NewHandle(path string) *Handle {
	return &Handle{path: path}
}

// NewStaticHandle wraps an already loaded model.
func NewStaticHandle(m *Model) *Handle {
	h := &Handle{path: m.path, model: m}
	h.once.Do(func() {})
	return h
}

// Path returns the artifact path.
func (h *Handle) Path() string {
	return h.path
}

// Get returns the loaded model, loading it on first use.
func (h *Handle) Get() (*Model, error) {
	h.once.Do(func() {
		h.model, h.err = Load(h.path)
	})
	return h.model, h.err
}

// Model implements the contract.ModelProvider interface.
func (h *Handle) Model() (contract.Model, error) {
	m, err := h.Get()
	if err != nil {
		return nil, err
	}
	return m, nil
}
