package testutil

import (
	"github.com/vk/flowgrid/internal/registry"
)

// moduleFunc adapts an inline executor function into a registerable module.
type moduleFunc struct {
	nodeType string
	spec     registry.Spec
	fn       registry.ExecutorFunc
}

// NewModule wraps a single executor function as a registry.Module so tests
// can register ad-hoc node types without a modules/ package.
func NewModule(nodeType string, spec registry.Spec, fn registry.ExecutorFunc) registry.Module {
	return &moduleFunc{nodeType: nodeType, spec: spec, fn: fn}
}

// Register registers the executor with the engine.
func (m *moduleFunc) Register(r *registry.Registry) {
	r.Register(m.nodeType, m.spec, m.fn)
}
