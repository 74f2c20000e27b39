package static_text

import (
	"context"

	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Execute emits the configured text on the 'out' port. A static_text node
// has no inputs; it is a pure source.
func Execute(ctx context.Context, node graph.Node, inputs map[string]any) (*registry.Result, error) {
	return &registry.Result{
		Outputs: map[string]any{"out": node.ConfigString("text")},
	}, nil
}

// Register registers the executor with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("static_text", registry.Spec{
		Outputs: []registry.OutputPort{{Name: "out"}},
	}, registry.ExecutorFunc(Execute))
}
