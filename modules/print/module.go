package print

import (
	"context"
	"fmt"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Execute prints the resolved 'in' value and passes it through on 'out'.
// The input port is fan-in tolerant so several branches can converge on a
// single output node; the last writer in plan order wins.
func Execute(ctx context.Context, node graph.Node, inputs map[string]any) (*registry.Result, error) {
	ctxlog.FromContext(ctx).Info("Printing node output", "nodeID", node.ID)

	val := inputs["in"]
	if label := node.ConfigString("label"); label != "" {
		fmt.Printf("      %s = %v\n", label, val)
	} else {
		fmt.Printf("      %v\n", val)
	}

	return &registry.Result{Outputs: map[string]any{"out": val}}, nil
}

// Register registers the executor with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("print", registry.Spec{
		Inputs:  []registry.InputPort{{Name: "in", FanIn: true}},
		Outputs: []registry.OutputPort{{Name: "out"}},
	}, registry.ExecutorFunc(Execute))
}
