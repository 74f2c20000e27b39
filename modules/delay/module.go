package delay

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Execute pauses for the configured 'duration' and passes the optional 'in'
// value through on 'out'. Cancelling the run interrupts the pause.
func Execute(ctx context.Context, node graph.Node, inputs map[string]any) (*registry.Result, error) {
	duration, err := time.ParseDuration(node.ConfigString("duration"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse duration: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(duration):
	}

	return &registry.Result{Outputs: map[string]any{"out": inputs["in"]}}, nil
}

// Register registers the executor with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("delay", registry.Spec{
		Inputs:  []registry.InputPort{{Name: "in", Optional: true}},
		Outputs: []registry.OutputPort{{Name: "out"}},
	}, registry.ExecutorFunc(Execute))
}
