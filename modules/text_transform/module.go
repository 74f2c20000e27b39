package text_transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Execute applies the configured string operation to the 'in' port and
// emits the result on 'out'. Supported operations: upper, lower, trim,
// replace (with 'old'/'new' config).
func Execute(ctx context.Context, node graph.Node, inputs map[string]any) (*registry.Result, error) {
	text := fmt.Sprint(inputs["in"])
	if inputs["in"] == nil {
		text = ""
	}

	var out string
	switch op := node.ConfigString("operation"); op {
	case "upper", "":
		out = strings.ToUpper(text)
	case "lower":
		out = strings.ToLower(text)
	case "trim":
		out = strings.TrimSpace(text)
	case "replace":
		out = strings.ReplaceAll(text, node.ConfigString("old"), node.ConfigString("new"))
	default:
		return nil, fmt.Errorf("unsupported operation '%s'", op)
	}

	return &registry.Result{Outputs: map[string]any{"out": out}}, nil
}

// Register registers the executor with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("text_transform", registry.Spec{
		Inputs:  []registry.InputPort{{Name: "in"}},
		Outputs: []registry.OutputPort{{Name: "out"}},
	}, registry.ExecutorFunc(Execute))
}
