package conditional

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Execute evaluates the configured predicate against the 'in' port and
// routes the value to exactly one of the mutually exclusive 'true'/'false'
// outputs. The non-selected branch stays inactive, so everything reachable
// only through it gets skipped.
func Execute(ctx context.Context, node graph.Node, inputs map[string]any) (*registry.Result, error) {
	text := fmt.Sprint(inputs["in"])
	if inputs["in"] == nil {
		text = ""
	}
	operand := node.ConfigString("value")

	var match bool
	switch op := node.ConfigString("operator"); op {
	case "contains", "":
		match = strings.Contains(text, operand)
	case "equals":
		match = text == operand
	case "prefix":
		match = strings.HasPrefix(text, operand)
	case "suffix":
		match = strings.HasSuffix(text, operand)
	case "not_empty":
		match = strings.TrimSpace(text) != ""
	default:
		return nil, fmt.Errorf("unsupported operator '%s'", op)
	}

	port := "false"
	if match {
		port = "true"
	}
	return &registry.Result{
		Outputs:     map[string]any{port: inputs["in"]},
		ActivePorts: []string{port},
	}, nil
}

// Register registers the executor with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("conditional", registry.Spec{
		Inputs:    []registry.InputPort{{Name: "in"}},
		Outputs:   []registry.OutputPort{{Name: "true"}, {Name: "false"}},
		Exclusive: true,
	}, registry.ExecutorFunc(Execute))
}
