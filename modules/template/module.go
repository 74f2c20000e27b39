package template

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Execute renders the configured Go text/template over the resolved input
// ports and emits the combined text on 'out'. Ports a through d are all
// optional and the type accepts partial input, so a combiner keeps working
// when one upstream branch was suppressed; unresolved ports render as the
// empty string.
func Execute(ctx context.Context, node graph.Node, inputs map[string]any) (*registry.Result, error) {
	text := node.ConfigString("template")
	if text == "" {
		return nil, fmt.Errorf("template config is required")
	}

	tmpl, err := template.New(node.ID).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	// Unresolved ports render as the empty string. missingkey=zero alone is
	// not enough: the zero of an any-typed map entry prints as "<no value>".
	data := map[string]any{"a": "", "b": "", "c": "", "d": ""}
	for port, val := range inputs {
		if val == nil {
			val = ""
		}
		data[port] = val
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return &registry.Result{Outputs: map[string]any{"out": buf.String()}}, nil
}

// Register registers the executor with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("template", registry.Spec{
		Inputs: []registry.InputPort{
			{Name: "a", Optional: true},
			{Name: "b", Optional: true},
			{Name: "c", Optional: true},
			{Name: "d", Optional: true},
		},
		Outputs: []registry.OutputPort{{Name: "out"}},
		Partial: registry.PartialAccept,
	}, registry.ExecutorFunc(Execute))
}
