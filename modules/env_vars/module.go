package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Execute snapshots the process environment onto the 'all' output. An
// optional 'prefix' config narrows the snapshot.
func Execute(ctx context.Context, node graph.Node, inputs map[string]any) (*registry.Result, error) {
	prefix := node.ConfigString("prefix")

	envMap := make(map[string]any)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) != 2 {
			continue
		}
		if prefix != "" && !strings.HasPrefix(pair[0], prefix) {
			continue
		}
		envMap[pair[0]] = pair[1]
	}

	return &registry.Result{Outputs: map[string]any{"all": envMap}}, nil
}

// Register registers the executor with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("env_vars", registry.Spec{
		Outputs: []registry.OutputPort{{Name: "all"}},
	}, registry.ExecutorFunc(Execute))
}
