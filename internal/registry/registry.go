package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/flowgrid/internal/graph"
)

// Result is what an executor hands back to the engine: values per output
// port, plus the set of ports that are live for this run. A nil ActivePorts
// means "all declared outputs are live"; for exclusive node types the
// executor must name at most one.
type Result struct {
	Outputs     map[string]any
	ActivePorts []string
}

// Executor performs a node's actual work given its config and resolved
// inputs. Implementations are invoked at most once per node per run and must
// honor ctx cancellation for long operations.
type Executor interface {
	Execute(ctx context.Context, node graph.Node, inputs map[string]any) (*Result, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, node graph.Node, inputs map[string]any) (*Result, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, node graph.Node, inputs map[string]any) (*Result, error) {
	return f(ctx, node, inputs)
}

// Module is the interface packages implement to contribute their executors
// to a registry. The engine only consumes the populated registry.
type Module interface {
	Register(r *Registry)
}

// entry pairs an executor with its declared port spec.
type entry struct {
	executor Executor
	spec     Spec
}

// Registry maps node-type identifiers to the executor responsible for
// running that type. Populated once at startup, read-only afterwards.
type Registry struct {
	entries map[string]entry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register binds an executor and its port spec to a node type. Registering
// the same type twice is a programmer error and panics.
func (r *Registry) Register(nodeType string, spec Spec, ex Executor) {
	if _, exists := r.entries[nodeType]; exists {
		panic(fmt.Sprintf("executor for node type '%s' already registered", nodeType))
	}
	slog.Debug("Registering executor.", "nodeType", nodeType)
	r.entries[nodeType] = entry{executor: ex, spec: spec}
}

// Get returns the executor for a node type.
func (r *Registry) Get(nodeType string) (Executor, bool) {
	e, ok := r.entries[nodeType]
	if !ok {
		return nil, false
	}
	return e.executor, true
}

// Spec returns the port spec for a node type.
func (r *Registry) Spec(nodeType string) (Spec, bool) {
	e, ok := r.entries[nodeType]
	if !ok {
		return Spec{}, false
	}
	return e.spec, true
}

// Types returns all registered node types, sorted for stable logging.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.entries))
	for t := range r.entries {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
