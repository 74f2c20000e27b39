package plan

import (
	"context"
	"sort"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// SpecSource resolves the port spec declared for a node type. The executor
// registry satisfies it.
type SpecSource interface {
	Spec(nodeType string) (registry.Spec, bool)
}

// Build validates a graph against the declared port specs and constructs an
// executable Plan. It returns a *GraphError for dangling node references, a
// *CycleError when the graph is not acyclic, and never a partial plan.
//
// Edges naming a port the node type does not declare are a configuration
// error: they are logged and excluded from the plan rather than failing the
// whole build. Nodes whose type has no spec at all are left untouched here;
// the scheduler fails them individually at run time.
func Build(ctx context.Context, g *graph.Graph, specs SpecSource) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting plan construction.", "node_count", g.Len(), "edge_count", len(g.Edges()))

	edges, err := validateEdges(ctx, g, specs)
	if err != nil {
		return nil, err
	}

	order, err := sortNodes(g, edges)
	if err != nil {
		return nil, err
	}
	logger.Debug("Build: topological sort complete.")

	p := &Plan{
		order:     order,
		position:  make(map[string]int, len(order)),
		incoming:  make(map[string][]graph.Edge),
		outgoing:  make(map[string][]graph.Edge),
		producers: make(map[string][]string),
		g:         g,
	}
	for i, id := range order {
		p.position[id] = i
	}

	for _, e := range edges {
		p.incoming[e.Target] = append(p.incoming[e.Target], e)
		p.outgoing[e.Source] = append(p.outgoing[e.Source], e)
	}

	// Incoming edges sort by source plan position so the fan-in merge order
	// is stable across runs of identical graphs.
	for id := range p.incoming {
		in := p.incoming[id]
		sort.SliceStable(in, func(a, b int) bool {
			return p.position[in[a].Source] < p.position[in[b].Source]
		})

		seen := make(map[string]bool)
		for _, e := range in {
			if !seen[e.Source] {
				seen[e.Source] = true
				p.producers[id] = append(p.producers[id], e.Source)
			}
		}
	}

	for _, id := range order {
		if len(p.outgoing[id]) == 0 {
			p.sinks = append(p.sinks, id)
		}
	}

	logger.Debug("Build: plan construction successful.", "sink_count", len(p.sinks))
	return p, nil
}

// validateEdges checks every edge endpoint and returns the edges that
// survive validation.
func validateEdges(ctx context.Context, g *graph.Graph, specs SpecSource) ([]graph.Edge, error) {
	logger := ctxlog.FromContext(ctx)
	var kept []graph.Edge

	fanIn := make(map[string]map[string]int)

	for _, e := range g.Edges() {
		src, ok := g.Node(e.Source)
		if !ok {
			return nil, &GraphError{Edge: e.String(), Message: "unknown source node '" + e.Source + "'"}
		}
		dst, ok := g.Node(e.Target)
		if !ok {
			return nil, &GraphError{Edge: e.String(), Message: "unknown target node '" + e.Target + "'"}
		}
		if e.Source == e.Target {
			return nil, &GraphError{Edge: e.String(), Message: "self-referential edge not allowed"}
		}

		// Port checks only apply where a spec exists. A node type with no
		// registered executor is a run-time failure, not a build failure.
		if spec, ok := specs.Spec(src.Type); ok && !spec.HasOutput(e.SourcePort) {
			logger.Warn("Excluding edge: source port not declared by node type.",
				"edge", e.String(), "nodeType", src.Type)
			continue
		}
		if spec, ok := specs.Spec(dst.Type); ok {
			in, declared := spec.Input(e.TargetPort)
			if !declared {
				logger.Warn("Excluding edge: target port not declared by node type.",
					"edge", e.String(), "nodeType", dst.Type)
				continue
			}
			if !in.FanIn {
				if fanIn[e.Target] == nil {
					fanIn[e.Target] = make(map[string]int)
				}
				fanIn[e.Target][e.TargetPort]++
				if fanIn[e.Target][e.TargetPort] > 1 {
					return nil, &GraphError{
						Edge:    e.String(),
						Message: "multiple edges terminate at input port '" + e.TargetPort + "' which is not fan-in tolerant",
					}
				}
			}
		}

		kept = append(kept, e)
	}
	return kept, nil
}

// sortNodes runs Kahn's algorithm over the validated edge set. Ties break by
// declaration order, so identical graphs always plan identically.
func sortNodes(g *graph.Graph, edges []graph.Edge) ([]string, error) {
	nodes := g.Nodes()
	declared := make(map[string]int, len(nodes))
	for i, n := range nodes {
		declared[n.ID] = i
	}

	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string)
	counted := make(map[string]map[string]bool)
	for _, e := range edges {
		// Parallel edges between the same pair count once.
		if counted[e.Target] == nil {
			counted[e.Target] = make(map[string]bool)
		}
		if counted[e.Target][e.Source] {
			continue
		}
		counted[e.Target][e.Source] = true
		inDegree[e.Target]++
		dependents[e.Source] = append(dependents[e.Source], e.Target)
	}

	var ready []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		// Pick the earliest-declared ready node.
		min := 0
		for i := 1; i < len(ready); i++ {
			if declared[ready[i]] < declared[ready[min]] {
				min = i
			}
		}
		id := ready[min]
		ready = append(ready[:min], ready[min+1:]...)
		order = append(order, id)

		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(nodes) {
		cycleErr := &CycleError{}
		for _, n := range nodes {
			if inDegree[n.ID] > 0 {
				cycleErr.Nodes = append(cycleErr.Nodes, n.ID)
			}
		}
		return nil, cycleErr
	}
	return order, nil
}
