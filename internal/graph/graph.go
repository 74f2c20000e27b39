package graph

import "fmt"

// Node is a single unit of work in a flow. Config is opaque to the engine;
// only the executor registered for Type gives it meaning. A Node must not be
// mutated while a run that references it is in progress.
type Node struct {
	ID     string
	Type   string
	Config map[string]any
}

// ConfigString returns the named config option as a string. Missing or
// non-string options default to the empty string, matching how node authors
// expect half-filled editor forms to behave.
func (n Node) ConfigString(name string) string {
	if s, ok := n.Config[name].(string); ok {
		return s
	}
	return ""
}

// Edge connects one node's output port to another node's input port.
type Edge struct {
	Source     string
	SourcePort string
	Target     string
	TargetPort string
}

// String renders the edge in source.port -> target.port form for error messages.
func (e Edge) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", e.Source, e.SourcePort, e.Target, e.TargetPort)
}

// Graph is an immutable description of one flow version: its nodes in
// declaration order, and the edges between their ports. Declaration order is
// preserved because the planner uses it for deterministic tie-breaking.
type Graph struct {
	nodes []Node
	index map[string]int
	edges []Edge
}

// New builds a Graph from declared nodes and edges. It fails on duplicate
// node IDs; all other structural validation belongs to the planner.
func New(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		nodes: make([]Node, len(nodes)),
		index: make(map[string]int, len(nodes)),
		edges: make([]Edge, len(edges)),
	}
	copy(g.nodes, nodes)
	copy(g.edges, edges)

	for i, n := range g.nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node at position %d has an empty id", i)
		}
		if _, exists := g.index[n.ID]; exists {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}
		g.index[n.ID] = i
	}
	return g, nil
}

// Nodes returns the nodes in declaration order.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Edges returns the declared edges.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}
