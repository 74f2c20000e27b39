package plan

import (
	"github.com/vk/flowgrid/internal/graph"
)

// Plan is the executable form of a graph: a topological ordering of node IDs
// plus an edge index for fast input resolution. Built once per graph version
// and reused across runs.
type Plan struct {
	order    []string
	position map[string]int

	incoming  map[string][]graph.Edge
	outgoing  map[string][]graph.Edge
	producers map[string][]string

	sinks []string
	g     *graph.Graph
}

// Order returns the node IDs in execution order.
func (p *Plan) Order() []string {
	return p.order
}

// Position returns a node's index in the plan order.
func (p *Plan) Position(id string) int {
	return p.position[id]
}

// Incoming returns the edges terminating at the given node, ordered by the
// plan position of their source nodes. That ordering is what makes the
// fan-in merge policy (last writer wins) deterministic.
func (p *Plan) Incoming(id string) []graph.Edge {
	return p.incoming[id]
}

// Outgoing returns the edges originating at the given node.
func (p *Plan) Outgoing(id string) []graph.Edge {
	return p.outgoing[id]
}

// Producers returns the distinct upstream node IDs feeding the given node.
func (p *Plan) Producers(id string) []string {
	return p.producers[id]
}

// Sinks returns the nodes with no outgoing edges, in plan order. Their
// outputs form the aggregate result of a run.
func (p *Plan) Sinks() []string {
	return p.sinks
}

// Graph returns the graph this plan was built from.
func (p *Plan) Graph() *graph.Graph {
	return p.g
}
