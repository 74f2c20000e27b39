package plan

import (
	"fmt"
	"strings"
)

// GraphError reports a structural problem found while validating the graph,
// such as an edge referencing a node that does not exist. No partial plan is
// returned alongside it.
type GraphError struct {
	Edge    string
	Message string
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.Edge != "" {
		return fmt.Sprintf("invalid edge %s: %s", e.Edge, e.Message)
	}
	return e.Message
}

// CycleError reports that the graph is not acyclic. Nodes lists every node
// left unresolved by the topological sort; at least one of them sits on a
// cycle.
type CycleError struct {
	Nodes []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected involving nodes: %s", strings.Join(e.Nodes, ", "))
}
