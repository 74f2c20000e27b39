package executor

import (
	"github.com/vk/flowgrid/internal/runstate"
)

// Status is the aggregate outcome of one run.
type Status string

const (
	// StatusCompleted means every executed node succeeded.
	StatusCompleted Status = "completed"
	// StatusPartial means some nodes failed but others still produced output.
	StatusPartial Status = "partial"
	// StatusFailed means nodes failed and nothing completed.
	StatusFailed Status = "failed"
	// StatusCanceled means the caller aborted the run before it finished.
	StatusCanceled Status = "canceled"
)

// NodeError pairs a failed node with its cause.
type NodeError struct {
	NodeID string
	Err    error
}

// Error implements the error interface.
func (e NodeError) Error() string {
	return e.NodeID + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e NodeError) Unwrap() error {
	return e.Err
}

// Event is delivered to the caller once per node, in completion order, as
// each node reaches a terminal state.
type Event struct {
	NodeID  string
	State   runstate.State
	Outputs map[string]any
	Err     error
}

// EventFunc receives per-node completion events. It is invoked synchronously
// from the run loop, so implementations should return quickly.
type EventFunc func(Event)

// Result summarizes one finished run: the outputs of every sink node that
// produced a value, and the set of node failures. A run with failures still
// reports whatever sink outputs were produced.
type Result struct {
	Status   Status
	Sinks    map[string]map[string]any
	Failures []NodeError
}
