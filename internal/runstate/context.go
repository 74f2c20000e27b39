package runstate

import (
	"errors"
	"sync"

	"github.com/vk/flowgrid/internal/plan"
)

// ErrNotReady is the internal control-flow signal returned by ResolveInputs
// while some producer of the node's inputs has not reached a terminal state.
// It never surfaces to callers of the engine.
var ErrNotReady = errors.New("inputs not ready")

// portValue is one resolved output slot: its value and whether the port is
// live for this run. Inactive ports carry no value.
type portValue struct {
	value  any
	active bool
}

// Context is the per-run mutable state: node lifecycle states, resolved
// output port values with activation flags, and accumulated errors. It is
// the only shared mutable state in the engine and is safe for concurrent
// use; each node has a single writer but reads and writes across different
// nodes overlap freely.
type Context struct {
	mu sync.RWMutex

	plan  *plan.Plan
	specs plan.SpecSource

	states  map[string]State
	outputs map[string]map[string]portValue
	errs    map[string]error

	// seeds hold the caller's initial values, keyed by node then input port.
	// They feed entry ports only: ports with an in-graph producer ignore them.
	seeds map[string]map[string]any
}

// New creates the execution context for one run, seeded with the caller's
// initial inputs.
func New(p *plan.Plan, specs plan.SpecSource, initial map[string]map[string]any) *Context {
	c := &Context{
		plan:    p,
		specs:   specs,
		states:  make(map[string]State, len(p.Order())),
		outputs: make(map[string]map[string]portValue),
		errs:    make(map[string]error),
		seeds:   initial,
	}
	for _, id := range p.Order() {
		c.states[id] = Pending
	}
	return c
}

// State returns the current lifecycle state of a node.
func (c *Context) State(id string) State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.states[id]
}

// SetState transitions a node's lifecycle state.
func (c *Context) SetState(id string, s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[id] = s
}

// Err returns the error recorded for a node: its failure cause, or the
// skip reason when one was given.
func (c *Context) Err(id string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errs[id]
}

// ResolveInputs merges upstream outputs into the node's input ports. While
// any producer is non-terminal it returns ErrNotReady. Once every producer
// is terminal it returns the resolved values plus the names of required
// ports that ended up with no active value (failed or suppressed upstream,
// or an unseeded entry port); the scheduler applies the node type's partial
// policy to those.
func (c *Context) ResolveInputs(id string) (map[string]any, []string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	node, ok := c.plan.Graph().Node(id)
	if !ok {
		return nil, nil, ErrNotReady
	}
	spec, _ := c.specs.Spec(node.Type)

	byPort := make(map[string][]int)
	incoming := c.plan.Incoming(id)
	for i, e := range incoming {
		if !c.states[e.Source].Terminal() {
			return nil, nil, ErrNotReady
		}
		byPort[e.TargetPort] = append(byPort[e.TargetPort], i)
	}

	inputs := make(map[string]any)

	// Entry ports take the caller's seed values.
	for port, val := range c.seeds[id] {
		if len(byPort[port]) == 0 {
			inputs[port] = val
		}
	}

	// Edges merge in plan order; on fan-in tolerant ports the last active
	// writer wins.
	for port, idxs := range byPort {
		for _, i := range idxs {
			e := incoming[i]
			if pv, ok := c.outputs[e.Source][e.SourcePort]; ok && pv.active {
				inputs[port] = pv.value
			}
		}
	}

	var missing []string
	for _, in := range spec.Inputs {
		if in.Optional {
			continue
		}
		if _, ok := inputs[in.Name]; !ok {
			missing = append(missing, in.Name)
		}
	}
	return inputs, missing, nil
}

// WriteOutputs records a completed node's output values and marks the node
// Done. activePorts selects which outputs are live; nil means every port the
// node produced or declares. Non-selected ports of an exclusive node type
// are recorded inactive with no value.
func (c *Context) WriteOutputs(id string, outputs map[string]any, activePorts []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, _ := c.plan.Graph().Node(id)
	spec, hasSpec := c.specs.Spec(node.Type)

	declared := make(map[string]bool)
	if hasSpec {
		for _, name := range spec.OutputNames() {
			declared[name] = true
		}
	}
	for name := range outputs {
		declared[name] = true
	}

	active := make(map[string]bool)
	if activePorts == nil {
		for name := range declared {
			active[name] = true
		}
	} else {
		for _, name := range activePorts {
			active[name] = true
		}
	}

	ports := make(map[string]portValue, len(declared))
	for name := range declared {
		if active[name] {
			ports[name] = portValue{value: outputs[name], active: true}
		} else {
			ports[name] = portValue{active: false}
		}
	}
	c.outputs[id] = ports
	c.states[id] = Done
}

// MarkFailed records a node failure. All of its output ports become
// inactive, which is what lets dependents transition to Skipped instead of
// Failed.
func (c *Context) MarkFailed(id string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[id] = Failed
	c.errs[id] = err
	c.outputs[id] = nil
}

// MarkSkipped records that a node's executor never ran. reason is optional
// and carried on the node's event: the context error when the run was
// canceled before dispatch, nil when no live input path reached the node.
func (c *Context) MarkSkipped(id string, reason error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[id] = Skipped
	if reason != nil {
		c.errs[id] = reason
	}
	c.outputs[id] = nil
}

// Outputs returns a copy of the active output values of a node. Inactive
// ports are omitted.
func (c *Context) Outputs(id string) map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ports := c.outputs[id]
	if ports == nil {
		return nil
	}
	out := make(map[string]any, len(ports))
	for name, pv := range ports {
		if pv.active {
			out[name] = pv.value
		}
	}
	return out
}

// PortActive reports whether a node's output port is live for this run.
func (c *Context) PortActive(id, port string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pv, ok := c.outputs[id][port]
	return ok && pv.active
}
