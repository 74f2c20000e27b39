package registry

// PartialPolicy controls what the scheduler does when only a subset of a
// node's input ports resolved to an active value (upstream failure or a
// conditional selecting the other branch).
type PartialPolicy int

const (
	// PartialReject skips the node unless every required input port
	// resolved. This is the default.
	PartialReject PartialPolicy = iota

	// PartialAccept runs the node with whatever inputs resolved; missing
	// ports are simply absent from the inputs map. A node with zero
	// resolved inputs is still skipped.
	PartialAccept
)

// InputPort declares one named input slot on a node type.
type InputPort struct {
	Name string

	// Optional ports do not gate readiness: the node may run without them.
	Optional bool

	// FanIn permits multiple edges to terminate at this port. Values merge
	// last-writer-wins in plan order. Without it the planner rejects fan-in.
	FanIn bool
}

// OutputPort declares one named output slot on a node type.
type OutputPort struct {
	Name string
}

// Spec describes the port surface of a node type. The planner validates
// edges against it and the scheduler uses it to drive conditional and
// partial-input behavior.
type Spec struct {
	Inputs  []InputPort
	Outputs []OutputPort

	// Exclusive marks the output ports as mutually exclusive branches: the
	// executor's result selects which (at most one) is live for the run.
	Exclusive bool

	// Partial is the node type's policy for partially resolved inputs.
	Partial PartialPolicy
}

// Input returns the declared input port with the given name.
func (s Spec) Input(name string) (InputPort, bool) {
	for _, p := range s.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return InputPort{}, false
}

// HasOutput reports whether the spec declares an output port with the given name.
func (s Spec) HasOutput(name string) bool {
	for _, p := range s.Outputs {
		if p.Name == name {
			return true
		}
	}
	return false
}

// OutputNames returns the declared output port names in declaration order.
func (s Spec) OutputNames() []string {
	names := make([]string, len(s.Outputs))
	for i, p := range s.Outputs {
		names[i] = p.Name
	}
	return names
}
