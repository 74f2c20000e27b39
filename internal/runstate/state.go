package runstate

// State is the lifecycle state of one node within a run.
type State int32

const (
	Pending State = iota
	Ready
	Running
	Done
	Failed
	Skipped
)

// String returns the lower-case name used in logs and events.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Terminal reports whether a node in this state has finished for the run.
func (s State) Terminal() bool {
	return s == Done || s == Failed || s == Skipped
}
