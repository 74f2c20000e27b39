package executor

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/vk/flowgrid/internal/plan"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/runstate"
	"golang.org/x/sync/semaphore"
)

// ErrUnknownType is wrapped into a node's failure when no executor is
// registered for its type.
var ErrUnknownType = errors.New("unknown node type")

// DefaultMaxInFlight bounds concurrent executor invocations when the caller
// does not choose a limit.
const DefaultMaxInFlight = 10

// Executor walks a plan, dispatches ready nodes to their registered
// executors, and streams completion events. One Executor instance serves one
// run.
type Executor struct {
	plan     *plan.Plan
	registry *registry.Registry
	state    *runstate.Context
	onEvent  EventFunc

	sem *semaphore.Weighted
	wg  sync.WaitGroup

	// eventMu serializes event delivery so the caller observes exactly one
	// event per node, in completion order.
	eventMu sync.Mutex

	// remaining tracks, per node, how many distinct producers have not yet
	// reached a terminal state.
	remaining map[string]*atomic.Int32
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxInFlight bounds the number of executor invocations running at once.
func WithMaxInFlight(n int64) Option {
	return func(e *Executor) {
		if n > 0 {
			e.sem = semaphore.NewWeighted(n)
		}
	}
}

// WithEventFunc registers the caller's completion-event callback.
func WithEventFunc(fn EventFunc) Option {
	return func(e *Executor) {
		e.onEvent = fn
	}
}

// New creates an Executor for one run of the given plan. initialInputs seeds
// entry ports (inputs with no in-graph producer), keyed by node ID then port
// name.
func New(p *plan.Plan, reg *registry.Registry, initialInputs map[string]map[string]any, opts ...Option) *Executor {
	e := &Executor{
		plan:      p,
		registry:  reg,
		state:     runstate.New(p, reg, initialInputs),
		sem:       semaphore.NewWeighted(DefaultMaxInFlight),
		remaining: make(map[string]*atomic.Int32, p.Graph().Len()),
	}
	for _, id := range p.Order() {
		counter := &atomic.Int32{}
		counter.Store(int32(len(p.Producers(id))))
		e.remaining[id] = counter
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State exposes the run's execution context, mainly for tests and the
// reporting layer.
func (e *Executor) State() *runstate.Context {
	return e.state
}

// emit delivers one terminal event to the caller, if a callback is set.
func (e *Executor) emit(ev Event) {
	if e.onEvent == nil {
		return
	}
	e.eventMu.Lock()
	defer e.eventMu.Unlock()
	e.onEvent(ev)
}
