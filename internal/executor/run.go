package executor

import (
	"context"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/runstate"
)

// Run executes the entire plan and blocks until every node reaches a
// terminal state. Node-level failures are isolated: one failing branch never
// prevents unrelated branches from completing, and the run always
// terminates. Cancelling ctx stops in-flight executors via their context and
// skips everything not yet dispatched; already-completed outputs remain in
// the result.
func (e *Executor) Run(ctx context.Context) *Result {
	logger := ctxlog.FromContext(ctx)

	readyChan := make(chan string, e.plan.Graph().Len())

	rootCount := 0
	for _, id := range e.plan.Order() {
		if e.remaining[id].Load() == 0 {
			readyChan <- id
			rootCount++
		}
	}
	logger.Debug("Run: seeded root nodes.", "count", rootCount)

	e.wg.Add(e.plan.Graph().Len())

	go e.dispatch(ctx, readyChan)

	e.wg.Wait()
	close(readyChan)
	logger.Debug("Run: all nodes terminal.")

	return e.buildResult(ctx)
}

// dispatch pulls ready nodes and hands each to a goroutine, bounded by the
// in-flight semaphore. The channel is closed by Run once every node is
// terminal.
func (e *Executor) dispatch(ctx context.Context, readyChan chan string) {
	for id := range readyChan {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			// Context canceled: finish the node without running it.
			e.finish(ctx, id, readyChan, func() {
				e.state.MarkSkipped(id, ctx.Err())
			})
			continue
		}
		go func(id string) {
			defer e.sem.Release(1)
			e.runNode(ctx, id, readyChan)
		}(id)
	}
}

// finish applies a terminal transition for a node, emits its event, unlocks
// dependents, and releases the run's wait group slot. Every node passes
// through here exactly once.
func (e *Executor) finish(ctx context.Context, id string, readyChan chan string, transition func()) {
	logger := ctxlog.FromContext(ctx)

	transition()

	st := e.state.State(id)
	e.emit(Event{
		NodeID:  id,
		State:   st,
		Outputs: e.state.Outputs(id),
		Err:     e.state.Err(id),
	})

	// Several edges may reach the same dependent; the producer counter moves
	// once per distinct target.
	notified := make(map[string]bool)
	for _, dep := range e.plan.Outgoing(id) {
		if notified[dep.Target] {
			continue
		}
		notified[dep.Target] = true
		if e.remaining[dep.Target].Add(-1) == 0 {
			logger.Debug("Unlocking dependent node.", "nodeID", id, "dependentID", dep.Target)
			readyChan <- dep.Target
		}
	}

	e.wg.Done()
}

// buildResult assembles the aggregate result once every node is terminal.
func (e *Executor) buildResult(ctx context.Context) *Result {
	res := &Result{Sinks: make(map[string]map[string]any)}

	doneCount := 0
	for _, id := range e.plan.Order() {
		switch e.state.State(id) {
		case runstate.Done:
			doneCount++
		case runstate.Failed:
			res.Failures = append(res.Failures, NodeError{NodeID: id, Err: e.state.Err(id)})
		}
	}

	for _, id := range e.plan.Sinks() {
		if out := e.state.Outputs(id); out != nil {
			res.Sinks[id] = out
		}
	}

	switch {
	case ctx.Err() != nil:
		res.Status = StatusCanceled
	case len(res.Failures) == 0:
		res.Status = StatusCompleted
	case doneCount > 0:
		res.Status = StatusPartial
	default:
		res.Status = StatusFailed
	}
	return res
}
