package executor

import (
	"context"
	"fmt"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/runstate"
)

// runNode takes one ready node to a terminal state: Skipped when no live
// input path reached it, Failed when its executor errored (or none is
// registered), Done otherwise.
func (e *Executor) runNode(ctx context.Context, id string, readyChan chan string) {
	logger := ctxlog.FromContext(ctx).With("nodeID", id)

	if ctx.Err() != nil {
		logger.Warn("Context canceled, skipping node execution.")
		e.finish(ctx, id, readyChan, func() { e.state.MarkSkipped(id, ctx.Err()) })
		return
	}

	node, ok := e.plan.Graph().Node(id)
	if !ok {
		e.finish(ctx, id, readyChan, func() {
			e.state.MarkFailed(id, fmt.Errorf("node '%s' missing from graph", id))
		})
		return
	}

	inputs, missing, err := e.state.ResolveInputs(id)
	if err != nil {
		// Producers are terminal by the time a node is dispatched, so this
		// is a scheduler invariant violation, not a user error.
		e.finish(ctx, id, readyChan, func() {
			e.state.MarkFailed(id, fmt.Errorf("inputs unexpectedly unresolved: %w", err))
		})
		return
	}

	exec, ok := e.registry.Get(node.Type)
	if !ok {
		logger.Error("No executor registered for node type.", "nodeType", node.Type)
		e.finish(ctx, id, readyChan, func() {
			e.state.MarkFailed(id, fmt.Errorf("%w '%s'", ErrUnknownType, node.Type))
		})
		return
	}
	spec, _ := e.registry.Spec(node.Type)

	if skip, reason := shouldSkip(spec, inputs, missing); skip {
		logger.Info("⏭️ Skipping node.", "reason", reason)
		e.finish(ctx, id, readyChan, func() { e.state.MarkSkipped(id, nil) })
		return
	}

	logger.Info("▶️ Starting node.", "nodeType", node.Type)
	e.state.SetState(id, runstate.Running)

	result, execErr := exec.Execute(ctx, node, inputs)
	if execErr != nil {
		logger.Error("Node execution failed.", "error", execErr)
		e.finish(ctx, id, readyChan, func() { e.state.MarkFailed(id, execErr) })
		return
	}

	outputs, active, err := normalizeResult(spec, result)
	if err != nil {
		logger.Error("Executor returned an invalid result.", "error", err)
		e.finish(ctx, id, readyChan, func() { e.state.MarkFailed(id, err) })
		return
	}

	logger.Info("✅ Finished node.")
	e.finish(ctx, id, readyChan, func() { e.state.WriteOutputs(id, outputs, active) })
}

// shouldSkip applies the node type's partial-input policy to the resolved
// inputs.
func shouldSkip(spec registry.Spec, inputs map[string]any, missing []string) (bool, string) {
	if len(spec.Inputs) == 0 {
		return false, ""
	}
	switch spec.Partial {
	case registry.PartialAccept:
		if len(inputs) == 0 {
			return true, "no input port resolved to an active value"
		}
	default: // PartialReject
		if len(missing) > 0 {
			return true, fmt.Sprintf("required input ports unresolved: %v", missing)
		}
	}
	return false, ""
}

// normalizeResult validates an executor result against the node type's spec
// and flattens it into outputs plus the live port set. A nil ActivePorts
// means every declared output is live, which is only legal for non-exclusive
// types.
func normalizeResult(spec registry.Spec, result *registry.Result) (map[string]any, []string, error) {
	if spec.Exclusive {
		// A nil result is as silent about branch selection as a nil
		// ActivePorts; letting it through would activate every branch.
		if result == nil || result.ActivePorts == nil {
			return nil, nil, fmt.Errorf("executor for exclusive node type must select active ports explicitly")
		}
		if len(result.ActivePorts) > 1 {
			return nil, nil, fmt.Errorf("executor selected %d active ports on a mutually exclusive node type", len(result.ActivePorts))
		}
		return result.Outputs, result.ActivePorts, nil
	}
	if result == nil {
		return nil, nil, nil
	}
	return result.Outputs, result.ActivePorts, nil
}
