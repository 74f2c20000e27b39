package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/hclflow"
	"github.com/vk/flowgrid/internal/plan"
)

// Run executes the flow at cfg.FlowPath and reports sink outputs and
// failures to the app's output writer. The returned error is non-nil only
// when nothing useful completed: load and plan errors, a fully failed run,
// or cancellation.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	loader := hclflow.NewLoader()
	g, err := loader.Load(ctx, cfg.FlowPath)
	if err != nil {
		return fmt.Errorf("failed to load flow: %w", err)
	}
	a.logger.Debug("Flow loaded.", "node_count", g.Len(), "edge_count", len(g.Edges()))

	if g.Len() == 0 {
		a.logger.Warn("No nodes found in flow, execution not required.")
		return nil
	}

	p, err := plan.Build(ctx, g, a.registry)
	if err != nil {
		return fmt.Errorf("failed to build execution plan: %w", err)
	}
	a.logger.Debug("Execution plan built.", "order", p.Order())

	exec := executor.New(p, a.registry, nil,
		executor.WithMaxInFlight(int64(cfg.MaxInFlight)),
		executor.WithEventFunc(func(ev executor.Event) {
			if ev.Err != nil {
				a.logger.Warn("Node finished.", "nodeID", ev.NodeID, "state", ev.State.String(), "error", ev.Err)
				return
			}
			a.logger.Info("Node finished.", "nodeID", ev.NodeID, "state", ev.State.String())
		}),
	)

	a.logger.Info("🚀 Starting concurrent execution...", "nodes", g.Len())
	result := exec.Run(ctx)
	a.logger.Info("🏁 Execution finished.", "status", result.Status)

	a.reportResult(result)

	switch result.Status {
	case executor.StatusFailed:
		return fmt.Errorf("execution failed: no node completed")
	case executor.StatusCanceled:
		return fmt.Errorf("execution canceled: %w", ctx.Err())
	}
	return nil
}

// reportResult writes a human-readable run summary to the output writer.
func (a *App) reportResult(result *executor.Result) {
	fmt.Fprintf(a.outW, "Run %s\n", result.Status)

	sinkIDs := make([]string, 0, len(result.Sinks))
	for id := range result.Sinks {
		sinkIDs = append(sinkIDs, id)
	}
	sort.Strings(sinkIDs)
	for _, id := range sinkIDs {
		outputs := result.Sinks[id]
		ports := make([]string, 0, len(outputs))
		for port := range outputs {
			ports = append(ports, port)
		}
		sort.Strings(ports)
		for _, port := range ports {
			fmt.Fprintf(a.outW, "  %s.%s = %v\n", id, port, outputs[port])
		}
	}

	for _, failure := range result.Failures {
		fmt.Fprintf(a.outW, "  %s failed: %v\n", failure.NodeID, failure.Err)
	}
}
