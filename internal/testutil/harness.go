package testutil

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/vk/flowgrid/internal/app"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/hclflow"
	"github.com/vk/flowgrid/internal/plan"
	"github.com/vk/flowgrid/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a flow test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	Result    *executor.Result
	Events    []executor.Event
	App       *app.App
}

// RunFlowTest provides a standardized harness for executing an inline flow
// definition using a default background context.
func RunFlowTest(t *testing.T, flowHCL string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunFlowTestWithContext(context.Background(), t, flowHCL, modules...)
}

// RunFlowTestWithContext executes an inline flow definition end to end:
// parse, plan, run. Load and plan errors come back in Err with a nil Result;
// node-level failures come back inside Result.
func RunFlowTestWithContext(ctx context.Context, t *testing.T, flowHCL string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	logBuffer := &SafeBuffer{}
	appConfig := &app.Config{
		FlowPath:    "inline",
		LogLevel:    "debug",
		LogFormat:   "text",
		MaxInFlight: 4,
	}
	testApp := app.NewApp(logBuffer, appConfig, modules...)
	ctx = ctxlog.WithLogger(ctx, testApp.Logger())

	t.Cleanup(func() {
		if os.Getenv("FLOWGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	res := &HarnessResult{App: testApp}

	g, err := hclflow.NewLoader().Parse([]byte(flowHCL), "test.hcl")
	if err != nil {
		res.Err = err
		res.LogOutput = logBuffer.String()
		return res
	}

	p, err := plan.Build(ctx, g, testApp.Registry())
	if err != nil {
		res.Err = err
		res.LogOutput = logBuffer.String()
		return res
	}

	var eventMu sync.Mutex
	exec := executor.New(p, testApp.Registry(), nil,
		executor.WithMaxInFlight(int64(appConfig.MaxInFlight)),
		executor.WithEventFunc(func(ev executor.Event) {
			eventMu.Lock()
			defer eventMu.Unlock()
			res.Events = append(res.Events, ev)
		}),
	)

	res.Result = exec.Run(ctx)
	res.LogOutput = logBuffer.String()
	return res
}
