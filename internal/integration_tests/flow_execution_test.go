package integration_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/testutil"
)

func TestCoreExecution_PipelineTransformsText(t *testing.T) {
	t.Parallel()

	flowHCL := `
		node "static_text" "greeting" {
			config { text = "hello" }
		}

		node "text_transform" "shout" {
			config { operation = "upper" }
		}

		node "print" "output" {}

		edge {
			source = "greeting"
			target = "shout"
		}

		edge {
			source = "shout"
			target = "output"
		}
	`

	res := testutil.RunFlowTest(t, flowHCL)

	require.NoError(t, res.Err)
	require.NotNil(t, res.Result)
	assert.Equal(t, executor.StatusCompleted, res.Result.Status)

	require.Contains(t, res.Result.Sinks, "output")
	assert.Equal(t, "HELLO", res.Result.Sinks["output"]["out"])

	assert.Len(t, res.Events, 3, "one terminal event per node")
}

func TestBranching_ConditionalSuppressesUntakenPath(t *testing.T) {
	t.Parallel()

	flowHCL := `
		node "static_text" "src" {
			config { text = "bad response" }
		}

		node "conditional" "check" {
			config {
				operator = "contains"
				value    = "bad"
			}
		}

		node "text_transform" "onTrue" {
			config { operation = "upper" }
		}

		node "text_transform" "onFalse" {
			config { operation = "lower" }
		}

		edge {
			source = "src"
			target = "check"
		}

		edge {
			source      = "check"
			source_port = "true"
			target      = "onTrue"
		}

		edge {
			source      = "check"
			source_port = "false"
			target      = "onFalse"
		}
	`

	res := testutil.RunFlowTest(t, flowHCL)

	require.NoError(t, res.Err)
	assert.Equal(t, executor.StatusCompleted, res.Result.Status, "an untaken branch is not a failure")

	require.Contains(t, res.Result.Sinks, "onTrue")
	assert.Equal(t, "BAD RESPONSE", res.Result.Sinks["onTrue"]["out"])
	assert.NotContains(t, res.Result.Sinks, "onFalse", "the untaken branch produced nothing")
}

func TestBranching_ConditionalTakesFalsePathOnMiss(t *testing.T) {
	t.Parallel()

	flowHCL := `
		node "static_text" "src" {
			config { text = "all fine" }
		}

		node "conditional" "check" {
			config {
				operator = "contains"
				value    = "bad"
			}
		}

		node "text_transform" "onTrue" {
			config { operation = "upper" }
		}

		node "text_transform" "onFalse" {
			config { operation = "lower" }
		}

		edge {
			source = "src"
			target = "check"
		}

		edge {
			source      = "check"
			source_port = "true"
			target      = "onTrue"
		}

		edge {
			source      = "check"
			source_port = "false"
			target      = "onFalse"
		}
	`

	res := testutil.RunFlowTest(t, flowHCL)

	require.NoError(t, res.Err)
	assert.Equal(t, executor.StatusCompleted, res.Result.Status)

	require.Contains(t, res.Result.Sinks, "onFalse")
	assert.Equal(t, "all fine", res.Result.Sinks["onFalse"]["out"])
	assert.NotContains(t, res.Result.Sinks, "onTrue")
}

func TestErrorHandling_FailingBranchLeavesSiblingIntact(t *testing.T) {
	t.Parallel()

	flowHCL := `
		node "static_text" "src" {
			config { text = "payload" }
		}

		node "delay" "broken" {
			config { duration = "not-a-duration" }
		}

		node "text_transform" "afterBroken" {}

		node "text_transform" "healthy" {
			config { operation = "upper" }
		}

		edge {
			source = "src"
			target = "broken"
		}

		edge {
			source = "broken"
			target = "afterBroken"
		}

		edge {
			source = "src"
			target = "healthy"
		}
	`

	res := testutil.RunFlowTest(t, flowHCL)

	require.NoError(t, res.Err)
	assert.Equal(t, executor.StatusPartial, res.Result.Status)

	require.Len(t, res.Result.Failures, 1)
	assert.Equal(t, "broken", res.Result.Failures[0].NodeID)

	require.Contains(t, res.Result.Sinks, "healthy")
	assert.Equal(t, "PAYLOAD", res.Result.Sinks["healthy"]["out"])
	assert.NotContains(t, res.Result.Sinks, "afterBroken", "downstream of the failure is skipped")
}

func TestTemplate_CombinerToleratesFailedInput(t *testing.T) {
	t.Parallel()

	flowHCL := `
		node "static_text" "left" {
			config { text = "kept" }
		}

		node "delay" "right" {
			config { duration = "nope" }
		}

		node "template" "combine" {
			config { template = "left={{.a}} right={{.b}}" }
		}

		edge {
			source      = "left"
			target      = "combine"
			target_port = "a"
		}

		edge {
			source      = "right"
			target      = "combine"
			target_port = "b"
		}
	`

	res := testutil.RunFlowTest(t, flowHCL)

	require.NoError(t, res.Err)
	assert.Equal(t, executor.StatusPartial, res.Result.Status)

	require.Contains(t, res.Result.Sinks, "combine")
	assert.Equal(t, "left=kept right=", res.Result.Sinks["combine"]["out"])
}

func TestPlanning_UndeclaredPortEdgeIsDropped(t *testing.T) {
	t.Parallel()

	flowHCL := `
		node "static_text" "src" {
			config { text = "x" }
		}

		node "print" "sink" {}

		edge {
			source      = "src"
			source_port = "no_such_port"
			target      = "sink"
		}
	`

	res := testutil.RunFlowTest(t, flowHCL)

	// The edge is excluded, leaving two disconnected nodes that both run.
	require.NoError(t, res.Err)
	assert.Equal(t, executor.StatusCompleted, res.Result.Status)
	assert.Contains(t, res.LogOutput, "Excluding edge")
}

func TestCancellation_PreCanceledContextRunsNothing(t *testing.T) {
	t.Parallel()

	flowHCL := `
		node "static_text" "src" {
			config { text = "x" }
		}
	`

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := testutil.RunFlowTestWithContext(ctx, t, flowHCL)

	require.NoError(t, res.Err)
	assert.Equal(t, executor.StatusCanceled, res.Result.Status)
	assert.Empty(t, res.Result.Sinks)
}
