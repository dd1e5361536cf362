package scheduler

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChain_RunsStagesInOrder(t *testing.T) {
	c := NewChain[int]()
	c2 := Then(c, func(n int) int { return n + 1 })
	c3 := Then(c2, func(n int) string { return "value=" + strconv.Itoa(n) })

	task, future := c3.ToTask(Background, TraceInfo{Content: "chain"}, alwaysReady, 1)
	task.control.setExecuting()
	task.run(task.control.proxy())

	require.Equal(t, Completed, future.Status())
	v, ok := future.CopyResult()
	require.True(t, ok)
	require.Equal(t, "value=2", v)
}

func TestChain_CancelRequestStopsBeforeNextStage(t *testing.T) {
	var secondStageRan bool
	c := NewChain[int]()
	c2 := Then(c, func(n int) int {
		return n
	})
	c3 := Then(c2, func(n int) int {
		secondStageRan = true
		return n
	})

	task, future := c3.ToTask(Background, TraceInfo{}, alwaysReady, 0)
	future.RequestCancel()

	task.control.setExecuting()
	task.run(task.control.proxy())

	require.Equal(t, Canceled, future.Status())
	require.False(t, secondStageRan, "a canceled chain must not run the next stage")
}

func TestChain_SuspendThenResumeContinuesFromSameStage(t *testing.T) {
	var secondStageRan bool
	c := NewChain[int]()
	c2 := Then(c, func(n int) int { return n + 1 })
	c3 := Then(c2, func(n int) int {
		secondStageRan = true
		return n + 1
	})

	task, future := c3.ToTask(Background, TraceInfo{}, alwaysReady, 0)
	future.RequestSuspend()

	task.control.setExecuting()
	task.run(task.control.proxy())

	require.Equal(t, Suspended, future.Status())
	require.False(t, secondStageRan)

	future.RequestResume()
	task.control.setExecuting()
	task.run(task.control.proxy())

	require.True(t, secondStageRan)
	require.Equal(t, Completed, future.Status())
	v, _ := future.CopyResult()
	require.Equal(t, 2, v)
}

func TestChain_StagePanicEndsAsForceCanceled(t *testing.T) {
	c := NewChain[int]()
	c2 := Then(c, func(int) int { panic("boom") })

	task, future := c2.ToTask(Background, TraceInfo{}, alwaysReady, 0)
	task.control.setExecuting()
	task.run(task.control.proxy())

	require.Equal(t, ForceCanceled, future.Status())
	token, ok := future.Token()
	require.True(t, ok)
	require.Equal(t, SourceExecutor, token.Source)
}

