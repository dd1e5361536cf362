package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTask_FallOffEndCompletesWithZeroValue(t *testing.T) {
	task, future := NewTask[int](Interactive, TraceInfo{Content: "noop"}, alwaysReady, func(Promise[int], RequestProxy) {
		// deliberately does not call any Notify* method
	})

	task.control.setExecuting()
	task.run(task.control.proxy())

	require.Equal(t, Completed, future.Status())
	v, ok := future.CopyResult()
	require.True(t, ok)
	require.Zero(t, v)
}

func TestNewTask_ExplicitNotifyIsRespected(t *testing.T) {
	task, future := NewTask[string](Critical, TraceInfo{}, alwaysReady, func(p Promise[string], _ RequestProxy) {
		p.NotifyCompleted("hello")
	})

	task.control.setExecuting()
	task.run(task.control.proxy())

	v, ok := future.CopyResult()
	require.True(t, ok)
	require.Equal(t, "hello", v)
}

func TestNewDeferredTask_SchedulesOnDemand(t *testing.T) {
	var scheduled bool
	d, future := NewDeferredTask[struct{}](TraceInfo{}, alwaysReady, func(p Promise[struct{}], _ RequestProxy) {
		scheduled = true
		p.NotifyCompleted(struct{}{})
	})

	d.control.setExecuting()
	d.schedule(d.control.proxy())

	require.True(t, scheduled)
	require.True(t, future.IsDone())
}

func TestTask_CorrelationIDsAreUnique(t *testing.T) {
	t1, _ := NewTask[int](Background, TraceInfo{}, alwaysReady, func(Promise[int], RequestProxy) {})
	t2, _ := NewTask[int](Background, TraceInfo{}, alwaysReady, func(Promise[int], RequestProxy) {})
	require.NotEqual(t, t1.CorrelationID(), t2.CorrelationID())
}
