package scheduler

import (
	"time"

	"github.com/google/uuid"
)

// TaskReadiness is returned by a Task's or DeferredTask's readiness closure on
// every poll, and tells the Scheduler whether to dispatch it this tick.
type TaskReadiness int8

const (
	// ReadinessReady means the task may be dispatched now.
	ReadinessReady TaskReadiness = iota
	// ReadinessAwaiting means the task is not yet ready; poll again next tick.
	ReadinessAwaiting
	// ReadinessCancel means the task's precondition can never be satisfied and
	// it should be canceled without ever running.
	ReadinessCancel
)

func (r TaskReadiness) String() string {
	switch r {
	case ReadinessReady:
		return "ready"
	case ReadinessCancel:
		return "cancel"
	default:
		return "awaiting"
	}
}

// Task is a single opaque unit of work the Scheduler dispatches to the Worker
// Pool once its readiness closure reports ReadinessReady. Tasks are created
// through NewTask, never constructed directly, so every Task carries a live
// taskControl wired to the Future it was vended with.
type Task struct {
	id          string
	priority    Priority
	trace       TraceInfo
	scheduledAt time.Time

	readiness func(elapsed time.Duration) TaskReadiness
	run       func(RequestProxy)
	control   taskControl
}

// CorrelationID is a unique identifier minted for every Task and DeferredTask,
// surfaced in Diagnostics so a single task's readiness polls, dispatch, and
// completion can be traced through logs.
func (t Task) CorrelationID() string { return t.id }

// Priority returns the task's dispatch priority.
func (t Task) Priority() Priority { return t.priority }

// Trace returns the task's diagnostics descriptor.
func (t Task) Trace() TraceInfo { return t.trace }

// NewTask builds a Task together with the Future observers use to watch it.
// readiness is polled by the Scheduler once per tick until it reports
// anything but ReadinessAwaiting; body is invoked on a worker goroutine once
// dispatched, and must call exactly one of promise's Notify* methods before
// returning (a return without one is treated as NotifyCompleted with T's zero
// value, so a body that forgets to notify still completes rather than
// hanging its Future forever).
func NewTask[T any](priority Priority, trace TraceInfo, readiness func(elapsed time.Duration) TaskReadiness, body func(Promise[T], RequestProxy)) (Task, Future[T]) {
	promise, future := NewFuture[T]()
	t := Task{
		id:          uuid.NewString(),
		priority:    priority,
		trace:       trace,
		scheduledAt: timeNow(),
		readiness:   readiness,
		control:     promise.control(),
		run: func(proxy RequestProxy) {
			body(promise, proxy)
			if future.Status() == Executing {
				var zero T
				promise.NotifyCompleted(zero)
			}
		},
	}
	return t, future
}

// DeferredTask is a unit of work whose own "run" step is to schedule something
// else onto the Scheduler, e.g. submitting a follow-up Task once some external
// condition holds. Its schedule closure always runs on the main thread, never
// on a worker goroutine, since it is expected to call back into the Scheduler.
type DeferredTask struct {
	id    string
	trace TraceInfo

	readiness func(elapsed time.Duration) TaskReadiness
	schedule  func(RequestProxy)
	control   taskControl
}

// CorrelationID returns the deferred task's unique identifier.
func (d DeferredTask) CorrelationID() string { return d.id }

// Trace returns the deferred task's diagnostics descriptor.
func (d DeferredTask) Trace() TraceInfo { return d.trace }

// NewDeferredTask builds a DeferredTask and its Future. schedule is invoked on
// the main thread, inside Scheduler.Tick, once readiness reports
// ReadinessReady.
func NewDeferredTask[T any](trace TraceInfo, readiness func(elapsed time.Duration) TaskReadiness, schedule func(Promise[T], RequestProxy)) (DeferredTask, Future[T]) {
	promise, future := NewFuture[T]()
	d := DeferredTask{
		id:        uuid.NewString(),
		trace:     trace,
		readiness: readiness,
		control:   promise.control(),
		schedule: func(proxy RequestProxy) {
			schedule(promise, proxy)
			if future.Status() == Executing {
				var zero T
				promise.NotifyCompleted(zero)
			}
		},
	}
	return d, future
}

// timeNow is a seam so tests can substitute a deterministic clock; production
// code always calls time.Now.
var timeNow = time.Now

// alwaysReady is the readiness closure for tasks with no precondition at all:
// every poll reports ReadinessReady regardless of elapsed time.
func alwaysReady(time.Duration) TaskReadiness { return ReadinessReady }
