// Package scheduler implements a cooperative, priority-aware task scheduler core:
// a priority queue over a readiness-gated timeline, a promise/future concurrency
// primitive, a typed task chain with implicit suspension checkpoints, a fixed
// worker pool, and a subsystem lifecycle manager that coordinates shutdown with
// pending work.
//
// # Core types
//
//   - Promise[T] / Future[T]: the two halves of one task's shared lifecycle cell.
//     Promise is held by the running task; Future is held by observers.
//   - Task / DeferredTask: opaque scheduled units with a run closure, a readiness
//     closure, a Priority, and TraceInfo for diagnostics.
//   - Chain[T]: a typed sequence of stage functions compiled into a single Task,
//     with an implicit cancel/suspend checkpoint between every pair of stages.
//   - Scheduler: the main-thread coordinator. Call Tick once per application frame;
//     it polls readiness, dispatches ready tasks to the worker pool by priority,
//     and runs deferred-task schedule closures.
//   - Registry: a name-unique, insertion-ordered collection of Subsystems (the
//     Scheduler is itself one), with a two-phase BeginShutdown/WaitForShutdown
//     coordinated across all of them.
//
// # Defaults
//
// Unless overridden via Option, a newly constructed Scheduler uses:
//   - WorkerCount: runtime.GOMAXPROCS(0)
//   - StarvationThreshold: 2 seconds
//   - ReferenceTime: time.Now() at construction
//   - Diagnostics: a no-op logger
//   - Metrics: metrics.NewNoopProvider()
//
// # Concurrency
//
// Schedule and ScheduleDeferred may be called from any
// goroutine; Tick, readiness closures, and deferred schedule closures must only
// ever be invoked from the single goroutine that owns the scheduler ("the main
// thread"). Task run closures execute on worker goroutines from the Worker Pool.
//
// # Out of scope
//
// This package has no opinion on GUI/widget trees, windowing, HTTP clients, or
// CLI/config bootstrap; those are external collaborators that submit tasks, read
// futures, register subsystems, and receive per-tick callbacks.
package scheduler
