package scheduler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/taskcore/scheduler/internal/queue"
	"github.com/taskcore/scheduler/metrics"
	"github.com/taskcore/scheduler/pool"
)

type pendingEntry struct {
	task       Task
	enqueuedAt time.Time
}

type deferredEntry struct {
	task       DeferredTask
	enqueuedAt time.Time
}

// Scheduler is the main-thread coordinator: a priority queue over a
// readiness-gated timeline, backed by a fixed Worker Pool. Call Tick once per
// application frame. Scheduler is itself a Subsystem, so it can be registered
// with a Registry alongside application-defined subsystems and shut down in
// the same coordinated sweep.
type Scheduler struct {
	name string
	cfg  Config
	pool *pool.Pool

	mu              sync.Mutex
	pending         []pendingEntry
	deferredPending []deferredEntry
	runList         *queue.Queue
	nextWorker      int

	inFlight     atomic.Int64
	shuttingDown atomic.Bool

	shutdownToken   ServiceToken
	shutdownPromise Promise[struct{}]
	shutdownFuture  Future[struct{}]

	tasksScheduled  metrics.Counter
	tasksDispatched metrics.Counter
	tasksInFlight   metrics.UpDownCounter
	executionTime   metrics.Histogram
	starvationBumps metrics.Counter
}

// NewScheduler constructs a Scheduler and starts its worker pool. name is
// the key it registers under if added to a Registry.
func NewScheduler(name string, opts ...Option) (*Scheduler, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		name:    name,
		cfg:     cfg,
		runList: queue.New(),

		tasksScheduled:  cfg.Metrics.Counter("scheduler_tasks_scheduled_total"),
		tasksDispatched: cfg.Metrics.Counter("scheduler_tasks_dispatched_total"),
		tasksInFlight:   cfg.Metrics.UpDownCounter("scheduler_tasks_in_flight", metrics.WithDescription("tasks currently executing on a worker")),
		executionTime:   cfg.Metrics.Histogram("scheduler_task_execution_seconds", metrics.WithUnit("seconds")),
		starvationBumps: cfg.Metrics.Counter("scheduler_starvation_bumps_total"),
	}
	s.pool = pool.NewFixed(cfg.WorkerCount, s.onWorkerPanic)
	s.shutdownPromise, s.shutdownFuture = NewFuture[struct{}]()
	return s, nil
}

// Name implements Subsystem.
func (s *Scheduler) Name() string { return s.name }

// GetFuture implements Subsystem: it reaches a terminal state (ForceCanceled,
// carrying the shutdown token) once every pending and dispatched task has
// drained following BeginShutdown.
func (s *Scheduler) GetFuture() FutureAny { return s.shutdownFuture }

// Link implements Subsystem. The Scheduler has no sibling dependencies.
func (s *Scheduler) Link(*SubsystemContext) {}

// BeginShutdown implements Subsystem: it stops accepting new submissions, and
// every later Tick force-cancels undispatched non-Critical work. Pending
// Critical tasks keep being polled and dispatched; already-dispatched tasks
// run to completion.
func (s *Scheduler) BeginShutdown(token ServiceToken) {
	if !s.shuttingDown.CompareAndSwap(false, true) {
		return
	}
	s.mu.Lock()
	s.shutdownToken = token
	s.mu.Unlock()
	s.cfg.Diagnostics.shutdownBegin(s.name)
}

// Schedule submits a task for eventual dispatch. It may be called from any
// goroutine. Returns ErrSchedulerShuttingDown once BeginShutdown has run.
func Schedule[T any](s *Scheduler, priority Priority, trace TraceInfo, readiness func(elapsed time.Duration) TaskReadiness, body func(Promise[T], RequestProxy)) (Future[T], error) {
	if s.shuttingDown.Load() {
		var zero Future[T]
		return zero, ErrSchedulerShuttingDown
	}
	task, future := NewTask[T](priority, trace, readiness, body)
	s.enqueuePending(task)
	s.cfg.Diagnostics.taskScheduled(task.id, trace, priority)
	s.tasksScheduled.Add(1)
	return future, nil
}

// ScheduleDeferred submits a deferred task, whose schedule closure runs on
// the main thread (inside Tick) once its readiness closure reports Ready.
func ScheduleDeferred[T any](s *Scheduler, trace TraceInfo, readiness func(elapsed time.Duration) TaskReadiness, body func(Promise[T], RequestProxy)) (Future[T], error) {
	if s.shuttingDown.Load() {
		var zero Future[T]
		return zero, ErrSchedulerShuttingDown
	}
	d, future := NewDeferredTask[T](trace, readiness, body)
	s.mu.Lock()
	s.deferredPending = append(s.deferredPending, deferredEntry{task: d, enqueuedAt: timeNow()})
	s.mu.Unlock()
	s.cfg.Diagnostics.taskScheduled(d.id, trace, Background)
	return future, nil
}

func (s *Scheduler) enqueuePending(task Task) {
	s.mu.Lock()
	s.pending = append(s.pending, pendingEntry{task: task, enqueuedAt: timeNow()})
	s.mu.Unlock()
}

// Tick runs one scheduling pass: on an ordinary tick it polls readiness,
// dispatches newly ready tasks by priority, runs ready deferred-task schedule
// closures, and bumps the priority of tasks that have starved past
// StarvationThreshold. Once shutdown has begun, it instead force-cancels
// every non-Critical task that never got a chance to run, keeps polling and
// dispatching pending Critical tasks, and, once nothing remains pending or
// dispatched, moves the Subsystem future to its terminal state.
func (s *Scheduler) Tick() {
	if s.shuttingDown.Load() {
		s.tickShuttingDown()
		return
	}
	s.pollReadiness()
	s.dispatchReady()
	s.pollDeferred()
	s.applyStarvation()
}

func (s *Scheduler) pollReadiness() {
	s.mu.Lock()
	pending := s.pending
	s.pending = s.pending[:0]
	s.mu.Unlock()

	var stillPending []pendingEntry
	for _, entry := range pending {
		switch pollReadinessSafe(entry.task.readiness, timeNow().Sub(entry.task.scheduledAt)) {
		case ReadinessReady:
			s.runList.Push(int8(entry.task.priority), entry.task.scheduledAt.UnixNano(), entry.task)
		case ReadinessCancel:
			entry.task.control.cancelFromReadiness(ServiceToken{Kind: TokenCancel, Source: SourceExecutor})
			s.cfg.Diagnostics.taskCanceled(entry.task.id, entry.task.trace, ServiceToken{Kind: TokenCancel, Source: SourceExecutor})
		default:
			stillPending = append(stillPending, entry)
		}
	}

	s.mu.Lock()
	s.pending = append(s.pending, stillPending...)
	s.mu.Unlock()
}

// pollReadinessSafe calls a readiness closure, reporting ReadinessCancel if
// the closure panics.
func pollReadinessSafe(readiness func(elapsed time.Duration) TaskReadiness, elapsed time.Duration) (r TaskReadiness) {
	defer func() {
		if recover() != nil {
			r = ReadinessCancel
		}
	}()
	return readiness(elapsed)
}

func (s *Scheduler) dispatchReady() {
	for s.runList.Len() > 0 {
		entry := s.runList.Pop()
		task := entry.Value.(Task)
		s.dispatch(task)
	}
}

func (s *Scheduler) dispatch(task Task) {
	task.control.setExecuting()
	s.inFlight.Add(1)
	s.tasksInFlight.Add(1)

	s.mu.Lock()
	workerIndex := s.nextWorker
	s.nextWorker++
	s.mu.Unlock()

	s.cfg.Diagnostics.taskDispatched(task.id, task.trace, workerIndex%s.pool.Size())
	s.tasksDispatched.Add(1)

	start := timeNow()
	s.pool.Dispatch(workerIndex, pool.Job{
		Trace: task.trace.String(),
		Run: func() {
			defer func() {
				s.inFlight.Add(-1)
				s.tasksInFlight.Add(-1)
				s.executionTime.Record(timeNow().Sub(start).Seconds())
			}()
			task.run(task.control.proxy())
			s.reportOutcome(task)
		},
	})
}

func (s *Scheduler) reportOutcome(task Task) {
	switch task.control.status() {
	case Completed:
		s.cfg.Diagnostics.taskCompleted(task.id, task.trace)
	case Suspended:
		s.cfg.Diagnostics.taskSuspended(task.id, task.trace)
		// A suspended task is re-queued once its readiness closure (unchanged)
		// reports Ready again; requeue it directly into pending so the next
		// tick's readiness sweep picks it back up.
		s.enqueuePending(task)
	case Canceled:
		s.cfg.Diagnostics.taskCanceled(task.id, task.trace, ServiceToken{})
	case ForceCanceled:
		s.cfg.Diagnostics.taskForceCanceled(task.id, task.trace)
	}
}

func (s *Scheduler) pollDeferred() {
	s.mu.Lock()
	pending := s.deferredPending
	s.deferredPending = s.deferredPending[:0]
	s.mu.Unlock()

	var stillPending []deferredEntry
	for _, entry := range pending {
		switch pollReadinessSafe(entry.task.readiness, timeNow().Sub(entry.enqueuedAt)) {
		case ReadinessReady:
			entry.task.control.setExecuting()
			entry.task.schedule(entry.task.control.proxy())
		case ReadinessCancel:
			entry.task.control.cancelFromReadiness(ServiceToken{Kind: TokenCancel, Source: SourceExecutor})
		default:
			stillPending = append(stillPending, entry)
		}
	}

	s.mu.Lock()
	s.deferredPending = append(s.deferredPending, stillPending...)
	s.mu.Unlock()
}

// tickShuttingDown marks every non-Critical pending or queued task for
// force-cancellation; Critical tasks are never force-cancelled, win or lose,
// so they are left in pending and get the same readiness-poll-then-dispatch
// treatment an ordinary tick would give them. Deferred tasks carry no
// priority of their own (ScheduleDeferred always reports them as Background,
// see diagnostics.taskScheduled call site) and are force-cancelled
// unconditionally.
func (s *Scheduler) tickShuttingDown() {
	s.mu.Lock()
	token := s.shutdownToken
	pending := s.pending
	s.pending = nil
	deferredPending := s.deferredPending
	s.deferredPending = nil
	remaining := s.runList.Drain()
	s.mu.Unlock()

	var retained []pendingEntry
	for _, entry := range pending {
		if entry.task.priority == Critical {
			retained = append(retained, entry)
			continue
		}
		if entry.task.control.forceCancel(token) {
			s.cfg.Diagnostics.taskForceCanceled(entry.task.id, entry.task.trace)
		}
	}
	for _, entry := range deferredPending {
		entry.task.control.forceCancel(token)
	}
	for _, e := range remaining {
		task := e.Value.(Task)
		if task.priority == Critical {
			retained = append(retained, pendingEntry{task: task, enqueuedAt: timeNow()})
			continue
		}
		if task.control.forceCancel(token) {
			s.cfg.Diagnostics.taskForceCanceled(task.id, task.trace)
		}
	}

	if len(retained) > 0 {
		s.mu.Lock()
		s.pending = append(s.pending, retained...)
		s.mu.Unlock()
		s.pollReadiness()
		s.dispatchReady()
	}

	s.mu.Lock()
	pendingEmpty := len(s.pending) == 0
	s.mu.Unlock()

	if s.inFlight.Load() == 0 && pendingEmpty && s.runList.Len() == 0 && !s.shutdownFuture.IsDone() {
		// The shutdown fence promise starts Scheduled and never runs a body,
		// so it is retired through the same forceCancel path pending tasks
		// use rather than NotifyCompleted, which requires an Executing state
		// this promise never enters.
		s.shutdownPromise.control().forceCancel(token)
	}
}

func (s *Scheduler) onWorkerPanic(trace string, recovered any) {
	s.cfg.Diagnostics.logger().Sugar().Errorw("task run panicked", "trace", trace, "recovered", recovered)
}

// Close stops the worker pool, waiting for jobs already handed to it to
// finish. Call only after shutdown has fully drained (i.e.
// GetFuture().IsDone()); it does not itself cancel or drain pending tasks.
func (s *Scheduler) Close() {
	s.pool.Close()
}
