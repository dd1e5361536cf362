package scheduler

import (
	"time"

	"github.com/pkg/errors"

	"github.com/taskcore/scheduler/metrics"
)

// Config holds Scheduler configuration. Build one with defaultConfig and a
// set of Options rather than constructing it directly, so future fields pick
// up sane defaults automatically.
type Config struct {
	// WorkerCount sizes the fixed worker pool. Must be > 0.
	// Default: runtime.GOMAXPROCS(0)
	WorkerCount int

	// StarvationThreshold is how long a task may stay pending (its readiness
	// closure not yet reporting Ready) before its priority is bumped one
	// level. Must be > 0.
	// Default: 2 seconds.
	StarvationThreshold time.Duration

	// ReferenceTime is stored with the configuration. The scheduler's
	// readiness, starvation and execution timings read the package clock
	// (time.Now) and do not consult this field.
	// Default: time.Now() at construction.
	ReferenceTime time.Time

	// Diagnostics receives structured logs for task and subsystem lifecycle
	// events. Default: a no-op logger.
	Diagnostics Diagnostics

	// Metrics receives the scheduler's instruments: tasks scheduled, tasks
	// dispatched, tasks in flight, task execution time, and starvation bumps.
	// Default: metrics.NewNoopProvider().
	Metrics metrics.Provider
}

func (cfg Config) validate() error {
	if cfg.WorkerCount <= 0 {
		return errors.Wrap(ErrInvalidConfig, "WorkerCount must be > 0")
	}
	if cfg.StarvationThreshold <= 0 {
		return errors.Wrap(ErrInvalidConfig, "StarvationThreshold must be > 0")
	}
	if cfg.Metrics == nil {
		return errors.Wrap(ErrInvalidConfig, "Metrics must not be nil")
	}
	return nil
}
