package scheduler

import (
	"time"

	"github.com/taskcore/scheduler/metrics"
)

// Option configures a Scheduler. Use NewScheduler(opts...) to construct one.
type Option func(*Config)

// WithWorkerCount sets the fixed worker pool size.
func WithWorkerCount(n int) Option {
	return func(c *Config) { c.WorkerCount = n }
}

// WithStarvationThreshold sets how long a task may stay pending, not yet
// reported ready, before its priority is bumped.
func WithStarvationThreshold(d time.Duration) Option {
	return func(c *Config) { c.StarvationThreshold = d }
}

// WithReferenceTime sets Config.ReferenceTime. The scheduler's timing reads
// time.Now and does not consult this value.
func WithReferenceTime(t time.Time) Option {
	return func(c *Config) { c.ReferenceTime = t }
}

// WithDiagnostics sets the structured logger the scheduler reports through.
func WithDiagnostics(d Diagnostics) Option {
	return func(c *Config) { c.Diagnostics = d }
}

// WithMetricsProvider sets the metrics.Provider the scheduler records
// instruments through.
func WithMetricsProvider(p metrics.Provider) Option {
	return func(c *Config) { c.Metrics = p }
}
