package scheduler

import "go.uber.org/zap"

// Diagnostics wraps a *zap.Logger with the fields this package logs
// consistently: the task correlation ID and its TraceInfo. It has no effect
// on scheduling behavior; it exists purely to make a running scheduler
// observable.
type Diagnostics struct {
	log *zap.Logger
}

// NewDiagnostics wraps an existing zap logger. A nil logger is replaced with
// zap.NewNop(), so a zero-value Diagnostics is always safe to use.
func NewDiagnostics(log *zap.Logger) Diagnostics {
	if log == nil {
		log = zap.NewNop()
	}
	return Diagnostics{log: log}
}

func (d Diagnostics) logger() *zap.Logger {
	if d.log == nil {
		return zap.NewNop()
	}
	return d.log
}

func (d Diagnostics) taskFields(id string, trace TraceInfo) []zap.Field {
	return []zap.Field{
		zap.String("correlation_id", id),
		zap.String("trace_content", trace.Content),
		zap.String("trace_purpose", trace.Purpose),
	}
}

func (d Diagnostics) taskScheduled(id string, trace TraceInfo, priority Priority) {
	d.logger().Debug("task scheduled", append(d.taskFields(id, trace), zap.Stringer("priority", priority))...)
}

func (d Diagnostics) taskDispatched(id string, trace TraceInfo, workerIndex int) {
	d.logger().Debug("task dispatched", append(d.taskFields(id, trace), zap.Int("worker_index", workerIndex))...)
}

func (d Diagnostics) taskCanceled(id string, trace TraceInfo, token ServiceToken) {
	d.logger().Info("task canceled", append(d.taskFields(id, trace),
		zap.Stringer("token_kind", token.Kind), zap.Stringer("token_source", token.Source))...)
}

func (d Diagnostics) taskForceCanceled(id string, trace TraceInfo) {
	d.logger().Warn("task force-canceled at shutdown", d.taskFields(id, trace)...)
}

func (d Diagnostics) taskSuspended(id string, trace TraceInfo) {
	d.logger().Debug("task suspended", d.taskFields(id, trace)...)
}

func (d Diagnostics) taskCompleted(id string, trace TraceInfo) {
	d.logger().Debug("task completed", d.taskFields(id, trace)...)
}

func (d Diagnostics) subsystemRegistered(name string) {
	d.logger().Info("subsystem registered", zap.String("subsystem", name))
}

func (d Diagnostics) subsystemRegistrationConflict(name string) {
	d.logger().Error("subsystem registration conflict", zap.String("subsystem", name))
}

func (d Diagnostics) shutdownBegin(name string) {
	d.logger().Info("subsystem shutdown requested", zap.String("subsystem", name))
}

func (d Diagnostics) shutdownComplete(name string) {
	d.logger().Info("subsystem shutdown complete", zap.String("subsystem", name))
}
