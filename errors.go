package scheduler

import (
	"fmt"

	"github.com/pkg/errors"
)

// Namespace prefixes every sentinel error this package defines, so callers
// can recognize them in logs without importing the package.
const Namespace = "scheduler"

var (
	// ErrSubsystemExists is returned by Registry.Register when a Subsystem of
	// the same name is already registered.
	ErrSubsystemExists = errors.New(Namespace + ": subsystem already registered under this name")

	// ErrSubsystemNotFound names a lookup of an unregistered subsystem.
	// Registry.Get and SubsystemContext.Get report such a miss through their
	// boolean result and do not return this error.
	ErrSubsystemNotFound = errors.New(Namespace + ": subsystem not found")

	// ErrSchedulerShuttingDown is returned by Schedule/ScheduleDeferred once
	// BeginShutdown has been called.
	ErrSchedulerShuttingDown = errors.New(Namespace + ": scheduler is shutting down")

	// ErrInvalidConfig is wrapped with details by Config.validate.
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")

	// errShutdownPending is a private retry signal for Registry.WaitForShutdown;
	// it is never returned to callers.
	errShutdownPending = errors.New(Namespace + ": subsystem shutdown still pending")
)

// PreconditionViolation reports that a Promise notify method, or another
// precondition-bearing call, was invoked from a FutureState that does not
// permit it. It is always raised as a panic: it signals a bug in the calling
// task body, not a recoverable runtime failure.
type PreconditionViolation struct {
	Method string
	State  FutureState
}

func (e *PreconditionViolation) Error() string {
	return fmt.Sprintf("%s: %s called from state %s", Namespace, e.Method, e.State)
}

func preconditionViolation(method string, state FutureState) error {
	return errors.WithStack(&PreconditionViolation{Method: method, State: state})
}

// CorrelatedError tags an error with the CorrelationID of the task or
// subsystem operation that produced it, so diagnostics can line up a failure
// with the TraceInfo logged when the task was scheduled.
type CorrelatedError interface {
	error
	Unwrap() error
	CorrelationID() (string, bool)
}

type correlatedError struct {
	err error
	id  string
}

func newCorrelatedError(err error, id string) error {
	if err == nil {
		return nil
	}
	return &correlatedError{err: err, id: id}
}

func (e *correlatedError) Error() string { return e.err.Error() }
func (e *correlatedError) Unwrap() error { return e.err }

func (e *correlatedError) CorrelationID() (string, bool) {
	if e.id == "" {
		return "", false
	}
	return e.id, true
}

// ExtractCorrelationID returns the correlation ID tagged onto err, if any.
func ExtractCorrelationID(err error) (string, bool) {
	var ce CorrelatedError
	if errors.As(err, &ce) {
		return ce.CorrelationID()
	}
	return "", false
}
