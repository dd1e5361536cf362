package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RunAll schedules one Task per body, all at the given priority, and blocks
// until every resulting Future reaches a terminal state or ctx is done.
// Results are returned in the same order as bodies, addressed by each task's
// own Future rather than completion order, since a Promise/Future pair (unlike
// the channel-draining model this replaces) is individually addressable.
func RunAll[T any](ctx context.Context, s *Scheduler, priority Priority, trace TraceInfo, bodies []func(Promise[T], RequestProxy)) ([]T, error) {
	futures := make([]Future[T], len(bodies))
	for i, body := range bodies {
		f, err := Schedule[T](s, priority, trace, alwaysReady, body)
		if err != nil {
			return nil, err
		}
		futures[i] = f
	}
	return awaitAll(ctx, futures)
}

// Map fans out items through fn, one Task per item, and returns results
// addressed by each item's own Future (i.e. in input order, not completion
// order).
func Map[TIn, TOut any](ctx context.Context, s *Scheduler, priority Priority, trace TraceInfo, items []TIn, fn func(TIn) TOut) ([]TOut, error) {
	if len(items) == 0 {
		return nil, nil
	}
	bodies := make([]func(Promise[TOut], RequestProxy), len(items))
	for i := range items {
		item := items[i]
		bodies[i] = func(p Promise[TOut], _ RequestProxy) {
			p.NotifyCompleted(fn(item))
		}
	}
	return RunAll[TOut](ctx, s, priority, trace, bodies)
}

// ForEach applies fn to each item concurrently via the Scheduler and returns
// the aggregated error (errors.Join), or nil once every item's task has
// completed without error.
func ForEach[TIn any](ctx context.Context, s *Scheduler, priority Priority, trace TraceInfo, items []TIn, fn func(TIn) error) error {
	if len(items) == 0 {
		return nil
	}
	bodies := make([]func(Promise[error], RequestProxy), len(items))
	for i := range items {
		item := items[i]
		bodies[i] = func(p Promise[error], _ RequestProxy) {
			p.NotifyCompleted(fn(item))
		}
	}
	results, err := RunAll[error](ctx, s, priority, trace, bodies)
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range results {
		if e != nil {
			errs = append(errs, e)
		}
	}
	return errors.Join(errs...)
}

func awaitAll[T any](ctx context.Context, futures []Future[T]) ([]T, error) {
	results := make([]T, len(futures))
	var errs []error
	for i, f := range futures {
		if err := waitDone(ctx, f); err != nil {
			errs = append(errs, err)
			continue
		}
		v, ok := f.CopyResult()
		if !ok {
			if token, hasToken := f.Token(); hasToken {
				errs = append(errs, newCorrelatedError(errors.New("task did not complete: "+token.Kind.String()), ""))
			}
			continue
		}
		results[i] = v
	}
	return results, errors.Join(errs...)
}

// waitDone polls f with exponential backoff until it reports a terminal
// state, or ctx is canceled. This mirrors Registry.WaitForShutdown's own
// "poll with growing patience" idiom rather than a busy loop, since a Future
// exposes no channel or callback to block on directly.
func waitDone[T any](ctx context.Context, f Future[T]) error {
	op := func() (struct{}, error) {
		if f.IsDone() {
			return struct{}{}, nil
		}
		return struct{}{}, errShutdownPending
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Millisecond
	b.MaxInterval = 50 * time.Millisecond
	_, err := backoff.Retry(ctx, op, backoff.WithBackOff(b))
	return err
}
