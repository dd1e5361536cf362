package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Registry is a name-unique, insertion-ordered collection of Subsystems. It
// coordinates the two phases of an orderly shutdown: BeginShutdown tells
// every subsystem to start winding down, and WaitForShutdown blocks until
// every subsystem's own future reports done.
type Registry struct {
	diagnostics Diagnostics

	mu         sync.Mutex
	order      []string
	subsystems map[string]Subsystem
	linked     bool
}

// NewRegistry constructs an empty Registry.
func NewRegistry(diagnostics Diagnostics) *Registry {
	return &Registry{
		diagnostics: diagnostics,
		subsystems:  make(map[string]Subsystem),
	}
}

// Register adds s under its own Name(). It fails with ErrSubsystemExists if
// that name is already taken.
func (r *Registry) Register(s Subsystem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.subsystems[name]; exists {
		r.diagnostics.subsystemRegistrationConflict(name)
		return errors.Wrapf(ErrSubsystemExists, "subsystem %q", name)
	}
	r.subsystems[name] = s
	r.order = append(r.order, name)
	r.diagnostics.subsystemRegistered(name)
	return nil
}

// Get looks up a subsystem by name.
func (r *Registry) Get(name string) (Subsystem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(name)
}

func (r *Registry) getLocked(name string) (Subsystem, bool) {
	s, ok := r.subsystems[name]
	return s, ok
}

// Enumerate lists every registered subsystem's name, in registration order.
func (r *Registry) Enumerate() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Link calls Link(ctx) on every registered subsystem, in registration order.
// It must be called exactly once, after the last Register and before the
// first Tick; later calls are no-ops.
func (r *Registry) Link() {
	r.mu.Lock()
	if r.linked {
		r.mu.Unlock()
		return
	}
	r.linked = true
	r.mu.Unlock()

	// Called without r.mu held, so a subsystem's Link may use ctx.Get and
	// ctx.Enumerate, which lock the registry themselves.
	ctx := &SubsystemContext{registry: r}
	for _, s := range r.snapshot() {
		s.Link(ctx)
	}
}

// Tick calls Tick on every registered subsystem, in registration order.
func (r *Registry) Tick() {
	for _, s := range r.snapshot() {
		s.Tick()
	}
}

// BeginShutdown requests every registered subsystem begin winding down, in
// registration order. It does not block; pair it with WaitForShutdown.
func (r *Registry) BeginShutdown(token ServiceToken) {
	for _, s := range r.snapshot() {
		s.BeginShutdown(token)
	}
}

// WaitForShutdown polls every subsystem's future with exponential backoff
// until all report done, or ctx is canceled. Subsystems are polled
// concurrently, since one subsystem draining slowly must not delay observing
// that another has already finished.
func (r *Registry) WaitForShutdown(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range r.snapshot() {
		s := s
		g.Go(func() error { return r.waitForOne(gctx, s) })
	}
	return g.Wait()
}

// Shutdown is the common case: BeginShutdown followed by WaitForShutdown.
func (r *Registry) Shutdown(ctx context.Context, token ServiceToken) error {
	r.BeginShutdown(token)
	return r.WaitForShutdown(ctx)
}

// AllShutdown reports, without blocking, whether every registered subsystem's
// future has already reached a terminal state. Unlike WaitForShutdown it
// never polls or waits; callers that want to drive their own loop (e.g. an
// application's own frame loop) call this once per frame instead.
func (r *Registry) AllShutdown() bool {
	for _, s := range r.snapshot() {
		if !s.GetFuture().IsDone() {
			return false
		}
	}
	return true
}

func (r *Registry) snapshot() []Subsystem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Subsystem, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.subsystems[name])
	}
	return out
}

func (r *Registry) waitForOne(ctx context.Context, s Subsystem) error {
	op := func() (struct{}, error) {
		if s.GetFuture().IsDone() {
			return struct{}{}, nil
		}
		return struct{}{}, errShutdownPending
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	_, err := backoff.Retry(ctx, op, backoff.WithBackOff(b))
	if err != nil {
		return errors.Wrapf(err, "subsystem %q did not shut down", s.Name())
	}
	r.diagnostics.shutdownComplete(s.Name())
	return nil
}
