package scheduler

import "time"

// ChainState captures everything needed to resume a Chain task across a
// suspend/resume cycle: which stage runs next and the value handed to it.
// Storage is a single slot wide enough to hold any stage's input or output,
// since Go generics can't express a tagged union sized to a stage list
// known only at chain-build time.
type ChainState struct {
	NextStageIndex int
	Storage        any
}

type chainStage struct {
	run func(in any) any
}

// Chain is a compile-time-typed sequence of stage functions compiled into a
// single Task. TOut is the chain's current output type; NewChain starts a
// chain and Then appends a stage, rebinding the chain's type parameter to the
// new stage's output. Between every pair of stages the compiled Task checks
// its RequestProxy: a pending cancel ends the task as Canceled, a pending
// suspend ends it as Suspended (to be resumed from exactly that stage on the
// next dispatch).
type Chain[TOut any] struct {
	stages []chainStage
}

// NewChain starts a chain whose first stage receives a TIn value supplied
// later, via ToTask's seed argument.
func NewChain[TIn any]() *Chain[TIn] {
	return &Chain[TIn]{}
}

// Then appends a stage to c and returns a chain typed by that stage's output.
// Because Go methods cannot introduce new type parameters, Then is a free
// function rather than a method on Chain.
func Then[TIn, TOut any](c *Chain[TIn], fn func(TIn) TOut) *Chain[TOut] {
	stages := make([]chainStage, len(c.stages)+1)
	copy(stages, c.stages)
	stages[len(c.stages)] = chainStage{
		run: func(in any) any {
			v, _ := in.(TIn)
			return fn(v)
		},
	}
	return &Chain[TOut]{stages: stages}
}

// ToTask compiles the chain into a Task. seed is the value fed to the first
// stage and must be the TIn type the chain was started with in NewChain.
func (c *Chain[TOut]) ToTask(priority Priority, trace TraceInfo, readiness func(elapsed time.Duration) TaskReadiness, seed any) (Task, Future[TOut]) {
	state := &ChainState{Storage: seed}
	stages := c.stages
	return NewTask[TOut](priority, trace, readiness, func(promise Promise[TOut], proxy RequestProxy) {
		resumeChain(promise, proxy, state, stages)
	})
}

// resumeChain runs stages starting at state.NextStageIndex, stopping early on
// a cancel/suspend request or a stage panic, and advancing state.Storage and
// state.NextStageIndex as it goes so a later call (after a Suspended ->
// Executing transition) resumes exactly where it left off.
func resumeChain[TOut any](promise Promise[TOut], proxy RequestProxy, state *ChainState, stages []chainStage) {
	for state.NextStageIndex < len(stages) {
		if proxy.FetchCancelRequest() == CancelRequested {
			promise.NotifyCanceled(ServiceToken{Kind: TokenCancel, Source: SourceUserRequest})
			return
		}
		if proxy.FetchSuspendRequest() == SuspendRequested {
			promise.NotifySuspended(ServiceToken{Kind: TokenSuspend, Source: SourceUserRequest})
			return
		}

		out, panicked := runStage(stages[state.NextStageIndex], state.Storage)
		if panicked {
			promise.NotifyForceCanceled(ServiceToken{Kind: TokenCancel, Source: SourceExecutor})
			return
		}
		state.Storage = out
		state.NextStageIndex++
	}
	out, _ := state.Storage.(TOut)
	promise.NotifyCompleted(out)
}

func runStage(stage chainStage, in any) (out any, panicked bool) {
	defer func() {
		if recover() != nil {
			panicked = true
		}
	}()
	out = stage.run(in)
	return out, false
}
