package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFuture_InitialState(t *testing.T) {
	_, future := NewFuture[int]()
	require.Equal(t, Scheduled, future.Status())
	require.False(t, future.IsDone())

	_, ok := future.CopyResult()
	require.False(t, ok)
}

func TestPromise_NotifyCompleted(t *testing.T) {
	promise, future := NewFuture[int]()
	promise.control().setExecuting()

	promise.NotifyCompleted(42)

	require.True(t, future.IsDone())
	require.Equal(t, Completed, future.Status())
	v, ok := future.CopyResult()
	require.True(t, ok)
	require.Equal(t, 42, v)
}

func TestPromise_NotifyCompleted_WrongStatePanics(t *testing.T) {
	promise, _ := NewFuture[int]()
	// still Scheduled, not Executing
	require.Panics(t, func() { promise.NotifyCompleted(1) })
}

func TestPromise_NotifyCanceled_CarriesToken(t *testing.T) {
	promise, future := NewFuture[string]()
	promise.control().setExecuting()

	token := ServiceToken{Kind: TokenCancel, Source: SourceUserRequest}
	promise.NotifyCanceled(token)

	require.Equal(t, Canceled, future.Status())
	require.True(t, future.IsDone())
	got, ok := future.Token()
	require.True(t, ok)
	require.Equal(t, token, got)
}

func TestPromise_NotifySuspended_ThenResume(t *testing.T) {
	promise, future := NewFuture[string]()
	promise.control().setExecuting()

	promise.NotifySuspended(ServiceToken{Kind: TokenSuspend, Source: SourceUserRequest})
	require.Equal(t, Suspended, future.Status())
	require.False(t, future.IsDone(), "suspended is not a terminal state")

	promise.control().setExecuting()
	require.Equal(t, Executing, future.Status())

	promise.NotifyCompleted("done")
	require.True(t, future.IsDone())
}

func TestFuture_RequestFlags_ObservedThroughProxy(t *testing.T) {
	promise, future := NewFuture[int]()
	proxy := promise.RequestProxy()

	require.Equal(t, NoCancelRequested, proxy.FetchCancelRequest())
	future.RequestCancel()
	require.Equal(t, CancelRequested, proxy.FetchCancelRequest())

	future.RequestSuspend()
	require.Equal(t, SuspendRequested, proxy.FetchSuspendRequest())
	future.RequestResume()
	require.Equal(t, NoSuspendRequested, proxy.FetchSuspendRequest())
}

func TestCell_ForceCancel_OnlyFromScheduled(t *testing.T) {
	promise, future := NewFuture[int]()
	token := ServiceToken{Kind: TokenCancel, Source: SourceSystemShutdown}

	require.True(t, promise.control().forceCancel(token))
	require.Equal(t, ForceCanceled, future.Status())

	// Second call against an already-terminal cell is a no-op.
	require.False(t, promise.control().forceCancel(token))
}

func TestCell_ForceCancel_NoopOnceExecuting(t *testing.T) {
	promise, future := NewFuture[int]()
	promise.control().setExecuting()

	require.False(t, promise.control().forceCancel(ServiceToken{}))
	require.Equal(t, Executing, future.Status())
}

func TestPromise_NotifyForceCanceled_CarriesToken(t *testing.T) {
	promise, future := NewFuture[string]()
	promise.control().setExecuting()

	token := ServiceToken{Kind: TokenCancel, Source: SourceExecutor}
	promise.NotifyForceCanceled(token)

	require.Equal(t, ForceCanceled, future.Status())
	require.True(t, future.IsDone())
	got, ok := future.Token()
	require.True(t, ok)
	require.Equal(t, token, got)
}

func TestPromise_NotifyForceCanceled_WrongStatePanics(t *testing.T) {
	promise, _ := NewFuture[int]()
	// still Scheduled, not Executing
	require.Panics(t, func() { promise.NotifyForceCanceled(ServiceToken{}) })
}

func TestFutureAny_SatisfiedByFuture(t *testing.T) {
	var _ FutureAny = Future[int]{}
}
