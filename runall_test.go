package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func tickUntilDone(t *testing.T, s *Scheduler, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.Tick()
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.Fail(t, "condition never became true")
}

func TestRunAll_ReturnsResultsInInputOrder(t *testing.T) {
	s := newTestScheduler(t, WithWorkerCount(4))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		bodies := []func(Promise[int], RequestProxy){
			func(p Promise[int], _ RequestProxy) { p.NotifyCompleted(1) },
			func(p Promise[int], _ RequestProxy) { p.NotifyCompleted(2) },
			func(p Promise[int], _ RequestProxy) { p.NotifyCompleted(3) },
		}
		results, err := RunAll[int](ctx, s, Background, TraceInfo{Content: "runall"}, bodies)
		require.NoError(t, err)
		require.Equal(t, []int{1, 2, 3}, results)
	}()

	for {
		select {
		case <-done:
			return
		default:
			s.Tick()
			time.Sleep(time.Millisecond)
		}
	}
}

func TestMap_AppliesFnToEveryItem(t *testing.T) {
	s := newTestScheduler(t, WithWorkerCount(4))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		results, err := Map(ctx, s, Interactive, TraceInfo{}, []int{1, 2, 3}, func(n int) int { return n * n })
		require.NoError(t, err)
		require.Equal(t, []int{1, 4, 9}, results)
	}()

	for {
		select {
		case <-done:
			return
		default:
			s.Tick()
			time.Sleep(time.Millisecond)
		}
	}
}

func TestForEach_AggregatesErrors(t *testing.T) {
	s := newTestScheduler(t, WithWorkerCount(4))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := ForEach(ctx, s, Background, TraceInfo{}, []string{"ok", "bad", "ok"}, func(s string) error {
			if s == "bad" {
				return errBadItem
			}
			return nil
		})
		require.Error(t, err)
		require.True(t, strings.Contains(err.Error(), "bad item"))
	}()

	for {
		select {
		case <-done:
			return
		default:
			s.Tick()
			time.Sleep(time.Millisecond)
		}
	}
}

var errBadItem = errString("bad item")

type errString string

func (e errString) Error() string { return string(e) }
