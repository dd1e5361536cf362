package queue

import "testing"

func TestQueue_PopsHighestPriorityFirst(t *testing.T) {
	q := New()
	q.Push(0, 1, "background")
	q.Push(2, 2, "critical")
	q.Push(1, 3, "interactive")

	if got := q.Pop().Value; got != "critical" {
		t.Fatalf("got %v, want critical", got)
	}
	if got := q.Pop().Value; got != "interactive" {
		t.Fatalf("got %v, want interactive", got)
	}
	if got := q.Pop().Value; got != "background" {
		t.Fatalf("got %v, want background", got)
	}
}

func TestQueue_TiesBrokenByScheduledAt(t *testing.T) {
	q := New()
	q.Push(1, 100, "second")
	q.Push(1, 50, "first")

	if got := q.Pop().Value; got != "first" {
		t.Fatalf("got %v, want first (earlier scheduledAt)", got)
	}
	if got := q.Pop().Value; got != "second" {
		t.Fatalf("got %v, want second", got)
	}
}

func TestQueue_PeekDoesNotRemove(t *testing.T) {
	q := New()
	q.Push(0, 1, "only")

	e, ok := q.Peek()
	if !ok || e.Value != "only" {
		t.Fatalf("Peek = %v, %v; want only, true", e, ok)
	}
	if q.Len() != 1 {
		t.Fatalf("Peek must not remove; Len = %d, want 1", q.Len())
	}
}

func TestQueue_RemoveWhere(t *testing.T) {
	q := New()
	q.Push(0, 1, 1)
	q.Push(0, 2, 2)
	q.Push(0, 3, 3)

	removed := q.RemoveWhere(func(v any) bool { return v.(int)%2 == 0 })
	if len(removed) != 1 || removed[0].Value != 2 {
		t.Fatalf("removed = %+v, want [{Value:2}]", removed)
	}
	if q.Len() != 2 {
		t.Fatalf("Len after RemoveWhere = %d, want 2", q.Len())
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New()
	q.Push(0, 1, "a")
	q.Push(1, 2, "b")

	drained := q.Drain()
	if len(drained) != 2 {
		t.Fatalf("len(drained) = %d, want 2", len(drained))
	}
	if q.Len() != 0 {
		t.Fatalf("queue should be empty after Drain")
	}
}
