package live

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"portfolio/internal/store"
	"portfolio/internal/store/storetest"
)

type failingListener struct{ err error }

func (f failingListener) Listen(context.Context, store.Target) (store.Iterator, error) {
	return nil, f.err
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSubscribeDeliversFullSnapshots(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	sizes := make(chan int, 10)

	unsubscribe := Subscribe(ctx, st, store.Collection("skills"), func(s store.Snapshot) {
		sizes <- s.Size()
	}, func(err error) {
		t.Errorf("Unexpected error: %v", err)
	})

	if n := <-sizes; n != 0 {
		t.Errorf("Expected initial empty snapshot, got %d", n)
	}
	if _, err := st.Add(ctx, "skills", map[string]any{"name": "Go"}); err != nil {
		t.Fatal(err)
	}
	if n := <-sizes; n != 1 {
		t.Errorf("Expected snapshot with 1 doc, got %d", n)
	}

	unsubscribe()
	unsubscribe()
	waitFor(t, "listener release", func() bool { return st.Listeners() == 0 })
}

func TestSubscribeReportsErrorOnce(t *testing.T) {
	boom := errors.New("permission denied")
	var calls atomic.Int32
	done := make(chan struct{})

	Subscribe(context.Background(), failingListener{err: boom}, store.Collection("x"), func(store.Snapshot) {
		t.Error("Snapshot must not be delivered")
	}, func(err error) {
		if !errors.Is(err, boom) {
			t.Errorf("Expected %v, got %v", boom, err)
		}
		calls.Add(1)
		close(done)
	})

	<-done
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 1 {
		t.Errorf("Expected exactly one error, got %d", calls.Load())
	}
}

func TestScopeSerializesAndStopsOnClose(t *testing.T) {
	st := storetest.New(t)
	scope := NewScope(context.Background())

	var inFlight, overlap, delivered atomic.Int32
	handler := func(store.Snapshot) {
		if inFlight.Add(1) > 1 {
			overlap.Add(1)
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
		delivered.Add(1)
	}
	scope.Subscribe(st, store.Collection("skills"), handler, nil)
	scope.Subscribe(st, store.Collection("experiences"), handler, nil)

	waitFor(t, "initial snapshots", func() bool { return delivered.Load() == 2 })
	if overlap.Load() != 0 {
		t.Error("Callbacks of one scope must not overlap")
	}

	scope.Close()
	<-scope.Done()
	waitFor(t, "listener release", func() bool { return st.Listeners() == 0 })

	before := delivered.Load()
	_, _ = st.Add(context.Background(), "skills", map[string]any{"name": "late"})
	time.Sleep(50 * time.Millisecond)
	if delivered.Load() != before {
		t.Error("No callback may run after Close")
	}
	if scope.Post(func() {}) {
		t.Error("Post must fail on a closed scope")
	}
}

func TestScopeUnsubscribeStopsCallbacks(t *testing.T) {
	st := storetest.New(t)
	scope := NewScope(context.Background())
	defer scope.Close()

	var delivered atomic.Int32
	unsubscribe := scope.Subscribe(st, store.Collection("skills"), func(store.Snapshot) {
		delivered.Add(1)
	}, nil)
	waitFor(t, "initial snapshot", func() bool { return delivered.Load() == 1 })

	unsubscribe()
	_, _ = st.Add(context.Background(), "skills", map[string]any{"name": "x"})
	time.Sleep(50 * time.Millisecond)
	if delivered.Load() != 1 {
		t.Errorf("Expected no delivery after unsubscribe, got %d", delivered.Load())
	}
}

func TestGoSkipsApplyAfterClose(t *testing.T) {
	scope := NewScope(context.Background())
	release := make(chan struct{})
	var applied atomic.Bool

	Go(scope, func(ctx context.Context) (string, error) {
		<-release
		return "reply", nil
	}, func(string, error) {
		applied.Store(true)
	})

	scope.Close()
	close(release)
	time.Sleep(50 * time.Millisecond)
	if applied.Load() {
		t.Error("apply must not run after the scope closed")
	}
}

func TestGoAppliesResult(t *testing.T) {
	scope := NewScope(context.Background())
	defer scope.Close()
	got := make(chan string, 1)

	Go(scope, func(ctx context.Context) (string, error) {
		return "reply", nil
	}, func(v string, err error) {
		got <- v
	})

	select {
	case v := <-got:
		if v != "reply" {
			t.Errorf("Expected reply, got %q", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("apply was not called")
	}
}

func TestCallRunsOnLoop(t *testing.T) {
	scope := NewScope(context.Background())
	n := 0
	if !scope.Call(func() { n++ }) || n != 1 {
		t.Fatalf("Call did not run, n=%d", n)
	}
	scope.Close()
	if scope.Call(func() { n++ }) {
		t.Error("Call must fail after Close")
	}
}
