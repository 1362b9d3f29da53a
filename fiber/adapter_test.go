package fiber

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSyncOp_NonFiber_ImmediateCompletion(t *testing.T) {
	v, err := SyncOp[int](nil, func(complete func(int, error)) {
		complete(5, nil)
	})
	if err != nil || v != 5 {
		t.Fatalf("expected (5, nil), got (%d, %v)", v, err)
	}
}

func TestSyncOp_NonFiber_AsyncCompletion(t *testing.T) {
	v, err := SyncOp[string](nil, func(complete func(string, error)) {
		go func() {
			time.Sleep(10 * time.Millisecond)
			complete("done", nil)
		}()
	})
	if err != nil || v != "done" {
		t.Fatalf("expected (done, nil), got (%q, %v)", v, err)
	}
}

func TestSyncOp_NonFiber_PropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	_, err := SyncOp[int](nil, func(complete func(int, error)) {
		complete(0, wantErr)
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestSyncOp_InsideFiber_BlocksFiberNotWorker(t *testing.T) {
	env := NewEnvironment(WithProcMin(1), WithProcMax(1))
	defer env.Close(context.Background())

	// The async op is resolved by a second fiber, which needs the pool's
	// only worker; with ProcMax(1), if SyncOp blocked the worker itself
	// this test would deadlock, since nothing else could run to resolve it.
	ret, err := Go(env, func(t *Task) int {
		v, err := SyncOp[int](t, func(complete func(int, error)) {
			go func() {
				time.Sleep(20 * time.Millisecond)
				Go(env, func(*Task) int {
					complete(123, nil)
					return 0
				})
			}()
		})
		if err != nil {
			return -1
		}
		return v
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ret != 123 {
		t.Fatalf("expected 123, got %d", ret)
	}
}

func TestSyncOp_InsideFiber_SyncCompletion(t *testing.T) {
	env := NewEnvironment(WithProcMin(1), WithProcMax(1))
	defer env.Close(context.Background())

	ret, err := Go(env, func(t *Task) int {
		v, _ := SyncOp[int](t, func(complete func(int, error)) {
			complete(7, nil)
		})
		return v
	})
	if err != nil || ret != 7 {
		t.Fatalf("expected (7, nil), got (%d, %v)", ret, err)
	}
}
