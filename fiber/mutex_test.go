package fiber

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFiberMutex_NonFiberLockUnlock(t *testing.T) {
	var m FiberMutex
	m.Lock(nil)
	if err := m.Unlock(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFiberMutex_TryLockReturnsErrBusy(t *testing.T) {
	var m FiberMutex
	m.Lock(nil)
	defer m.Unlock(nil)

	if err := m.TryLock(nil); err != ErrBusy {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestFiberMutex_NonFiberContention(t *testing.T) {
	var m FiberMutex
	m.Lock(nil)

	acquired := make(chan struct{})
	go func() {
		m.Lock(nil)
		close(acquired)
		m.Unlock(nil)
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock succeeded before first Unlock")
	case <-time.After(20 * time.Millisecond):
	}

	m.Unlock(nil)

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second Lock never acquired the mutex")
	}
}

func TestFiberMutex_FiberWaitersYieldNotBlock(t *testing.T) {
	// fiber1 takes the lock and then parks on the wait queue in Yield,
	// still holding it and without blocking a worker, until the test
	// wakes it after setting release. Meanwhile fiber2 attempts Lock and
	// drives the contested path (FIFO wait-list append, Yield, and
	// Unlock's head-fiber Wake).
	env := NewEnvironment(WithProcMin(2), WithProcMax(2))
	defer env.Close(context.Background())

	var m FiberMutex
	var order []int
	var mu sync.Mutex
	record := func(v int) {
		mu.Lock()
		order = append(order, v)
		mu.Unlock()
	}

	started := make(chan struct{})
	var release atomic.Bool
	var holder atomic.Pointer[Task]

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		Go(env, func(t *Task) int {
			m.Lock(t)
			record(1)
			holder.Store(t)
			close(started)
			for !release.Load() {
				t.Yield()
			}
			m.Unlock(t)
			return 0
		})
	}()

	<-started

	go func() {
		defer wg.Done()
		Go(env, func(t *Task) int {
			m.Lock(t)
			record(2)
			m.Unlock(t)
			return 0
		})
	}()

	// Wait until fiber2 has genuinely queued itself on the fiber-mutex's
	// wait list, instead of relying on a fixed sleep to guess when it
	// got there.
	waiters := func() int {
		m.guard.Lock()
		defer m.guard.Unlock()
		return m.waiters.Len()
	}
	deadline := time.Now().Add(2 * time.Second)
	for waiters() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if n := waiters(); n != 1 {
		t.Fatalf("expected fiber2 queued on the fiber wait list, got %d waiters", n)
	}

	release.Store(true)
	holder.Load().Wake()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected [1 2], got %v", order)
	}
}

func TestFiberMutex_OwnerMismatchNotAnErrorByDefault(t *testing.T) {
	var m FiberMutex
	m.Lock(nil)

	var taskA Task
	if err := m.Unlock(&taskA); err != nil {
		t.Fatalf("expected non-strict mismatch to return nil, got %v", err)
	}
}

func TestFiberMutex_StrictOwnershipReturnsError(t *testing.T) {
	var m FiberMutex
	m.Init(WithStrictOwnership(true))
	m.Lock(nil)

	var taskA Task
	if err := m.Unlock(&taskA); err != ErrOwnerMismatch {
		t.Fatalf("expected ErrOwnerMismatch, got %v", err)
	}
}
