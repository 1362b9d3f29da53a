package ratelimit

import (
	"testing"
	"time"
)

func TestNewLimiter(t *testing.T) {
	rates := Rates{
		time.Second: 5,
		time.Minute: 50,
	}

	l := NewLimiter(rates)
	if l == nil {
		t.Fatal("expected non-nil limiter")
	}
	if len(l.rates) != 2 {
		t.Fatalf("expected 2 rates, got %d", len(l.rates))
	}
}

func TestNewLimiter_InvalidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-monotonic rates")
		}
	}()
	NewLimiter(Rates{
		time.Second: 10,
		time.Minute: 5, // tighter than the shorter window: invalid
	})
}

func TestLimiter_NilIsNoop(t *testing.T) {
	var l *Limiter
	next, ok := l.Allow("spawn")
	if !ok || next != (time.Time{}) {
		t.Fatalf("expected a disabled limiter to always allow, got ok=%v next=%v", ok, next)
	}
}

func TestLimiter_Allow_WithinBudget(t *testing.T) {
	l := NewLimiter(Rates{time.Second: 3})

	for i := 0; i < 3; i++ {
		if _, ok := l.Allow("backlog"); !ok {
			t.Fatalf("expected event %d to be allowed", i)
		}
	}

	if _, ok := l.Allow("backlog"); ok {
		t.Fatal("expected the 4th event within the same window to be rejected")
	}
}

func TestLimiter_Allow_SeparateCategories(t *testing.T) {
	l := NewLimiter(Rates{time.Second: 1})

	if _, ok := l.Allow("backlog"); !ok {
		t.Fatal("expected first backlog spawn to be allowed")
	}
	if _, ok := l.Allow("idle-replace"); !ok {
		t.Fatal("expected idle-replace category to have its own independent budget")
	}
}

func TestLimiter_Allow_RecoversAfterWindow(t *testing.T) {
	now := time.Now()
	restore := timeNow
	timeNow = func() time.Time { return now }
	defer func() { timeNow = restore }()

	l := NewLimiter(Rates{time.Second: 1})

	if _, ok := l.Allow("backlog"); !ok {
		t.Fatal("expected first event to be allowed")
	}
	if _, ok := l.Allow("backlog"); ok {
		t.Fatal("expected second event in the same instant to be rejected")
	}

	now = now.Add(2 * time.Second)
	timeNow = func() time.Time { return now }

	if _, ok := l.Allow("backlog"); !ok {
		t.Fatal("expected the event to be allowed after the window elapsed")
	}
}
