package fiber

import (
	"context"
	"testing"
)

func TestTask_SetID(t *testing.T) {
	env := NewEnvironment(WithProcMin(1), WithProcMax(1))
	defer env.Close(context.Background())

	var got Identity
	Go(env, func(t *Task) int {
		t.SetID(42, 7)
		got = t.Identity()
		return 0
	}, WithIdentity(Identity{UID: 1, GID: 1}))

	if got != (Identity{UID: 42, GID: 7}) {
		t.Fatalf("expected identity {42 7}, got %+v", got)
	}
}

func TestTask_SetID_NegativeLeavesFieldUnchanged(t *testing.T) {
	env := NewEnvironment(WithProcMin(1), WithProcMax(1))
	defer env.Close(context.Background())

	var got Identity
	Go(env, func(t *Task) int {
		t.SetID(-1, 9)
		got = t.Identity()
		return 0
	}, WithIdentity(Identity{UID: 5, GID: 5}))

	if got != (Identity{UID: 5, GID: 9}) {
		t.Fatalf("expected identity {5 9}, got %+v", got)
	}
}

func TestTask_ContextDefaultsToBackground(t *testing.T) {
	env := NewEnvironment(WithProcMin(1), WithProcMax(1))
	defer env.Close(context.Background())

	var ctx context.Context
	Go(env, func(t *Task) int {
		ctx = t.Context()
		return 0
	})

	if ctx != context.Background() {
		t.Fatalf("expected context.Background(), got %v", ctx)
	}
}

func TestTask_WithContext(t *testing.T) {
	env := NewEnvironment(WithProcMin(1), WithProcMax(1))
	defer env.Close(context.Background())

	type key struct{}
	want := context.WithValue(context.Background(), key{}, "value")

	var got context.Context
	Go(env, func(t *Task) int {
		got = t.Context()
		return 0
	}, WithContext(want))

	if got.Value(key{}) != "value" {
		t.Fatalf("expected propagated context value, got %v", got)
	}
}

func TestTaskState_String(t *testing.T) {
	cases := map[TaskState]string{
		TaskInit:    "Init",
		TaskRun:     "Run",
		TaskWait:    "Wait",
		TaskSuspend: "Suspend",
		TaskDone:    "Done",
		TaskState(99): "Unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
