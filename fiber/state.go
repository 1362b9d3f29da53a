package fiber

import "sync/atomic"

// TaskState is the lifecycle state of a Task.
//
// Legal transitions:
//
//	INIT  -> RUN   (creation: immediate self-wake)
//	RUN   -> WAIT  (worker-return path, woken < waitfor)
//	RUN   -> RUN   (worker-return path, woken >= waitfor; re-enqueue)
//	WAIT  -> RUN   (external Wake raises woken to meet waitfor)
//	RUN   -> DONE  (user function returned; next yield transitions out)
//	DONE  -> —     (terminal)
type TaskState int32

const (
	// TaskInit is the state of a task that has been created but never run.
	TaskInit TaskState = iota
	// TaskRun is the state of a task on the run queue or currently executing.
	TaskRun
	// TaskWait is the state of a task parked on the wait queue.
	TaskWait
	// TaskSuspend is the state of a task off all queues, not yet runnable.
	TaskSuspend
	// TaskDone is the terminal state; the task's function has returned.
	TaskDone
)

// String returns a human-readable representation of the state.
func (s TaskState) String() string {
	switch s {
	case TaskInit:
		return "Init"
	case TaskRun:
		return "Run"
	case TaskWait:
		return "Wait"
	case TaskSuspend:
		return "Suspend"
	case TaskDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// atomicState is a lock-free small-int state cell, the Go analogue of a
// synctask's `state` field. RUN and WAIT are stored while holding the
// environment mutex; INIT is stored before the task is shared and DONE by
// the task's own goroutine, and Task.State reads it without the mutex.
type atomicState struct {
	v atomic.Int32
}

func (s *atomicState) load() TaskState {
	return TaskState(s.v.Load())
}

func (s *atomicState) store(state TaskState) {
	s.v.Store(int32(state))
}
