package telemetry

import (
	"testing"
	"time"
)

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.RecordQueueWait(time.Millisecond)
	r.RecordSwitch(time.Millisecond)
	r.RecordSpawn()
	r.RecordRetire()
	r.RecordSpawnRejected()

	if got := r.Snapshot(); got != (Stats{}) {
		t.Fatalf("expected zero Stats from nil recorder, got %+v", got)
	}
}

func TestRecorder_RecordQueueWait(t *testing.T) {
	r := NewRecorder()
	for _, d := range []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
		40 * time.Millisecond,
		50 * time.Millisecond,
	} {
		r.RecordQueueWait(d)
	}

	snap := r.Snapshot()
	if snap.QueueWait.Count != 5 {
		t.Fatalf("expected count 5, got %d", snap.QueueWait.Count)
	}
	if snap.QueueWait.Max != 50*time.Millisecond {
		t.Fatalf("expected max 50ms, got %v", snap.QueueWait.Max)
	}
	if snap.QueueWait.Mean != 30*time.Millisecond {
		t.Fatalf("expected mean 30ms, got %v", snap.QueueWait.Mean)
	}
}

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()
	r.RecordSpawn()
	r.RecordSpawn()
	r.RecordRetire()
	r.RecordSpawnRejected()

	snap := r.Snapshot()
	if snap.WorkersSpawned != 2 || snap.WorkersRetired != 1 || snap.SpawnsRejected != 1 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
}
