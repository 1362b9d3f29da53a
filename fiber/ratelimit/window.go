package ratelimit

import "sort"

// window holds one category's recent spawn-event timestamps (UnixNano),
// kept sorted so prune can binary-search each configured rate's window
// boundary.
//
// Workers are spawned one at a time, from Environment.scale under the
// bucket's own lock, so a fresh timestamp is almost always newer than
// everything already retained: Insert's common case is a plain append.
// The out-of-order path only matters if two back-to-back clock reads
// land on the same or a decreasing value, which happens on coarse
// clock resolution rather than genuine concurrency (the bucket already
// serializes callers). Rather than a fixed-capacity ring that has to
// rotate on wraparound, old samples are dropped by advancing a read
// cursor and the backing slice is compacted only once the discarded
// prefix dominates it, trading a little temporary over-allocation for
// much simpler insert/remove logic.
type window struct {
	s []int64
	r int
}

func newWindow(capacityHint int) *window {
	return &window{s: make([]int64, 0, capacityHint)}
}

// Len returns the number of samples currently retained.
func (x *window) Len() int { return len(x.s) - x.r }

// Cap returns the backing slice's capacity.
func (x *window) Cap() int { return cap(x.s) }

// Get returns the i'th oldest sample (0 is the oldest).
func (x *window) Get(i int) int64 {
	if i < 0 || i >= x.Len() {
		panic("ratelimit: window: get: index out of range")
	}
	return x.s[x.r+i]
}

// Search returns the index of the first retained sample >= value.
func (x *window) Search(value int64) int {
	return sort.Search(x.Len(), func(i int) bool {
		return x.Get(i) >= value
	})
}

// RemoveBefore discards the oldest index samples, compacting the
// backing slice once the discarded prefix is at least as large as what
// remains.
func (x *window) RemoveBefore(index int) {
	if index < 0 || index > x.Len() {
		panic("ratelimit: window: remove before: index out of range")
	}
	x.r += index
	if x.r > 0 && x.r >= len(x.s)-x.r {
		x.s = append(x.s[:0], x.s[x.r:]...)
		x.r = 0
	}
}

// Insert places value at index, preserving sort order. index is almost
// always Len() — a fresh timestamp is newer than everything retained —
// in which case this is a plain append; only an out-of-order clock read
// takes the shifting path.
func (x *window) Insert(index int, value int64) {
	l := x.Len()
	if index < 0 || index > l {
		panic("ratelimit: window: insert: index out of range")
	}

	if index == l {
		x.s = append(x.s, value)
		return
	}

	pos := x.r + index
	x.s = append(x.s, 0)
	copy(x.s[pos+1:], x.s[pos:len(x.s)-1])
	x.s[pos] = value
}
