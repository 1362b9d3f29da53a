package ratelimit

import (
	"golang.org/x/exp/slices"
	"time"
)

// Rates maps a sliding-window duration to the maximum number of spawn
// events permitted within it.
type Rates map[time.Duration]int

// validate checks that every window has a positive duration and count,
// and that shorter windows are strictly tighter than longer ones (both in
// absolute count and in effective rate). It returns the longest configured
// duration, which determines how long a category's history must be
// retained.
func (r Rates) validate() (retention time.Duration, ok bool) {
	if len(r) == 0 {
		return 0, false
	}

	durations := make([]time.Duration, 0, len(r))
	for d := range r {
		durations = append(durations, d)
	}
	slices.Sort(durations)

	for i, d := range durations {
		count := r[d]
		if count <= 0 || d <= 0 {
			return 0, false
		}
		if i < len(durations)-1 && count >= r[durations[i+1]] {
			return 0, false
		}
		if i > 0 && float64(count)/float64(d) >= float64(r[durations[i-1]])/float64(durations[i-1]) {
			return 0, false
		}
	}

	return durations[len(durations)-1], true
}
