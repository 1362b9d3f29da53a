package ratelimit

import "time"

// prune discards samples in events that have fallen outside every
// configured window, and returns how long the caller must wait before a
// further event can be recorded without exceeding any window's count.
// A zero duration means a further event may be recorded immediately.
func prune(now time.Time, rates Rates, events *window) (wait time.Duration) {
	firstRelevant := events.Len()

	for d, limit := range rates {
		if limit <= 0 || d <= 0 {
			continue
		}

		boundary := now.Add(-d)
		idx := events.Search(boundary.UnixNano() + 1)
		if idx < firstRelevant {
			firstRelevant = idx
		}

		if limit <= events.Len()-idx {
			offset := time.Unix(0, events.Get(events.Len()-limit)).Sub(boundary)
			if offset > wait {
				wait = offset
			}
		}
	}

	events.RemoveBefore(firstRelevant)
	return wait
}
