// Package ratelimit implements multi-window sliding-rate limiting per
// category, adapted for gating an Environment's worker-spawn rate during
// scale-up: each spawn reason ("initial" when NewEnvironment brings the
// first workers up, "backlog" when scaling grows the pool) is a category,
// each with its own independent set of windows.
//
// A Limiter tracks discrete spawn events per category in a sliding window
// and reports whether a further spawn is currently allowed, along with the
// earliest time it would become allowed again.
package ratelimit
