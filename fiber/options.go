package fiber

import (
	"time"

	"github.com/joeycumines/fiber/ratelimit"
	"github.com/joeycumines/fiber/telemetry"
)

// envOptions holds the resolved configuration for a new Environment.
type envOptions struct {
	procMin      int
	procMax      int
	idleTimeout  time.Duration
	stackHint    int
	spawnLimiter *ratelimit.Limiter
	metrics      *telemetry.Recorder
	logger       Logger
	drainOnClose bool
}

// Option configures an Environment created by NewEnvironment.
type Option interface {
	applyEnv(*envOptions) error
}

type optionFunc func(*envOptions) error

func (f optionFunc) applyEnv(o *envOptions) error { return f(o) }

// WithProcMin sets the minimum number of worker goroutines an Environment
// keeps alive even when idle. Mirrors syncenv's PROC_MIN floor.
func WithProcMin(n int) Option {
	return optionFunc(func(o *envOptions) error {
		o.procMin = n
		return nil
	})
}

// WithProcMax sets the maximum number of worker goroutines an Environment
// will scale up to. Mirrors syncenv's PROC_MAX ceiling.
func WithProcMax(n int) Option {
	return optionFunc(func(o *envOptions) error {
		o.procMax = n
		return nil
	})
}

// WithIdleTimeout sets how long an idle worker above procMin waits for
// work before retiring.
func WithIdleTimeout(d time.Duration) Option {
	return optionFunc(func(o *envOptions) error {
		o.idleTimeout = d
		return nil
	})
}

// WithGoroutineStackHint records an informational stack-size hint for
// diagnostics/logging parity with the original stacksize field. Go does
// not support fixed per-goroutine stack allocation, so this value is
// never used to size anything; it exists only for API/doc fidelity and
// is surfaced via Environment.GoroutineStackHint.
func WithGoroutineStackHint(bytes int) Option {
	return optionFunc(func(o *envOptions) error {
		o.stackHint = bytes
		return nil
	})
}

// WithSpawnRateLimit gates how often the Environment is permitted to
// spawn new worker goroutines during scale-up, using limiter as the
// shared rate-limiting backend. A nil limiter (the default) disables
// gating entirely.
func WithSpawnRateLimit(limiter *ratelimit.Limiter) Option {
	return optionFunc(func(o *envOptions) error {
		o.spawnLimiter = limiter
		return nil
	})
}

// WithMetrics attaches a telemetry.Recorder that observes queue-wait and
// switch latency. A nil recorder (the default) disables telemetry.
func WithMetrics(recorder *telemetry.Recorder) Option {
	return optionFunc(func(o *envOptions) error {
		o.metrics = recorder
		return nil
	})
}

// WithLogger sets the structured Logger the Environment reports through.
// Defaults to NewNoopLogger.
func WithLogger(logger Logger) Option {
	return optionFunc(func(o *envOptions) error {
		o.logger = logger
		return nil
	})
}

// WithDrainOnClose makes Close wait for all outstanding tasks to finish
// running before returning (subject to the context passed to Close).
// This is the default.
func WithDrainOnClose() Option {
	return optionFunc(func(o *envOptions) error {
		o.drainOnClose = true
		return nil
	})
}

// WithAbandonOnClose makes Close return as soon as it has signaled
// shutdown, without waiting for in-flight tasks to finish. Abandoned
// tasks continue running to completion in the background but are no
// longer tracked by Environment.Close's wait.
func WithAbandonOnClose() Option {
	return optionFunc(func(o *envOptions) error {
		o.drainOnClose = false
		return nil
	})
}

// resolveEnvOptions applies Option values over a defaulted envOptions.
func resolveEnvOptions(opts []Option) (*envOptions, error) {
	cfg := &envOptions{
		procMin:      2,
		procMax:      16,
		idleTimeout:  15 * time.Second,
		logger:       NewNoopLogger(),
		drainOnClose: true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyEnv(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.procMin < 1 {
		cfg.procMin = 1
	}
	if cfg.procMax < cfg.procMin {
		cfg.procMax = cfg.procMin
	}
	return cfg, nil
}
