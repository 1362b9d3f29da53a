// Package logadapter bridges a github.com/joeycumines/logiface structured
// logger into the fiber.Logger interface, so an Environment can log through
// whichever logiface driver the caller has already configured (zerolog,
// logrus, slog, ...) instead of fiber's built-in no-op/stderr loggers.
package logadapter

import (
	"github.com/joeycumines/logiface"

	"github.com/joeycumines/fiber"
)

// Bridge adapts a *logiface.Logger[E] into a fiber.Logger. A nil logger
// adapts to a Logger that behaves like fiber.NewNoopLogger.
func Bridge[E logiface.Event](logger *logiface.Logger[E]) fiber.Logger {
	return &bridge[E]{logger: logger}
}

type bridge[E logiface.Event] struct {
	logger *logiface.Logger[E]
}

func (b *bridge[E]) Enabled(level fiber.LogLevel) bool {
	lvl := b.logger.Level()
	if !lvl.Enabled() {
		return false
	}
	target := toLogifaceLevel(level)
	return target <= lvl || target > logiface.LevelTrace
}

func (b *bridge[E]) Log(level fiber.LogLevel, msg string, fields ...fiber.Field) {
	builder := b.logger.Build(toLogifaceLevel(level))
	for _, f := range fields {
		builder = builder.Any(f.Key, f.Value)
	}
	builder.Log(msg)
}

func toLogifaceLevel(level fiber.LogLevel) logiface.Level {
	switch level {
	case fiber.LevelDebug:
		return logiface.LevelDebug
	case fiber.LevelInfo:
		return logiface.LevelInformational
	case fiber.LevelWarn:
		return logiface.LevelWarning
	case fiber.LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}
