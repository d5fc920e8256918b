// Package logging provides the structured logger injected into the
// pipeline and core packages. It is the only collaborator the core is
// allowed to depend on besides the data it is handed directly; it carries
// no package-level state.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the sink the core packages and pkg/pipeline report progress
// and warnings through. Passing a nil *Logger is valid and silences all
// output, matching spec.md's "optional logger/progress sink".
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) *Logger {
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// NewConsole builds a Logger writing human-readable output to stderr.
func NewConsole(level zerolog.Level) *Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr}, level)
}

func (l *Logger) event(e *zerolog.Event, component, message string, fields map[string]any) {
	if l == nil {
		return
	}
	ev := e.Str("component", component)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(message)
}

// Info logs routine progress, e.g. iteration counters in the S+C finder.
func (l *Logger) Info(component, message string, fields map[string]any) {
	if l == nil {
		return
	}
	l.event(l.zl.Info(), component, message, fields)
}

// Warn logs a non-fatal condition, e.g. a missing optional header keyword.
func (l *Logger) Warn(component, message string, fields map[string]any) {
	if l == nil {
		return
	}
	l.event(l.zl.Warn(), component, message, fields)
}

// Debug logs fine-grained tracing, e.g. per-kernel noise estimates.
func (l *Logger) Debug(component, message string, fields map[string]any) {
	if l == nil {
		return
	}
	l.event(l.zl.Debug(), component, message, fields)
}

// Error logs a non-recoverable failure before it unwinds to the caller.
func (l *Logger) Error(component string, err error, fields map[string]any) {
	if l == nil {
		return
	}
	ev := l.zl.Error().Str("component", component).Err(err)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("operation failed")
}
