package logging

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// Attr aliases slog.Attr so call sites only import this package.
type Attr = slog.Attr

func Any(key string, value any) Attr            { return slog.Any(key, value) }
func Bool(key string, value bool) Attr          { return slog.Bool(key, value) }
func Duration(key string, v time.Duration) Attr { return slog.Duration(key, v) }
func Float64(key string, value float64) Attr    { return slog.Float64(key, value) }
func Int(key string, value int) Attr            { return slog.Int(key, value) }
func String(key, value string) Attr             { return slog.String(key, value) }

// Error renders err under the "error" key. A nil error logs as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Args converts attrs to the variadic form slog's logging methods take.
func Args(attrs ...Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags logger with the component field. A nil logger
// yields a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// ErrorEvent logs msg at error level tagged with eventType unless attrs
// already carry an event_type.
func ErrorEvent(logger *slog.Logger, eventType, msg string, attrs ...Attr) {
	if logger == nil {
		return
	}
	if !slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == FieldEventType }) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	logger.Error(msg, Args(attrs...)...)
}

// NoopHandler discards all records.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h NoopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h NoopHandler) WithGroup(string) slog.Handler           { return h }
