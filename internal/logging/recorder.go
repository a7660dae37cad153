package logging

import (
	"context"
	"log/slog"
	"sync"
)

// Recorder is an slog.Handler that buffers records instead of writing them.
// A batch job logs into its own Recorder and hands the captured records back
// to the orchestrator, which replays them through the shared handler. Attributes
// added through WithAttrs/WithGroup are folded into each captured record so the
// replayed output matches what a direct handler would have produced.
type Recorder struct {
	state  *recorderState
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

type recorderState struct {
	mu      sync.Mutex
	records []slog.Record
}

// NewRecorder returns a Recorder that keeps records at or above level.
func NewRecorder(level slog.Leveler) *Recorder {
	if level == nil {
		level = slog.LevelDebug
	}
	return &Recorder{state: &recorderState{}, level: level}
}

// Logger returns a logger writing into the recorder.
func (r *Recorder) Logger() *slog.Logger {
	return slog.New(r)
}

func (r *Recorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= r.level.Level()
}

func (r *Recorder) Handle(_ context.Context, record slog.Record) error {
	captured := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	var own []slog.Attr
	record.Attrs(func(attr slog.Attr) bool {
		own = append(own, attr)
		return true
	})
	captured.AddAttrs(r.attrs...)
	captured.AddAttrs(nestInGroups(r.groups, own)...)

	r.state.mu.Lock()
	r.state.records = append(r.state.records, captured)
	r.state.mu.Unlock()
	return nil
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return r
	}
	next := r.derive()
	next.attrs = append(next.attrs, nestInGroups(r.groups, attrs)...)
	return next
}

func (r *Recorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}
	next := r.derive()
	next.groups = append(next.groups, name)
	return next
}

func (r *Recorder) derive() *Recorder {
	return &Recorder{
		state:  r.state,
		level:  r.level,
		attrs:  append([]slog.Attr(nil), r.attrs...),
		groups: append([]string(nil), r.groups...),
	}
}

// Records returns a copy of everything captured so far.
func (r *Recorder) Records() []slog.Record {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	out := make([]slog.Record, len(r.state.records))
	for i, rec := range r.state.records {
		out[i] = rec.Clone()
	}
	return out
}

// Replay writes records into handler in capture order, skipping levels the
// handler does not accept. It returns the first handler error.
func Replay(ctx context.Context, handler slog.Handler, records []slog.Record) error {
	if handler == nil {
		return nil
	}
	var firstErr error
	for _, rec := range records {
		if !handler.Enabled(ctx, rec.Level) {
			continue
		}
		if err := handler.Handle(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func nestInGroups(groups []string, attrs []slog.Attr) []slog.Attr {
	if len(groups) == 0 || len(attrs) == 0 {
		return attrs
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	nested := slog.Group(groups[len(groups)-1], args...)
	for i := len(groups) - 2; i >= 0; i-- {
		nested = slog.Group(groups[i], nested)
	}
	return []slog.Attr{nested}
}
