package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestTeeCollapses(t *testing.T) {
	if _, ok := Tee(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every sink is nil")
	}

	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := Tee(nil, inner, nil); h != inner {
		t.Fatal("expected a single sink to be returned unwrapped")
	}
}

func TestTeeRespectsSinkLevels(t *testing.T) {
	var console, file bytes.Buffer
	h := Tee(
		slog.NewJSONHandler(&console, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected tee to accept debug when one sink does")
	}

	slog.New(h).Debug("transition matrix built")
	if console.Len() != 0 {
		t.Error("info sink should not receive debug records")
	}
	if file.Len() == 0 {
		t.Error("debug sink should receive debug records")
	}
}

func TestTeePropagatesAttrsAndGroups(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := Tee(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))

	logger := slog.New(h).With(slog.String(FieldJobID, "talk01")).WithGroup("segment")
	logger.Info("scored", slog.Float64("score", -0.5))

	for i, buf := range []*bytes.Buffer{&buf1, &buf2} {
		out := buf.Bytes()
		if !bytes.Contains(out, []byte(`"job_id":"talk01"`)) {
			t.Errorf("sink %d: expected job_id attr, got %s", i+1, out)
		}
		if !bytes.Contains(out, []byte(`"segment":{"score":-0.5}`)) {
			t.Errorf("sink %d: expected grouped score, got %s", i+1, out)
		}
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestTeeReportsSinkErrors(t *testing.T) {
	var buf bytes.Buffer
	h := Tee(failingHandler{slog.NewJSONHandler(&buf, nil)}, slog.NewJSONHandler(&buf, nil))
	logger := slog.New(h)
	logger.Info("job completed")
	if buf.Len() == 0 {
		t.Fatal("healthy sink should still receive the record")
	}
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "job completed", 0)
	if err := h.Handle(context.Background(), r); err == nil {
		t.Fatal("expected the failing sink's error")
	}
}

func TestErrorEventAddsEventType(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ErrorEvent(logger, "job_failed", "job failed", String(FieldJobID, "talk01"))
	if !bytes.Contains(buf.Bytes(), []byte(`"event_type":"job_failed"`)) {
		t.Fatalf("expected event_type, got %s", buf.Bytes())
	}

	buf.Reset()
	ErrorEvent(logger, "job_failed", "job failed", String(FieldEventType, "batch_failed"))
	if bytes.Count(buf.Bytes(), []byte(`"event_type"`)) != 1 || !bytes.Contains(buf.Bytes(), []byte("batch_failed")) {
		t.Fatalf("expected caller's event_type kept, got %s", buf.Bytes())
	}

	ErrorEvent(nil, "job_failed", "ignored")
}
