package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ctcseg/internal/config"
	"ctcseg/internal/logging"
	"ctcseg/internal/services"
)

func TestNewWritesConsoleAndFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "ctcseg.log")
	var console bytes.Buffer

	logger, closer, err := logging.New(logging.Options{
		Level:    "info",
		Format:   "console",
		Console:  &console,
		FilePath: logPath,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("segmentation complete", logging.String("job_id", "ch01"), logging.Int("segments", 12))
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, out := range []string{console.String(), string(content)} {
		if !strings.Contains(out, "INFO segmentation complete") {
			t.Fatalf("expected message in output, got %q", out)
		}
		if !strings.Contains(out, "job_id=ch01") || !strings.Contains(out, "segments=12") {
			t.Fatalf("expected attributes in output, got %q", out)
		}
		if strings.Contains(out, "\x1b[") {
			t.Fatalf("expected no color codes, got %q", out)
		}
	}
}

func TestConsoleColorOnlyOnConsole(t *testing.T) {
	var console bytes.Buffer
	logger, _, err := logging.New(logging.Options{Level: "info", Console: &console, Color: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("careful")
	if !strings.Contains(console.String(), "\x1b[33mWARN\x1b[0m") {
		t.Fatalf("expected colored warn label, got %q", console.String())
	}
}

func TestConsoleComponentPrefixAndQuoting(t *testing.T) {
	var console bytes.Buffer
	logger, _, err := logging.New(logging.Options{Level: "info", Console: &console})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "batch").Info("job failed", logging.String("reason", "count mismatch"))
	out := console.String()
	if !strings.Contains(out, "batch: job failed") {
		t.Fatalf("expected component prefix, got %q", out)
	}
	if !strings.Contains(out, `reason="count mismatch"`) {
		t.Fatalf("expected quoted value, got %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var console bytes.Buffer
	logger, _, err := logging.New(logging.Options{Level: "debug", Format: "json", Console: &console})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("matrix built", logging.Int("rows", 8))
	out := console.String()
	if !strings.Contains(out, `"level":"debug"`) || !strings.Contains(out, `"rows":8`) {
		t.Fatalf("unexpected json output %q", out)
	}
	if !strings.Contains(out, `"ts":`) {
		t.Fatalf("expected ts key, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigUsesLogPath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	logger, closer, err := logging.NewFromConfig(&cfg, nil, false)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello")
	_ = closer.Close()
	if _, err := os.Stat(cfg.LogPath()); err != nil {
		t.Fatalf("expected log file at %s: %v", cfg.LogPath(), err)
	}
}

func TestWithContextAndRunID(t *testing.T) {
	var console bytes.Buffer
	base, _, err := logging.New(logging.Options{Level: "info", Console: &console})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithJobID(context.Background(), "ch02")
	ctx = services.WithStage(ctx, "refine")
	logger := logging.WithContext(ctx, logging.WithRunID(base, "run-9"))
	logger.Info("scored")

	out := console.String()
	for _, fragment := range []string{"job_id=ch02", "stage=refine", "run_id=run-9"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in %q", fragment, out)
		}
	}
}
