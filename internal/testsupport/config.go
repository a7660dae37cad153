package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"ctcseg/internal/config"
)

// DefaultVocabulary is the small character vocabulary used across tests:
// blank "ε" is last, space is index 2.
var DefaultVocabulary = []string{"a", "b", " ", "ε"}

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Alignment.Vocabulary = append([]string(nil), DefaultVocabulary...)
	cfgVal.Batch.Workers = 2
	cfgVal.Batch.QueueSize = 4
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithVocabulary overrides the alignment vocabulary.
func WithVocabulary(symbols ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Alignment.Vocabulary = append([]string(nil), symbols...)
	}
}

// WithMode sets the matrix mode.
func WithMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Alignment.Mode = mode
	}
}

// WithTokenizerModel points token mode at a SentencePiece model file. A
// relative name resolves inside the test's temp directory.
func WithTokenizerModel(path string) ConfigOption {
	return func(b *configBuilder) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(b.baseDir, path)
		}
		b.cfg.Alignment.TokenizerModel = path
	}
}

// WithBackend sets the backend command.
func WithBackend(command string, args ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.Command = command
		b.cfg.Backend.Args = args
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, a stub named "ctc-align" is
// written and configured as the backend command.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ctc-align"}
			b.cfg.Backend.Command = "ctc-align"
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
