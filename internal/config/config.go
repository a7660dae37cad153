package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Alignment modes select the transition-matrix strategy.
const (
	ModeChar  = "char"
	ModeToken = "token"
)

// Paths contains directory configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Alignment contains the vocabulary and segmentation parameters.
type Alignment struct {
	// Mode is "char" for character vocabularies or "token" for subword (BPE) vocabularies.
	Mode string `toml:"mode"`
	// Vocabulary lists model output symbols in order; the blank symbol must be last.
	Vocabulary []string `toml:"vocabulary"`
	// VocabularyFile is read (one symbol per line) when Vocabulary is empty.
	VocabularyFile string `toml:"vocabulary_file"`
	// TokenizerModel is the SentencePiece model of the acoustic model (token mode).
	// When empty, words are covered greedily by the longest vocabulary entries.
	TokenizerModel     string  `toml:"tokenizer_model"`
	Space              string  `toml:"space"`
	WordBoundary       string  `toml:"word_boundary"`
	ExcludedCharacters string  `toml:"excluded_characters"`
	MinWindowSize      int     `toml:"min_window_size"`
	IndexDuration      float64 `toml:"index_duration"`
	ScoreWindow        int     `toml:"score_window"`
	NormalizeUnicode   bool    `toml:"normalize_unicode"`
}

// Backend describes the external forced-alignment program.
type Backend struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Batch contains worker pool sizing.
type Batch struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
	LogBuffer int `toml:"log_buffer"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ctcseg.
//
// Configuration sections by subsystem:
//   - Paths: log and ledger directories
//   - Alignment: vocabulary, mode, and segmentation parameters
//   - Backend: external alignment program
//   - Batch: worker pool sizing
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Alignment Alignment `toml:"alignment"`
	Backend   Backend   `toml:"backend"`
	Batch     Batch     `toml:"batch"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and the vocabulary resolved.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ctcseg.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the SQLite run ledger location.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "runs.db")
}

// LogPath returns the shared batch log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "ctcseg.log")
}

// BlankSymbol returns the vocabulary entry reserved for the CTC blank.
func (c *Config) BlankSymbol() string {
	if len(c.Alignment.Vocabulary) == 0 {
		return ""
	}
	return c.Alignment.Vocabulary[len(c.Alignment.Vocabulary)-1]
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}
