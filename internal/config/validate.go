package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateVocabulary(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAlignment() error {
	switch c.Alignment.Mode {
	case ModeChar, ModeToken:
	default:
		return fmt.Errorf("alignment.mode: unsupported value %q (expected %q or %q)", c.Alignment.Mode, ModeChar, ModeToken)
	}
	if c.Alignment.IndexDuration <= 0 {
		return errors.New("alignment.index_duration must be positive (seconds per frame)")
	}
	if c.Alignment.ScoreWindow <= 0 {
		return errors.New("alignment.score_window must be positive (frames)")
	}
	if c.Alignment.MinWindowSize <= 0 {
		return errors.New("alignment.min_window_size must be positive (frames)")
	}
	return nil
}

// validateVocabulary only checks uniqueness; an empty vocabulary is allowed at
// load time so that commands which never align (config init, runs list) work
// without one. The run command checks for presence separately.
func (c *Config) validateVocabulary() error {
	seen := make(map[string]int, len(c.Alignment.Vocabulary))
	for i, symbol := range c.Alignment.Vocabulary {
		if prev, ok := seen[symbol]; ok {
			return fmt.Errorf("alignment.vocabulary: symbol %q repeated at indices %d and %d", symbol, prev, i)
		}
		seen[symbol] = i
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
