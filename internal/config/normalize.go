package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeAlignment(); err != nil {
		return err
	}
	c.normalizeBackend()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAlignment() error {
	c.Alignment.Mode = strings.ToLower(strings.TrimSpace(c.Alignment.Mode))
	switch c.Alignment.Mode {
	case "", "character", "chars":
		c.Alignment.Mode = ModeChar
	case "bpe", "subword", "tokens":
		c.Alignment.Mode = ModeToken
	}
	// Space and word boundary are significant characters; only fill when unset.
	if c.Alignment.Space == "" {
		c.Alignment.Space = defaultSpace
	}
	if c.Alignment.WordBoundary == "" {
		c.Alignment.WordBoundary = defaultWordBoundary
	}
	if model := strings.TrimSpace(c.Alignment.TokenizerModel); model != "" {
		path, err := expandPath(model)
		if err != nil {
			return fmt.Errorf("alignment.tokenizer_model: %w", err)
		}
		c.Alignment.TokenizerModel = path
	}
	if len(c.Alignment.Vocabulary) == 0 && strings.TrimSpace(c.Alignment.VocabularyFile) != "" {
		path, err := expandPath(strings.TrimSpace(c.Alignment.VocabularyFile))
		if err != nil {
			return fmt.Errorf("alignment.vocabulary_file: %w", err)
		}
		symbols, err := readVocabularyFile(path)
		if err != nil {
			return fmt.Errorf("alignment.vocabulary_file: %w", err)
		}
		c.Alignment.VocabularyFile = path
		c.Alignment.Vocabulary = symbols
	}
	return nil
}

func (c *Config) normalizeBackend() {
	c.Backend.Command = strings.TrimSpace(c.Backend.Command)
	if c.Backend.Command == "" {
		if value, ok := os.LookupEnv("CTCSEG_BACKEND"); ok {
			c.Backend.Command = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaultWorkers()
	}
	if c.Batch.QueueSize <= 0 {
		c.Batch.QueueSize = defaultQueueSize
	}
	if c.Batch.LogBuffer <= 0 {
		c.Batch.LogBuffer = defaultLogBuffer
	}
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("CTCSEG_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// readVocabularyFile reads one symbol per line. Lines are not trimmed because
// the space symbol is itself a vocabulary entry; only the line terminator is
// removed and fully empty lines are skipped.
func readVocabularyFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var symbols []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		symbols = append(symbols, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return symbols, nil
}
