package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"ctcseg/internal/services"
)

const (
	// Ext is the extension of processed transcript files.
	Ext = ".txt"
	// RawSuffix replaces Ext to name the punctuated variant.
	RawSuffix = "_with_punct.txt"
	// NormalizedSuffix replaces Ext to name the normalized variant.
	NormalizedSuffix = "_with_punct_normalized.txt"

	stageName = "transcript"
)

// Set holds the utterances of one transcript in its three variants. All three
// slices have the same length.
type Set struct {
	Processed  []string
	Raw        []string
	Normalized []string
}

// Len reports the utterance count.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Processed)
}

// Paths names the files of one transcript.
type Paths struct {
	Processed  string
	Raw        string
	Normalized string
}

// SiblingPaths derives the variant file names from the processed file path.
func SiblingPaths(processed string) Paths {
	base := strings.TrimSuffix(processed, Ext)
	return Paths{
		Processed:  processed,
		Raw:        base + RawSuffix,
		Normalized: base + NormalizedSuffix,
	}
}

// IsVariant reports whether path names a sibling variant rather than a
// processed transcript.
func IsVariant(path string) bool {
	return strings.HasSuffix(path, RawSuffix) || strings.HasSuffix(path, NormalizedSuffix)
}

// Load reads the processed transcript at path and its two siblings. A missing
// file or a line-count mismatch is an input error.
func Load(path string) (*Set, error) {
	paths := SiblingPaths(path)
	processed, err := readFile(paths.Processed)
	if err != nil {
		return nil, err
	}
	raw, err := readFile(paths.Raw)
	if err != nil {
		return nil, err
	}
	normalized, err := readFile(paths.Normalized)
	if err != nil {
		return nil, err
	}
	set := &Set{Processed: processed, Raw: raw, Normalized: normalized}
	if err := set.Validate(); err != nil {
		return nil, services.Wrap(services.ErrInput, stageName, "load", path, err)
	}
	return set, nil
}

// Validate checks that the variants line up.
func (s *Set) Validate() error {
	if len(s.Raw) != len(s.Processed) {
		return fmt.Errorf("%d processed utterances but %d punctuated", len(s.Processed), len(s.Raw))
	}
	if len(s.Normalized) != len(s.Processed) {
		return fmt.Errorf("%d processed utterances but %d normalized", len(s.Processed), len(s.Normalized))
	}
	return nil
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		marker := services.ErrInput
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, stageName, "open", path, err)
	}
	defer f.Close()
	lines, err := ReadLines(f)
	if err != nil {
		return nil, services.Wrap(services.ErrInput, stageName, "read", path, err)
	}
	return lines, nil
}

// ReadLines returns the trimmed non-empty lines of r.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
