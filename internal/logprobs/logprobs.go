package logprobs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ctcseg/internal/services"
)

const stageName = "logprobs"

// Supported file extensions.
const (
	ExtNPY = ".npy"
	ExtTSV = ".tsv"
)

// Extensions lists the recognised extensions in lookup order.
var Extensions = []string{ExtNPY, ExtTSV}

// Matrix is frames × symbols log-probabilities.
type Matrix [][]float64

// Frames reports the number of frames.
func (m Matrix) Frames() int { return len(m) }

// Width reports the number of symbol columns, 0 for an empty matrix.
func (m Matrix) Width() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Check verifies that every frame has exactly width columns.
func (m Matrix) Check(width int) error {
	if len(m) == 0 {
		return errors.New("no frames")
	}
	for i, row := range m {
		if len(row) != width {
			return fmt.Errorf("frame %d has %d columns, vocabulary has %d symbols", i, len(row), width)
		}
	}
	return nil
}

// Load reads path, choosing the decoder by extension.
func Load(path string) (Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		marker := services.ErrInput
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, stageName, "open", path, err)
	}
	defer f.Close()

	var m Matrix
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtNPY:
		m, err = ReadNPY(f)
	default:
		m, err = ReadText(f)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrInput, stageName, "decode", path, err)
	}
	return m, nil
}

// Find returns the first existing file named stem plus a recognised extension in dir.
func Find(dir, stem string) (string, bool) {
	for _, ext := range Extensions {
		candidate := filepath.Join(dir, stem+ext)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}
