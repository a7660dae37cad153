package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// WriteTranscript writes stem.txt and its two sibling variants into dir and
// returns the processed transcript path.
func WriteTranscript(t testing.TB, dir, stem string, processed, raw, normalized []string) string {
	t.Helper()

	base := filepath.Join(dir, stem)
	writeLines(t, base+".txt", processed)
	writeLines(t, base+"_with_punct.txt", raw)
	writeLines(t, base+"_with_punct_normalized.txt", normalized)
	return base + ".txt"
}

// WriteLogProbs writes a frames × width tab-separated log-probability file
// holding value everywhere and returns its path.
func WriteLogProbs(t testing.TB, dir, stem string, frames, width int, value float64) string {
	t.Helper()

	cell := strconv.FormatFloat(value, 'g', -1, 64)
	row := strings.TrimSuffix(strings.Repeat(cell+"\t", width), "\t")
	lines := make([]string, frames)
	for i := range lines {
		lines[i] = row
	}
	path := filepath.Join(dir, stem+".tsv")
	writeLines(t, path, lines)
	return path
}

// WriteFile creates path (and its parents) with content.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeLines(t testing.TB, path string, lines []string) {
	t.Helper()
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	WriteFile(t, path, content)
}
