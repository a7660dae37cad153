package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ctcseg/internal/segment"
)

const fieldSeparator = " | "

// Line is one parsed segment line.
type Line struct {
	segment.Segment
	Processed  string
	Raw        string
	Normalized string
}

// Document is a parsed segment file.
type Document struct {
	Audio string
	Lines []Line
}

// ReadFile parses the segment file at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read parses a segment file.
func Read(r io.Reader) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("segment file is empty")
	}
	doc := &Document{Audio: scanner.Text()}
	n := 1
	for scanner.Scan() {
		n++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		line, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		doc.Lines = append(doc.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseLine(text string) (Line, error) {
	var line Line
	parts := strings.SplitN(text, fieldSeparator, 4)
	if len(parts) != 4 {
		return line, fmt.Errorf("expected 4 fields, got %d", len(parts))
	}
	nums := strings.Fields(parts[0])
	if len(nums) != 3 {
		return line, fmt.Errorf("expected start end score, got %q", parts[0])
	}
	values := make([]float64, 3)
	for i, field := range nums {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return line, fmt.Errorf("parse %q: %w", field, err)
		}
		values[i] = v
	}
	line.Start, line.End, line.Score = values[0], values[1], values[2]
	line.Processed, line.Raw, line.Normalized = parts[1], parts[2], parts[3]
	return line, nil
}
