package output

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ctcseg/internal/segment"
	"ctcseg/internal/services"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{0.04, "0.04"},
		{1.3, "1.3"},
		{-0.25, "-0.25"},
		{segment.MinScore, "-10000000000.0"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1.5e-7, "1.5e-07"},
		{1e16, "1e+16"},
		{123456789012345.0, "123456789012345.0"},
	}
	for _, tt := range tests {
		if got := FormatFloat(tt.in); got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncode(t *testing.T) {
	entries := []Entry{
		{Segments: []segment.Segment{{Start: 0.8, End: 1.4, Score: -0.25}}, Processed: "hello world", Raw: "Hello, world!", Normalized: "hello world"},
		{Segments: []segment.Segment{{Start: 1.4, End: 1.4, Score: segment.MinScore}}, Processed: "bye", Raw: "Bye.", Normalized: "bye"},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, "/audio/talk.wav", entries); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "/audio/talk.wav\n" +
		"0.8 1.4 -0.25 | hello world | Hello, world! | hello world\n" +
		"1.4 1.4 -10000000000.0 | bye | Bye. | bye\n"
	if buf.String() != want {
		t.Fatalf("Encode =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestEncodeSubSegments(t *testing.T) {
	entries := []Entry{{
		Segments:   []segment.Segment{{Start: 0, End: 1, Score: -1}, {Start: 1, End: 2, Score: -2}},
		Processed:  "long line",
		Raw:        "Long line.",
		Normalized: "long line",
	}}
	var buf bytes.Buffer
	if err := Encode(&buf, "a.wav", entries); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	for _, l := range lines[1:] {
		if !strings.HasSuffix(l, "| long line | Long line. | long line") {
			t.Fatalf("sub-segment line %q lost its text", l)
		}
	}
}

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "talk_segments.txt")
	segs := []segment.Segment{{Start: 0.1, End: 2.25, Score: -0.5}, {Start: 2.25, End: 4, Score: -1.75}}
	entries, err := NewEntries(segs, []string{"a b", "c"}, []string{"A b.", "C!"}, []string{"a b", "c"})
	if err != nil {
		t.Fatalf("NewEntries: %v", err)
	}
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Write(path, "/audio/talk.wav", entries); err != nil {
		t.Fatalf("Write: %v", err)
	}
	doc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if doc.Audio != "/audio/talk.wav" || len(doc.Lines) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.Lines[1].Segment != segs[1] || doc.Lines[1].Raw != "C!" {
		t.Fatalf("line 1 = %+v", doc.Lines[1])
	}
}

func TestNewEntriesMismatch(t *testing.T) {
	_, err := NewEntries([]segment.Segment{{}}, []string{"a"}, nil, []string{"a"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestWriteMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "out.txt")
	if err := Write(path, "a.wav", nil); err == nil {
		t.Fatal("expected error")
	}
	if Exists(path) {
		t.Fatal("file created")
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := Read(strings.NewReader("")); err == nil {
		t.Fatal("expected empty error")
	}
	if _, err := Read(strings.NewReader("a.wav\n1.0 2.0 | x | y | z\n")); err == nil {
		t.Fatal("expected field count error")
	}
	if _, err := Read(strings.NewReader("a.wav\n1.0 2.0 x | a | b | c\n")); err == nil {
		t.Fatal("expected parse error")
	}
}
