package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"ctcseg/internal/services"
)

func writeVariants(t *testing.T, dir, stem, processed, raw, normalized string) string {
	t.Helper()
	path := filepath.Join(dir, stem+Ext)
	paths := SiblingPaths(path)
	for file, content := range map[string]string{paths.Processed: processed, paths.Raw: raw, paths.Normalized: normalized} {
		if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", file, err)
		}
	}
	return path
}

func TestSiblingPaths(t *testing.T) {
	got := SiblingPaths("/data/talk.txt")
	want := Paths{
		Processed:  "/data/talk.txt",
		Raw:        "/data/talk_with_punct.txt",
		Normalized: "/data/talk_with_punct_normalized.txt",
	}
	if got != want {
		t.Fatalf("SiblingPaths = %+v, want %+v", got, want)
	}
	if !IsVariant(want.Raw) || !IsVariant(want.Normalized) || IsVariant(want.Processed) {
		t.Fatal("IsVariant misclassified paths")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeVariants(t, dir, "talk",
		"hello world\n\n  good morning  \n",
		"Hello, world!\nGood morning.\n",
		"hello world\n\ngood morning\n\n")

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("Len = %d", set.Len())
	}
	if want := []string{"hello world", "good morning"}; !reflect.DeepEqual(set.Processed, want) {
		t.Fatalf("processed = %q", set.Processed)
	}
	if set.Raw[0] != "Hello, world!" || set.Normalized[1] != "good morning" {
		t.Fatalf("variants = %q / %q", set.Raw, set.Normalized)
	}
}

func TestLoadCountMismatch(t *testing.T) {
	dir := t.TempDir()
	path := writeVariants(t, dir, "talk", "a\nb\n", "A.\n", "a\nb\n")
	_, err := Load(path)
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("err = %v, want input error", err)
	}
	if !strings.Contains(err.Error(), "punctuated") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadMissingSibling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "talk.txt")
	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if services.Kind(err) != "input" {
		t.Fatalf("kind = %q", services.Kind(err))
	}
}

func TestReadLinesCRLF(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("one\r\n\r\ntwo\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"one", "two"}; !reflect.DeepEqual(lines, want) {
		t.Fatalf("lines = %q", lines)
	}
}
