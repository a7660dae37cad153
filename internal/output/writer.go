package output

import (
	"fmt"
	"io"
	"strings"

	"ctcseg/internal/fileutil"
	"ctcseg/internal/segment"
	"ctcseg/internal/services"
)

const stageName = "output"

// Entry is one utterance: its segments (usually exactly one) and its three
// text variants.
type Entry struct {
	Segments   []segment.Segment
	Processed  string
	Raw        string
	Normalized string
}

// NewEntries pairs one segment per utterance with the utterance texts.
func NewEntries(segments []segment.Segment, processed, raw, normalized []string) ([]Entry, error) {
	n := len(segments)
	if len(processed) != n || len(raw) != n || len(normalized) != n {
		return nil, services.Wrap(services.ErrValidation, stageName, "pair segments",
			fmt.Sprintf("%d segments for %d/%d/%d utterances", n, len(processed), len(raw), len(normalized)), nil)
	}
	entries := make([]Entry, n)
	for i := range segments {
		entries[i] = Entry{
			Segments:   []segment.Segment{segments[i]},
			Processed:  processed[i],
			Raw:        raw[i],
			Normalized: normalized[i],
		}
	}
	return entries, nil
}

// Encode writes the segment file body to w.
func Encode(w io.Writer, audioPath string, entries []Entry) error {
	if _, err := io.WriteString(w, audioPath+"\n"); err != nil {
		return err
	}
	for _, e := range entries {
		for _, s := range e.Segments {
			line := fmt.Sprintf("%s %s %s | %s | %s | %s\n",
				FormatFloat(s.Start), FormatFloat(s.End), FormatFloat(s.Score),
				e.Processed, e.Raw, e.Normalized)
			if _, err := io.WriteString(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// Write creates or replaces path with the segment file. The file appears only
// once fully written.
func Write(path, audioPath string, entries []Entry) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrValidation, stageName, "write", "output path required", nil)
	}
	err := fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return Encode(w, audioPath, entries)
	})
	if err != nil {
		return services.Wrap(services.ErrInternal, stageName, "write", path, err)
	}
	return nil
}

// Exists reports whether a segment file is present at path.
func Exists(path string) bool {
	return fileutil.Exists(path)
}
