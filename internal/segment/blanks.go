package segment

// BlankSpan is a run of blank frames [Start, End).
type BlankSpan struct {
	Start int
	End   int
	Count int
}

// BlankSpans lists the interior blank runs of symbols. Runs touching the first
// or last frame are ignored since they carry no boundary information.
func BlankSpans(symbols []string, blank string) []BlankSpan {
	var spans []BlankSpan
	start := -1
	for i, sym := range symbols {
		if sym == blank {
			if start < 0 {
				start = i
			}
			continue
		}
		if start > 0 {
			spans = append(spans, BlankSpan{Start: start, End: i, Count: i - start})
		}
		start = -1
	}
	return spans
}

// LongestBlankSpan returns the longest span lying entirely within frames [from, to).
func LongestBlankSpan(spans []BlankSpan, from, to int) (BlankSpan, bool) {
	var best BlankSpan
	found := false
	for _, s := range spans {
		if s.Start < from || s.End > to {
			continue
		}
		if !found || s.Count > best.Count {
			best, found = s, true
		}
	}
	return best, found
}

// Lowest returns the index of the lowest-scoring segment, or -1 when there are none.
func Lowest(segments []Segment) int {
	idx := -1
	for i, s := range segments {
		if idx < 0 || s.Score < segments[idx].Score {
			idx = i
		}
	}
	return idx
}
