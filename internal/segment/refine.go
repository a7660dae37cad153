package segment

import (
	"errors"
	"fmt"
	"math"
)

// MinScore marks a degenerate segment whose end frame is not after its start frame.
const MinScore = -1e10

// DefaultLookback is how many frames before a blank start frame are inspected
// for the beginning of the blank run.
const DefaultLookback = 20

// boundaryDrift caps how far a boundary may move from the raw timing, in seconds.
const boundaryDrift = 0.5

// Segment is one utterance's time span and confidence. Score is a mean
// log-probability, or MinScore.
type Segment struct {
	Start float64
	End   float64
	Score float64
}

// Degenerate reports whether the segment carries the sentinel score.
func (s Segment) Degenerate() bool { return s.Score <= MinScore }

// Params controls refinement.
type Params struct {
	// IndexDuration is the duration of one frame in seconds.
	IndexDuration float64
	// ScoreWindow is the window length L, in frames, for min-of-means scoring.
	ScoreWindow int
	// Blank is the blank symbol as it appears in Alignment.Symbols.
	Blank string
	// Lookback overrides DefaultLookback when positive.
	Lookback int
}

func (p Params) validate() error {
	if p.IndexDuration <= 0 {
		return fmt.Errorf("segment: index duration must be positive, got %g", p.IndexDuration)
	}
	if p.ScoreWindow <= 0 {
		return fmt.Errorf("segment: score window must be positive, got %d", p.ScoreWindow)
	}
	return nil
}

func (p Params) lookback() int {
	if p.Lookback > 0 {
		return p.Lookback
	}
	return DefaultLookback
}

// Refine returns one segment per utterance delimited by begins, which holds
// one entry per utterance plus a final end marker.
func Refine(begins []int, a *Alignment, p Params) ([]Segment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if a == nil || len(a.Timings) == 0 {
		return nil, errors.New("segment: alignment has no timings")
	}
	if len(begins) == 0 {
		return nil, nil
	}
	segments := make([]Segment, 0, len(begins)-1)
	for i := 0; i+1 < len(begins); i++ {
		start := BoundaryTime(a.Timings, begins[i], true)
		end := BoundaryTime(a.Timings, begins[i+1], false)

		startFrame, start := SnapStart(start, a.Symbols, p)
		endFrame := roundFrame(end / p.IndexDuration)

		segments = append(segments, Segment{
			Start: start,
			End:   end,
			Score: Score(a.Probs, startFrame, endFrame, p.ScoreWindow),
		})
	}
	return segments, nil
}

// BoundaryTime applies the midpoint rule at matrix position idx. The midpoint
// of timings[idx-1] and timings[idx] is limited to half a second after
// timings[idx-1] for an end boundary, or half a second before timings[idx+1]
// for a start boundary. Out-of-range neighbours are clamped to the ends.
func BoundaryTime(timings []float64, idx int, begin bool) float64 {
	at := func(i int) float64 {
		return timings[min(max(i, 0), len(timings)-1)]
	}
	mid := (at(idx) + at(idx-1)) / 2
	if begin {
		return math.Max(at(idx+1)-boundaryDrift, mid)
	}
	return math.Min(at(idx-1)+boundaryDrift, mid)
}

// SnapStart converts start seconds to a frame. When the floored frame is
// blank, the start moves to the centre of the blank run ending there (at most
// Lookback frames back) and the seconds are recomputed from that frame.
// Otherwise the frame estimate is rounded and the seconds are kept.
func SnapStart(start float64, symbols []string, p Params) (int, float64) {
	estimate := start / p.IndexDuration
	floor := int(math.Floor(estimate))
	if !isBlank(symbols, floor, p.Blank) {
		return roundFrame(estimate), start
	}

	runStart := -1
	limit := floor - p.lookback()
	for j := floor - 1; j >= limit && isBlank(symbols, j, p.Blank); j-- {
		runStart = j
	}
	frame := floor
	if runStart >= 0 {
		frame = roundFrame(float64(runStart) + float64(floor-runStart)/2)
	}
	return frame, float64(frame) * p.IndexDuration
}

// Score is the confidence of frames [start, end): MinScore when the span is
// empty, the mean probability when it spans at most window frames, and
// otherwise the minimum mean over every window-length sub-span.
func Score(probs []float64, start, end, window int) float64 {
	if end <= start {
		return MinScore
	}
	start = min(max(start, 0), len(probs))
	end = min(max(end, 0), len(probs))
	if end <= start {
		return MinScore
	}
	if window <= 0 || end-start <= window {
		return mean(probs[start:end])
	}

	sum := 0.0
	for _, v := range probs[start : start+window] {
		sum += v
	}
	lowest := sum
	for t := start + window; t < end; t++ {
		sum += probs[t] - probs[t-window]
		lowest = math.Min(lowest, sum)
	}
	return lowest / float64(window)
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func roundFrame(v float64) int {
	return int(math.RoundToEven(v))
}

func isBlank(symbols []string, i int, blank string) bool {
	return i >= 0 && i < len(symbols) && symbols[i] == blank
}
