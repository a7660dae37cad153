package testsupport

import (
	"context"

	"ctcseg/internal/backend"
	"ctcseg/internal/segment"
)

// LinearAligner returns an aligner that spreads matrix positions evenly over
// the input frames, reports prob for every frame and never emits a blank.
func LinearAligner(prob float64) backend.Aligner {
	return backend.AlignerFunc(func(_ context.Context, req backend.Request) (*segment.Alignment, error) {
		frames := len(req.LogProbs)
		rows := len(req.Matrix.Rows)
		total := float64(frames) * req.Params.IndexDuration
		timings := make([]float64, rows)
		for i := range timings {
			timings[i] = total * float64(i) / float64(rows)
		}
		probs := make([]float64, frames)
		symbols := make([]string, frames)
		for i := range probs {
			probs[i] = prob
			symbols[i] = req.Vocabulary[0]
		}
		return &segment.Alignment{Timings: timings, Probs: probs, Symbols: symbols}, nil
	})
}
