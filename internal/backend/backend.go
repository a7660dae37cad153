package backend

import (
	"context"

	"ctcseg/internal/config"
	"ctcseg/internal/matrix"
	"ctcseg/internal/segment"
)

// Params are the alignment parameters forwarded to the backend.
type Params struct {
	Blank         int     `json:"blank"`
	MinWindowSize int     `json:"min_window_size"`
	IndexDuration float64 `json:"index_duration"`
	ScoreWindow   int     `json:"score_min_mean_over_L"`
}

// ParamsFromConfig builds backend parameters for a vocabulary whose blank sits at blank.
func ParamsFromConfig(cfg config.Alignment, blank int) Params {
	return Params{
		Blank:         blank,
		MinWindowSize: cfg.MinWindowSize,
		IndexDuration: cfg.IndexDuration,
		ScoreWindow:   cfg.ScoreWindow,
	}
}

// Request is one alignment problem.
type Request struct {
	Matrix     *matrix.Matrix
	LogProbs   [][]float64
	Vocabulary []string
	Params     Params
}

// Aligner runs forced alignment for one request.
type Aligner interface {
	Align(ctx context.Context, req Request) (*segment.Alignment, error)
}

// AlignerFunc adapts a function to Aligner.
type AlignerFunc func(ctx context.Context, req Request) (*segment.Alignment, error)

func (f AlignerFunc) Align(ctx context.Context, req Request) (*segment.Alignment, error) {
	return f(ctx, req)
}
