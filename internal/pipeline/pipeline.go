package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ctcseg/internal/backend"
	"ctcseg/internal/config"
	"ctcseg/internal/logging"
	"ctcseg/internal/logprobs"
	"ctcseg/internal/matrix"
	"ctcseg/internal/output"
	"ctcseg/internal/segment"
	"ctcseg/internal/services"
	"ctcseg/internal/textutil"
	"ctcseg/internal/transcript"
	"ctcseg/internal/vocab"
)

const (
	// matrixPreviewRows is how many matrix rows are logged at debug level.
	matrixPreviewRows = 20
	// segmentPreview is how many leading segments are logged at debug level.
	segmentPreview = 5
)

// Job names the files of one alignment job.
type Job struct {
	ID             string
	AudioPath      string
	LogProbsPath   string
	TranscriptPath string
	OutputPath     string
}

// Result summarizes a completed job.
type Result struct {
	Utterances int
	Frames     int
	Degenerate int
	MinScore   float64
	OutputPath string
	Elapsed    time.Duration
}

// Runner executes jobs against one configuration.
type Runner struct {
	cfg     config.Alignment
	vocab   *vocab.Vocabulary
	builder matrix.Builder
	aligner backend.Aligner
}

// NewRunner wires a runner from configuration. tok may be nil to use the
// greedy tokenizer in token mode.
func NewRunner(cfg config.Alignment, aligner backend.Aligner, tok matrix.Tokenizer) (*Runner, error) {
	if aligner == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "alignment backend required", nil)
	}
	v, err := vocab.New(cfg.Vocabulary)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "vocabulary", err)
	}
	builder, err := matrix.FromConfig(cfg, v, tok)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "matrix builder", err)
	}
	return &Runner{cfg: cfg, vocab: v, builder: builder, aligner: aligner}, nil
}

// Vocabulary returns the runner's vocabulary.
func (r *Runner) Vocabulary() *vocab.Vocabulary { return r.vocab }

// Mode returns the matrix strategy in use.
func (r *Runner) Mode() string { return r.builder.Mode() }

// BuildMatrix normalizes utterances and builds their transition matrix.
func (r *Runner) BuildMatrix(utterances []string) (*matrix.Matrix, error) {
	normalized := textutil.NormalizeUtterances(utterances, r.cfg.NormalizeUnicode)
	m, err := r.builder.Build(normalized)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "matrix", "build", "", err)
	}
	if err := m.Check(len(utterances)); err != nil {
		return nil, services.Wrap(services.ErrInternal, "matrix", "check", "", err)
	}
	return m, nil
}

// Run executes job. Nothing is written when an error is returned.
func (r *Runner) Run(ctx context.Context, job Job, logger *slog.Logger) (*Result, error) {
	started := time.Now()
	ctx = services.WithJobID(ctx, job.ID)
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "pipeline")).With(
		logging.String(logging.FieldTranscript, job.TranscriptPath),
	)
	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("audio", job.AudioPath),
		logging.String("log_probs", job.LogProbsPath),
		logging.String("mode", r.builder.Mode()),
	)

	texts, err := transcript.Load(job.TranscriptPath)
	if err != nil {
		return nil, err
	}

	lpz, err := logprobs.Load(job.LogProbsPath)
	if err != nil {
		return nil, err
	}
	if err := lpz.Check(r.vocab.Len()); err != nil {
		return nil, services.Wrap(services.ErrInput, "logprobs", "check", job.LogProbsPath, err)
	}
	logger.Debug("inputs loaded",
		logging.Int("utterances", texts.Len()),
		logging.Int("frames", lpz.Frames()),
	)

	m, err := r.BuildMatrix(texts.Processed)
	if err != nil {
		return nil, err
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.Debug("transition matrix built",
			logging.Int("rows", len(m.Rows)),
			logging.Any("begins", m.Begins),
			logging.String("preview", strings.Join(matrix.Describe(m, r.vocab, matrixPreviewRows), "; ")),
		)
	}

	alignment, err := r.aligner.Align(services.WithStage(ctx, "alignment"), backend.Request{
		Matrix:     m,
		LogProbs:   lpz,
		Vocabulary: r.vocab.Symbols(),
		Params:     backend.ParamsFromConfig(r.cfg, r.vocab.BlankIndex()),
	})
	if err != nil {
		return nil, err
	}

	segments, err := segment.Refine(m.Begins, alignment, segment.Params{
		IndexDuration: r.cfg.IndexDuration,
		ScoreWindow:   r.cfg.ScoreWindow,
		Blank:         r.vocab.Blank(),
	})
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "refine", "segments", "", err)
	}
	r.logSegments(logger, segments, texts.Processed, alignment)

	entries, err := output.NewEntries(segments, texts.Processed, texts.Raw, texts.Normalized)
	if err != nil {
		return nil, err
	}
	if err := output.Write(job.OutputPath, job.AudioPath, entries); err != nil {
		return nil, err
	}

	result := &Result{
		Utterances: len(segments),
		Frames:     lpz.Frames(),
		OutputPath: job.OutputPath,
		MinScore:   segment.MinScore,
		Elapsed:    time.Since(started),
	}
	if idx := segment.Lowest(segments); idx >= 0 {
		result.MinScore = segments[idx].Score
	}
	for _, s := range segments {
		if s.Degenerate() {
			result.Degenerate++
		}
	}

	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.Int("segments", result.Utterances),
		logging.Int("degenerate", result.Degenerate),
		logging.Float64("min_score", result.MinScore),
		logging.String("output", job.OutputPath),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (r *Runner) logSegments(logger *slog.Logger, segments []segment.Segment, texts []string, a *segment.Alignment) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i, s := range segments[:min(segmentPreview, len(segments))] {
		logger.Debug("segment",
			logging.Int("index", i),
			logging.Float64("start", s.Start),
			logging.Float64("end", s.End),
			logging.Float64("score", s.Score),
			logging.String("text", texts[i]),
		)
	}

	idx := segment.Lowest(segments)
	if idx < 0 {
		return
	}
	lowest := segments[idx]
	from := int(lowest.Start / r.cfg.IndexDuration)
	to := int(lowest.End/r.cfg.IndexDuration) + 1
	span, ok := segment.LongestBlankSpan(segment.BlankSpans(a.Symbols, r.vocab.Blank()), from, to)
	attrs := []logging.Attr{
		logging.Int("index", idx),
		logging.Float64("score", lowest.Score),
		logging.String("text", texts[idx]),
	}
	if ok {
		attrs = append(attrs,
			logging.String("longest_blank", fmt.Sprintf("%d-%d", span.Start, span.End)),
			logging.Int("blank_frames", span.Count),
		)
	}
	logger.Debug("lowest scoring segment", logging.Args(attrs...)...)
}
