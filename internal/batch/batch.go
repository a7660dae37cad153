package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"ctcseg/internal/config"
	"ctcseg/internal/logging"
	"ctcseg/internal/logprobs"
	"ctcseg/internal/pipeline"
	"ctcseg/internal/runstore"
	"ctcseg/internal/services"
	"ctcseg/internal/transcript"
)

const (
	// LockFileName is created in the output directory for the duration of a run.
	LockFileName = ".ctcseg.lock"
	// OutputSuffix is appended to each job stem to name its segment file.
	OutputSuffix = "_segments.txt"
	// DefaultAudioExt names the audio path written in segment file headers.
	DefaultAudioExt = ".wav"
)

// ErrOutputLocked means another run holds the output directory.
var ErrOutputLocked = errors.New("output directory is locked by another run")

// Inputs names the directories of one batch.
type Inputs struct {
	LogProbDir    string
	TranscriptDir string
	AudioDir      string
	OutputDir     string
	AudioExt      string
}

// Discover lists one job per processed transcript in TranscriptDir, sorted by
// stem. Sibling variants and earlier segment files are not jobs. A job whose log-probabilities are
// missing is still returned; it fails when run.
func Discover(in Inputs) ([]pipeline.Job, error) {
	entries, err := os.ReadDir(in.TranscriptDir)
	if err != nil {
		return nil, services.Wrap(services.ErrInput, "batch", "discover", in.TranscriptDir, err)
	}
	audioExt := in.AudioExt
	if audioExt == "" {
		audioExt = DefaultAudioExt
	}
	if !strings.HasPrefix(audioExt, ".") {
		audioExt = "." + audioExt
	}

	var jobs []pipeline.Job
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, transcript.Ext) || transcript.IsVariant(name) || strings.HasSuffix(name, OutputSuffix) {
			continue
		}
		stem := strings.TrimSuffix(name, transcript.Ext)
		lp, ok := logprobs.Find(in.LogProbDir, stem)
		if !ok {
			lp = filepath.Join(in.LogProbDir, stem+logprobs.ExtNPY)
		}
		jobs = append(jobs, pipeline.Job{
			ID:             stem,
			AudioPath:      filepath.Join(in.AudioDir, stem+audioExt),
			LogProbsPath:   lp,
			TranscriptPath: filepath.Join(in.TranscriptDir, name),
			OutputPath:     filepath.Join(in.OutputDir, stem+OutputSuffix),
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

// Orchestrator runs batches for one configuration.
type Orchestrator struct {
	cfg     *config.Config
	handler Handler
	store   *runstore.Store
	logger  *slog.Logger
}

// New creates an orchestrator. store may be nil to skip the ledger.
func New(cfg *config.Config, handler Handler, store *runstore.Store, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{cfg: cfg, handler: handler, store: store, logger: logger}
}

// NewForRunner creates an orchestrator that runs jobs with runner.
func NewForRunner(cfg *config.Config, runner *pipeline.Runner, store *runstore.Store, logger *slog.Logger) *Orchestrator {
	return New(cfg, runner.Run, store, logger)
}

// Run processes every job discovered under in. Individual job failures are
// reported in the summary; the returned error covers only setup problems and
// cancellation.
func (o *Orchestrator) Run(ctx context.Context, in Inputs) (*Summary, error) {
	if err := os.MkdirAll(in.OutputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrInput, "batch", "prepare output", in.OutputDir, err)
	}
	lock := flock.New(filepath.Join(in.OutputDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrInternal, "batch", "lock output", in.OutputDir, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "batch", "lock output", in.OutputDir, ErrOutputLocked)
	}
	defer func() { _ = lock.Unlock() }()

	jobs, err := Discover(in)
	if err != nil {
		return nil, err
	}

	runID := ""
	if o.store != nil {
		run, err := o.store.StartRun(ctx, runstore.RunSpec{
			Mode:          o.cfg.Alignment.Mode,
			LogProbDir:    in.LogProbDir,
			TranscriptDir: in.TranscriptDir,
			AudioDir:      in.AudioDir,
			OutputDir:     in.OutputDir,
			Workers:       o.cfg.Batch.Workers,
		})
		if err != nil {
			return nil, services.Wrap(services.ErrInternal, "batch", "start run", "", err)
		}
		runID = run.ID
	}

	logger := logging.WithRunID(logging.NewComponentLogger(o.logger, "batch"), runID)
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("jobs", len(jobs)),
		logging.Int("workers", o.cfg.Batch.Workers),
		logging.String("output_dir", in.OutputDir),
		logging.Bool("ledger", o.store != nil),
	)

	pool := NewPool(PoolOptions{
		Workers:      o.cfg.Batch.Workers,
		QueueSize:    o.cfg.Batch.QueueSize,
		ResultBuffer: o.cfg.Batch.LogBuffer,
		Level:        jobLevel(o.logger),
		Handler:      o.handler,
	})
	pool.Start(ctx)

	submitErr := make(chan error, 1)
	go func() {
		defer pool.Close()
		for _, job := range jobs {
			if err := pool.Submit(ctx, job); err != nil {
				submitErr <- err
				return
			}
		}
		submitErr <- nil
	}()

	c := &collector{runID: runID, handler: logging.WithRunID(o.logger, runID).Handler(), ledger: o.ledger(), logger: logger}
	summary := c.drain(ctx, pool.Results())
	stopErr := <-submitErr

	status := runstore.RunCompleted
	if stopErr != nil {
		status = runstore.RunInterrupted
	}
	if o.store != nil {
		if err := o.store.FinishRun(context.WithoutCancel(ctx), runID, status); err != nil {
			logger.Warn("finish run in ledger failed", logging.Error(err))
		}
	}

	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.String("status", string(status)),
	)
	if stopErr != nil {
		return summary, fmt.Errorf("batch interrupted after %d of %d jobs: %w", summary.Total(), len(jobs), stopErr)
	}
	return summary, nil
}

func (o *Orchestrator) ledger() Ledger {
	if o.store == nil {
		return nil
	}
	return o.store
}

// jobLevel captures only what the shared logger would emit.
func jobLevel(logger *slog.Logger) slog.Leveler {
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if logger.Enabled(context.Background(), level) {
			return level
		}
	}
	return slog.LevelError
}
