package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"ctcseg/internal/logging"
	"ctcseg/internal/pipeline"
	"ctcseg/internal/services"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("batch: pool closed")

// Handler runs one job, logging into logger.
type Handler func(ctx context.Context, job pipeline.Job, logger *slog.Logger) (*pipeline.Result, error)

// Outcome is what a worker reports for one job.
type Outcome struct {
	Job      pipeline.Job
	Result   *pipeline.Result
	Err      error
	Records  []slog.Record
	Worker   int
	Duration time.Duration
}

// Failed reports whether the job produced no output.
func (o Outcome) Failed() bool { return o.Err != nil }

// PoolOptions configures a Pool.
type PoolOptions struct {
	Workers   int
	QueueSize int
	// ResultBuffer bounds the outcome channel feeding the collector.
	ResultBuffer int
	// Level is the minimum level captured from jobs.
	Level   slog.Leveler
	Handler Handler
}

// Pool is a fixed-size worker pool with a bounded job queue.
type Pool struct {
	opts    PoolOptions
	jobs    chan pipeline.Job
	results chan Outcome
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	start  sync.Once
}

// NewPool creates a pool; call Start to launch workers.
func NewPool(opts PoolOptions) *Pool {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	if opts.ResultBuffer < 0 {
		opts.ResultBuffer = 0
	}
	return &Pool{
		opts:    opts,
		jobs:    make(chan pipeline.Job, opts.QueueSize),
		results: make(chan Outcome, opts.ResultBuffer),
	}
}

// Start launches the workers. Jobs run under ctx; cancelling it aborts
// in-flight backend calls but queued jobs are still drained and reported.
func (p *Pool) Start(ctx context.Context) {
	p.start.Do(func() {
		for i := 0; i < p.opts.Workers; i++ {
			p.wg.Add(1)
			go p.worker(ctx, i)
		}
		go func() {
			p.wg.Wait()
			close(p.results)
		}()
	})
}

// Submit queues job, blocking while the queue is full.
func (p *Pool) Submit(ctx context.Context, job pipeline.Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs. Queued jobs still run.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.jobs)
}

// Results delivers one Outcome per submitted job and is closed after Close
// once every worker has exited.
func (p *Pool) Results() <-chan Outcome {
	return p.results
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.opts.Workers }

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.results <- p.execute(ctx, id, job)
	}
}

func (p *Pool) execute(ctx context.Context, worker int, job pipeline.Job) (out Outcome) {
	started := time.Now()
	rec := logging.NewRecorder(p.opts.Level)
	logger := rec.Logger().With(logging.Int("worker", worker))

	out = Outcome{Job: job, Worker: worker}
	defer func() {
		if r := recover(); r != nil {
			out.Result = nil
			out.Err = services.Wrap(services.ErrInternal, "batch", "run job", fmt.Sprintf("panic: %v", r), nil)
			logger.Debug("job panic stack", logging.String("stack", string(debug.Stack())))
		}
		if out.Err != nil {
			logging.ErrorEvent(logger, "job_failed", "job failed",
				logging.String(logging.FieldJobID, job.ID),
				logging.String(logging.FieldTranscript, job.TranscriptPath),
				logging.String(logging.FieldErrorKind, services.Kind(out.Err)),
				logging.Error(out.Err),
			)
		}
		out.Duration = time.Since(started)
		out.Records = rec.Records()
	}()

	if p.opts.Handler == nil {
		out.Err = services.Wrap(services.ErrConfiguration, "batch", "run job", "no job handler configured", nil)
		return out
	}
	out.Result, out.Err = p.opts.Handler(ctx, job, logger)
	return out
}
