package batch

import (
	"context"
	"log/slog"

	"ctcseg/internal/logging"
	"ctcseg/internal/runstore"
	"ctcseg/internal/services"
)

// Ledger receives one record per finished job.
type Ledger interface {
	RecordJob(ctx context.Context, rec runstore.JobRecord) error
}

// JobSummary is the outcome of one job as reported to callers.
type JobSummary struct {
	ID         string
	Transcript string
	Output     string
	Err        error
	Kind       string
	Utterances int
	MinScore   float64
}

// Summary aggregates a batch run.
type Summary struct {
	RunID     string
	Succeeded int
	Failed    int
	Jobs      []JobSummary
}

// Total returns the number of finished jobs.
func (s *Summary) Total() int { return s.Succeeded + s.Failed }

// collector is the single consumer of pool outcomes. It owns the shared log
// handler and the ledger for the duration of a run.
type collector struct {
	runID   string
	handler slog.Handler
	ledger  Ledger
	logger  *slog.Logger
}

func (c *collector) drain(ctx context.Context, results <-chan Outcome) *Summary {
	summary := &Summary{RunID: c.runID}
	for out := range results {
		if err := logging.Replay(ctx, c.handler, out.Records); err != nil {
			c.logger.Warn("replay job log failed", logging.String(logging.FieldJobID, out.Job.ID), logging.Error(err))
		}

		job := JobSummary{ID: out.Job.ID, Transcript: out.Job.TranscriptPath}
		rec := runstore.JobRecord{
			RunID:          c.runID,
			JobID:          out.Job.ID,
			TranscriptPath: out.Job.TranscriptPath,
			Duration:       out.Duration,
		}
		if out.Failed() {
			summary.Failed++
			job.Err = out.Err
			job.Kind = services.Kind(out.Err)
			rec.Status = runstore.JobFailed
			rec.ErrorKind = job.Kind
			rec.ErrorMessage = out.Err.Error()
		} else {
			summary.Succeeded++
			rec.Status = runstore.JobSucceeded
			rec.OutputPath = out.Job.OutputPath
			job.Output = out.Job.OutputPath
			if out.Result != nil {
				job.Utterances = out.Result.Utterances
				job.MinScore = out.Result.MinScore
				rec.Utterances = out.Result.Utterances
				rec.Degenerate = out.Result.Degenerate
				score := out.Result.MinScore
				rec.MinScore = &score
			}
		}
		summary.Jobs = append(summary.Jobs, job)

		if c.ledger != nil {
			if err := c.ledger.RecordJob(context.WithoutCancel(ctx), rec); err != nil {
				c.logger.Warn("record job in ledger failed", logging.String(logging.FieldJobID, out.Job.ID), logging.Error(err))
			}
		}
	}
	return summary
}
