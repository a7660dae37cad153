package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ctcseg/internal/services"
)

const runColumns = `id, mode, logprob_dir, transcript_dir, audio_dir, output_dir, workers,
    status, started_at, finished_at, succeeded, failed`

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const jobColumns = `run_id, job_id, transcript_path, output_path, status, error_kind,
    error_message, utterances, degenerate, min_score, duration_ms, finished_at`

// StartRun records a new running batch and returns it with a fresh identifier.
func (s *Store) StartRun(ctx context.Context, spec RunSpec) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		RunSpec:   spec,
		Status:    RunRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, 0, 0)`,
		run.ID, spec.Mode, spec.LogProbDir, spec.TranscriptDir, spec.AudioDir, spec.OutputDir, spec.Workers,
		string(run.Status), run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordJob appends a job outcome and bumps the run counters.
func (s *Store) RecordJob(ctx context.Context, rec JobRecord) error {
	ctx = ensureContext(ctx)
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now().UTC()
	}
	counter := "succeeded"
	if rec.Status == JobFailed {
		counter = "failed"
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var minScore any
		if rec.MinScore != nil {
			minScore = *rec.MinScore
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID, rec.JobID, rec.TranscriptPath, nullableString(rec.OutputPath), string(rec.Status),
			nullableString(rec.ErrorKind), nullableString(rec.ErrorMessage), rec.Utterances, rec.Degenerate,
			minScore, rec.Duration.Milliseconds(), rec.FinishedAt.UTC().Format(timeLayout),
		); err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		res, err := tx.ExecContext(ctx, `UPDATE runs SET `+counter+` = `+counter+` + 1 WHERE id = ?`, rec.RunID)
		if err != nil {
			return fmt.Errorf("update run counters: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return services.Wrap(services.ErrNotFound, "ledger", "record job", "unknown run "+rec.RunID, nil)
		}
		return tx.Commit()
	})
}

// FinishRun marks a run as ended with status.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(timeLayout), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrNotFound, "ledger", "finish run", "unknown run "+runID, nil)
	}
	return nil
}

// GetRun fetches a run by full identifier or unique prefix.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, services.Wrap(services.ErrValidation, "ledger", "get run", "run id required", nil)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY started_at LIMIT 2`,
		idOrPrefix, escapeLike(idOrPrefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if run.ID == idOrPrefix {
			return run, nil
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(runs) {
	case 0:
		return nil, services.Wrap(services.ErrNotFound, "ledger", "get run", "no run matches "+idOrPrefix, nil)
	case 1:
		return runs[0], nil
	default:
		return nil, services.Wrap(services.ErrValidation, "ledger", "get run", "ambiguous run prefix "+idOrPrefix, nil)
	}
}

// ListRuns returns the most recent runs first. A non-positive limit returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ListJobs returns the jobs of a run in completion order.
func (s *Store) ListJobs(ctx context.Context, runID string) ([]*JobRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+jobColumns+` FROM jobs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*JobRecord
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// MarkInterrupted flags runs left in the running state by a crashed process.
func (s *Store) MarkInterrupted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE status = ?`,
		string(RunInterrupted), time.Now().UTC().Format(timeLayout), string(RunRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		status     string
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(
		&run.ID, &run.Mode, &run.LogProbDir, &run.TranscriptDir, &run.AudioDir, &run.OutputDir, &run.Workers,
		&status, &startedAt, &finishedAt, &run.Succeeded, &run.Failed,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Status = RunStatus(status)
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		t := parseTime(finishedAt.String)
		run.FinishedAt = &t
	}
	return &run, nil
}

func scanJob(row rowScanner) (*JobRecord, error) {
	var (
		job        JobRecord
		status     string
		outputPath sql.NullString
		errorKind  sql.NullString
		errorMsg   sql.NullString
		minScore   sql.NullFloat64
		durationMS int64
		finishedAt string
	)
	if err := row.Scan(
		&job.RunID, &job.JobID, &job.TranscriptPath, &outputPath, &status, &errorKind,
		&errorMsg, &job.Utterances, &job.Degenerate, &minScore, &durationMS, &finishedAt,
	); err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}
	job.Status = JobStatus(status)
	job.OutputPath = outputPath.String
	job.ErrorKind = errorKind.String
	job.ErrorMessage = errorMsg.String
	if minScore.Valid {
		v := minScore.Float64
		job.MinScore = &v
	}
	job.Duration = time.Duration(durationMS) * time.Millisecond
	job.FinishedAt = parseTime(finishedAt)
	return &job, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func escapeLike(value string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(value)
}

// IsNotFound reports whether err means the requested run does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, services.ErrNotFound)
}
