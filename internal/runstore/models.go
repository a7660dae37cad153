package runstore

import "time"

// RunStatus is the lifecycle state of a batch run.
type RunStatus string

const (
	RunRunning     RunStatus = "running"
	RunCompleted   RunStatus = "completed"
	RunInterrupted RunStatus = "interrupted"
)

// JobStatus is the outcome of one job.
type JobStatus string

const (
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// RunSpec describes a run at start time.
type RunSpec struct {
	Mode          string
	LogProbDir    string
	TranscriptDir string
	AudioDir      string
	OutputDir     string
	Workers       int
}

// Run is one batch run.
type Run struct {
	RunSpec

	ID         string
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt *time.Time
	Succeeded  int
	Failed     int
}

// Total is the number of jobs recorded for the run.
func (r *Run) Total() int { return r.Succeeded + r.Failed }

// JobRecord is the ledger row of one finished job.
type JobRecord struct {
	RunID          string
	JobID          string
	TranscriptPath string
	OutputPath     string
	Status         JobStatus
	ErrorKind      string
	ErrorMessage   string
	Utterances     int
	Degenerate     int
	MinScore       *float64
	Duration       time.Duration
	FinishedAt     time.Time
}
