// Package logging assembles structured slog loggers and formatting helpers used
// across ctcseg.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs, job IDs, and stages. Batch workers never write to the
// shared handler directly: each job logs into a Recorder, and the orchestrator
// replays the captured records through one collector goroutine.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing guarantees as the rest of the system.
package logging
