// Package services defines shared utilities consumed by the segmentation
// pipeline and the batch orchestrator.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, job IDs, and stage names for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent ledger classifications (input vs backend vs internal).
//
// Use these helpers when wiring new pipeline steps so failure reporting stays
// uniform across jobs.
package services
