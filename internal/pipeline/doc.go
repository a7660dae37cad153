// Package pipeline runs one alignment job end-to-end: load the transcript
// variants and frame log-probabilities, build the transition matrix, call the
// alignment backend, refine segments and write the segment file.
//
// A Runner holds no per-job state and may be shared by concurrent workers.
package pipeline
