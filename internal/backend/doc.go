// Package backend defines the contract of the external forced-alignment
// backend and an implementation that runs it as a child process.
//
// The backend receives the transition matrix, the frame log-probabilities, the
// vocabulary and the alignment parameters as one JSON document on stdin and
// answers with per-position timings plus per-frame probabilities and
// backtracked symbols on stdout. The dynamic program itself lives outside this
// repository.
package backend
