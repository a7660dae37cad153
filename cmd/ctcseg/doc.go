// Command ctcseg segments long transcribed recordings into utterance-level
// segments from CTC log-probabilities.
//
// Subcommands:
//   - run: align every transcript in a directory and write segment files
//   - matrix: print the transition matrix built for one transcript
//   - runs: inspect the run ledger
//   - check: run preflight checks
//   - config: create, validate, or print configuration
package main
