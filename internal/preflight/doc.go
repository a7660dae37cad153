// Package preflight provides readiness checks for the filesystem paths,
// vocabulary and external alignment backend that ctcseg depends on.
//
// These checks run in two contexts:
//   - "ctcseg run" calls RunAll and the input checks before starting a
//     batch. If any check fails, the batch is not started.
//   - "ctcseg check" prints every result as a table.
package preflight
