// Package batch runs alignment jobs over directories of inputs.
//
// A Pool fans jobs out to a fixed number of workers through a bounded queue.
// Each job logs into its own logging.Recorder; the records travel back with
// the job outcome over a bounded results channel to a single collector
// goroutine, which replays them through the shared log handler and appends the
// outcome to the run ledger. Workers never touch the shared handler or the
// ledger directly.
//
// Close is the drain-and-stop signal: it refuses further submissions, lets
// workers finish what is queued and closes the results channel once they exit.
// A failing or panicking job is reported as a failed outcome and never stops
// its siblings.
package batch
