package preflight

import (
	"ctcseg/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the configuration checks: ledger and log directories,
// vocabulary and backend.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckVocabulary(cfg),
	}
	results = append(results, CheckBackend(cfg)...)
	return results
}

// CheckInputs verifies the directories of one batch. The output directory may
// not exist yet; its parent must then be writable.
func CheckInputs(logProbDir, transcriptDir, outputDir string) []Result {
	return []Result{
		CheckReadableDirectory("Log-probability directory", logProbDir),
		CheckReadableDirectory("Transcript directory", transcriptDir),
		CheckOutputDirectory("Output directory", outputDir),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
