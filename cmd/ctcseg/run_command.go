package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ctcseg/internal/backend"
	"ctcseg/internal/batch"
	"ctcseg/internal/config"
	"ctcseg/internal/output"
	"ctcseg/internal/pipeline"
	"ctcseg/internal/preflight"
	"ctcseg/internal/runstore"
)

type runInputs struct {
	logProbDir    string
	transcriptDir string
	audioDir      string
	outputDir     string
	audioExt      string
}

func (in *runInputs) bindFlags(cmd *cobra.Command, required bool) {
	flags := cmd.Flags()
	flags.StringVar(&in.logProbDir, "logprobs", "", "Directory of <stem>.npy or <stem>.tsv log-probability files")
	flags.StringVar(&in.transcriptDir, "transcripts", "", "Directory of <stem>.txt transcripts and their variants")
	flags.StringVar(&in.outputDir, "output", "", "Directory for <stem>_segments.txt files")
	if required {
		flags.StringVar(&in.audioDir, "audio", "", "Directory holding the audio files named in segment headers")
		flags.StringVar(&in.audioExt, "audio-ext", batch.DefaultAudioExt, "Audio file extension")
		for _, name := range []string{"logprobs", "transcripts", "output"} {
			_ = cmd.MarkFlagRequired(name)
		}
	}
}

func (in *runInputs) any() bool {
	return in.logProbDir != "" || in.transcriptDir != "" || in.outputDir != ""
}

func (in *runInputs) resolve() (batch.Inputs, error) {
	resolved := batch.Inputs{AudioExt: in.audioExt}
	for _, item := range []struct {
		value string
		dst   *string
	}{
		{in.logProbDir, &resolved.LogProbDir},
		{in.transcriptDir, &resolved.TranscriptDir},
		{in.audioDir, &resolved.AudioDir},
		{in.outputDir, &resolved.OutputDir},
	} {
		if strings.TrimSpace(item.value) == "" {
			continue
		}
		expanded, err := config.ExpandPath(item.value)
		if err != nil {
			return batch.Inputs{}, err
		}
		*item.dst = expanded
	}
	if resolved.AudioDir == "" {
		resolved.AudioDir = resolved.LogProbDir
	}
	return resolved, nil
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var in runInputs
	var workers int
	var skipPreflight bool
	var noLedger bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Segment every transcript in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Batch.Workers = workers
			}
			inputs, err := in.resolve()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !skipPreflight {
				results := append(preflight.RunAll(cfg), preflight.CheckInputs(inputs.LogProbDir, inputs.TranscriptDir, inputs.OutputDir)...)
				if failed := preflight.Failed(results); len(failed) > 0 {
					colorize := shouldColorize(out)
					for _, r := range failed {
						fmt.Fprintln(out, renderStatusLine(r.Name, statusError, r.Detail, colorize))
					}
					return errors.New("preflight checks failed (see `ctcseg check`)")
				}
			}

			runner, err := pipeline.NewRunner(cfg.Alignment, backend.NewCommand(cfg.Backend.Command, cfg.Backend.Args...), nil)
			if err != nil {
				return err
			}

			logger, closer, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			defer closer.Close()

			var store *runstore.Store
			if !noLedger {
				store, err = ctx.openLedger()
				if err != nil {
					return fmt.Errorf("open run ledger: %w", err)
				}
				defer store.Close()
			}

			summary, runErr := batch.NewForRunner(cfg, runner, store, logger).Run(cmd.Context(), inputs)
			if summary != nil {
				printSummary(out, summary)
			}
			if runErr != nil {
				return runErr
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", summary.Failed, summary.Total())
			}
			return nil
		},
	}

	in.bindFlags(cmd, true)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Worker count (overrides config)")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Start without running preflight checks")
	cmd.Flags().BoolVar(&noLedger, "no-ledger", false, "Do not record the run in the ledger")
	return cmd
}

func printSummary(out io.Writer, summary *batch.Summary) {
	rows := make([][]string, 0, len(summary.Jobs))
	for _, job := range summary.Jobs {
		status := "ok"
		detail := filepath.Base(job.Output)
		utterances := strconv.Itoa(job.Utterances)
		score := output.FormatFloat(job.MinScore)
		if job.Err != nil {
			status = "failed (" + job.Kind + ")"
			detail = job.Err.Error()
			utterances, score = "", ""
		}
		rows = append(rows, []string{job.ID, status, utterances, score, detail})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"Job", "Status", "Utterances", "Min score", "Detail"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		))
	}
	if summary.RunID != "" {
		fmt.Fprintf(out, "Run %s: %d succeeded, %d failed\n", summary.RunID, summary.Succeeded, summary.Failed)
		return
	}
	fmt.Fprintf(out, "%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
}
