package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"ctcseg/internal/output"
	"ctcseg/internal/runstore"
)

const timeFormat = "2006-01-02 15:04:05"

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded batch runs",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsRecoverCommand(ctx))
	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					string(run.Status),
					run.StartedAt.Local().Format(timeFormat),
					run.Mode,
					strconv.Itoa(run.Succeeded),
					strconv.Itoa(run.Failed),
					run.OutputDir,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Status", "Started", "Mode", "OK", "Failed", "Output"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var showSegments bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its jobs (an ID prefix is accepted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			jobs, err := store.ListJobs(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeRunDetail(out, run)
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs recorded")
				return nil
			}
			fmt.Fprintln(out, renderJobs(jobs))
			if showSegments {
				for _, job := range jobs {
					if job.Status != runstore.JobSucceeded {
						continue
					}
					if err := writeSegments(out, job); err != nil {
						fmt.Fprintf(out, "%s: %v\n", job.JobID, err)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSegments, "segments", false, "Print the segments of each successful job")
	return cmd
}

func newRunsRecoverCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Mark runs left running by a crashed process as interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.MarkInterrupted(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d run(s) interrupted\n", n)
			return nil
		},
	}
}

func writeRunDetail(out io.Writer, run *runstore.Run) {
	fmt.Fprintf(out, "Run:          %s\n", run.ID)
	fmt.Fprintf(out, "Status:       %s\n", run.Status)
	fmt.Fprintf(out, "Started:      %s\n", run.StartedAt.Local().Format(timeFormat))
	if run.FinishedAt != nil {
		fmt.Fprintf(out, "Finished:     %s (%s)\n", run.FinishedAt.Local().Format(timeFormat), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(out, "Mode:         %s\n", run.Mode)
	fmt.Fprintf(out, "Workers:      %d\n", run.Workers)
	fmt.Fprintf(out, "Log-probs:    %s\n", run.LogProbDir)
	fmt.Fprintf(out, "Transcripts:  %s\n", run.TranscriptDir)
	fmt.Fprintf(out, "Output:       %s\n", run.OutputDir)
	fmt.Fprintf(out, "Jobs:         %d succeeded, %d failed\n", run.Succeeded, run.Failed)
}

func renderJobs(jobs []*runstore.JobRecord) string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		score := ""
		if job.MinScore != nil {
			score = output.FormatFloat(*job.MinScore)
		}
		detail := filepath.Base(job.OutputPath)
		if job.Status == runstore.JobFailed {
			detail = job.ErrorKind + ": " + job.ErrorMessage
		}
		rows = append(rows, []string{
			job.JobID,
			string(job.Status),
			strconv.Itoa(job.Utterances),
			yesNo(job.Degenerate > 0),
			score,
			job.Duration.Round(time.Millisecond).String(),
			detail,
		})
	}
	return renderTable(
		[]string{"Job", "Status", "Utterances", "Degenerate", "Min score", "Took", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func writeSegments(out io.Writer, job *runstore.JobRecord) error {
	if !output.Exists(job.OutputPath) {
		fmt.Fprintf(out, "\n%s: segment file %s no longer exists\n", job.JobID, job.OutputPath)
		return nil
	}
	doc, err := output.ReadFile(job.OutputPath)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		rows = append(rows, []string{
			output.FormatFloat(line.Start),
			output.FormatFloat(line.End),
			output.FormatFloat(line.Score),
			line.Raw,
		})
	}
	fmt.Fprintf(out, "\n%s (%s)\n", job.JobID, doc.Audio)
	fmt.Fprintln(out, renderTable(
		[]string{"Start", "End", "Score", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
