package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"ctcseg/internal/backend"
	"ctcseg/internal/config"
	"ctcseg/internal/matrix"
	"ctcseg/internal/pipeline"
	"ctcseg/internal/transcript"
)

func newMatrixCommand(ctx *commandContext) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "matrix <transcript>",
		Short: "Print the transition matrix built for a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open transcript: %w", err)
			}
			utterances, err := transcript.ReadLines(file)
			file.Close()
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}

			runner, err := pipeline.NewRunner(cfg.Alignment, backend.NewCommand(cfg.Backend.Command), nil)
			if err != nil {
				return err
			}
			m, err := runner.BuildMatrix(utterances)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode: %s\n", runner.Mode())
			if runner.Mode() == config.ModeToken {
				tokenizer := "greedy longest match"
				if cfg.Alignment.TokenizerModel != "" {
					tokenizer = cfg.Alignment.TokenizerModel
				}
				fmt.Fprintf(out, "Tokenizer: %s\n", tokenizer)
			}
			fmt.Fprintf(out, "Rows: %d\n", len(m.Rows))
			if m.GroundTruth != "" {
				fmt.Fprintf(out, "Ground truth: %q\n", m.GroundTruth)
			}

			spans := make([][]string, 0, m.Utterances())
			for i := 0; i < m.Utterances(); i++ {
				begin, end := m.Span(i)
				spans = append(spans, []string{strconv.Itoa(i), strconv.Itoa(begin), strconv.Itoa(end), utterances[i]})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Begin", "End", "Utterance"},
				spans,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
			))

			for _, line := range matrix.Describe(m, runner.Vocabulary(), rows) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 20, "Number of matrix rows to print (0 for all)")
	return cmd
}
