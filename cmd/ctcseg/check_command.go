package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ctcseg/internal/fileutil"
	"ctcseg/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var in runInputs

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check configuration, backend and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			if ctx.configPath != "" && !fileutil.Exists(ctx.configPath) {
				fmt.Fprintln(out, renderStatusLine("Config", statusWarn, "no file at "+ctx.configPath+"; defaults in use", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Config", statusOK, ctx.configPath, colorize))
			}

			results := preflight.RunAll(cfg)
			if in.any() {
				results = append(results, preflight.CheckInputs(in.logProbDir, in.transcriptDir, in.outputDir)...)
			}
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}

	in.bindFlags(cmd, false)
	return cmd
}
