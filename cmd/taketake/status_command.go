package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taketake/internal/pipeline"
	"taketake/internal/pipeline/stages/setup"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show each file's progress without running the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			progressDir, files, resumed, err := setup.Discover(cfg.Paths.SourceDir)
			if err != nil {
				return fmt.Errorf("discover recordings: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Progress directory: %s\n", progressDir)
			if resumed {
				fmt.Fprintln(out, "(resuming a run left in progress by a prior invocation)")
			}
			if len(files) == 0 {
				fmt.Fprintln(out, "No .wav recordings found on the source medium.")
				return nil
			}

			for _, f := range files {
				if err := (setup.Stage{}).Process(cmd.Context(), f); err != nil {
					return fmt.Errorf("load progress markers: %w", err)
				}
				fmt.Fprintf(out, "%s: %s\n", f.SourcePath, describeProgress(f))
			}
			return nil
		},
	}
}

func describeProgress(f *pipeline.FileInfo) string {
	switch {
	case f.ProvidedFilename != "":
		return fmt.Sprintf("name confirmed as %q, ready for pargen/xdelta/cleanup", f.ProvidedFilename)
	case f.GuessedFilename != "":
		return fmt.Sprintf("name guessed as %q, awaiting operator confirmation", f.GuessedFilename)
	default:
		return "not yet processed by listen"
	}
}
