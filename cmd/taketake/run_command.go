package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"taketake/internal/logging"
	"taketake/internal/pipeline"
	"taketake/internal/pipeline/stages/finish"
	"taketake/internal/pipeline/stages/setup"
	"taketake/internal/report"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scan the source medium and archive every recording found",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx)
		},
	}
}

func newResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the most recent in-progress run for the source medium",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx)
		},
	}
}

// runPipeline drives one archival run end to end. setup.Discover decides
// on its own whether this is a fresh scan or a resume of a prior crash, so
// `run` and `resume` share this body.
func runPipeline(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	progressDir, files, resumed, err := setup.Discover(cfg.Paths.SourceDir)
	if err != nil {
		return fmt.Errorf("discover recordings: %w", err)
	}
	if resumed {
		logger.Info("resuming in-progress run", logging.String("progress_dir", progressDir))
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No .wav recordings found on the source medium.")
		return nil
	}

	stages := buildStageSet(cfg, nil)
	mgr := pipeline.NewManager(cfg, logger, stages)

	if err := mgr.AcquireLock(cfg.Paths.ProgressParentDir); err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	defer mgr.ReleaseLock()

	outcomes, err := mgr.Run(signalCtx, files)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Table(outcomes))
	fmt.Fprintln(out, report.Summary(files, outcomes))

	if err := finish.RemoveProgressDirIfAllSucceeded(progressDir, outcomes); err != nil {
		logger.Warn("remove progress directory", logging.Error(err))
	}

	if failed := countFailed(outcomes); failed > 0 {
		return fmt.Errorf("%d file(s) did not complete; see the report above", failed)
	}
	return nil
}

func countFailed(outcomes []pipeline.FileOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Status != "completed" {
			n++
		}
	}
	return n
}
