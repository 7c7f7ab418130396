package pipeline

import (
	"context"
	"log/slog"
	"time"

	"taketake/internal/logging"
	"taketake/internal/services"
)

// RunStage drains in, runs stage.Process for every file whose token hasn't
// already failed upstream, forwards a (possibly now-failed) token to out,
// and replays the sentinel once in closes. It is the generic wiring behind
// every stage goroutine the Manager starts — stages themselves only
// implement Process.
func RunStage(ctx context.Context, stage Stage, files []*FileInfo, in <-chan Token, out chan<- Token, logger *slog.Logger) {
	defer close(out)
	if logger == nil {
		logger = logging.NewNop()
	}
	stageLogger := logging.NewComponentLogger(logger, string(stage.Name()))

	for tok := range in {
		if tok.IsSentinel() {
			out <- Sentinel
			return
		}

		f := files[tok.Index]
		stageCtx := services.WithStage(services.WithFileIndex(ctx, tok.Index), string(stage.Name()))

		if tok.Failed {
			f.SetStageState(stage.Name(), StageSkipped)
			out <- tok
			continue
		}

		if ctx.Err() != nil {
			f.Fail(stage.Name(), services.KindAborted, ctx.Err())
			logging.WarnWithContext(logging.WithContext(stageCtx, stageLogger), "stage skipped, run cancelled", "stage_skip",
				logging.String(logging.FieldSourcePath, f.SourcePath))
			out <- Token{Index: tok.Index, Failed: true}
			continue
		}

		f.SetStageState(stage.Name(), StageRunning)
		start := time.Now()
		logging.WithContext(stageCtx, stageLogger).Info("stage started",
			logging.String(logging.FieldEventType, "stage_start"),
			logging.String(logging.FieldSourcePath, f.SourcePath))

		err := stage.Process(stageCtx, f)
		if err != nil {
			kind := services.KindFor(err, stage.FailureKind())
			f.Fail(stage.Name(), kind, err)
			logging.ErrorWithContext(logging.WithContext(stageCtx, stageLogger), "stage failed", "stage_failure",
				logging.String(logging.FieldSourcePath, f.SourcePath),
				logging.Error(err),
				logging.Duration("stage_duration", time.Since(start)))
			out <- Token{Index: tok.Index, Failed: true}
			continue
		}

		f.SetStageState(stage.Name(), StageSucceeded)
		logging.WithContext(stageCtx, stageLogger).Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.String(logging.FieldSourcePath, f.SourcePath),
			logging.Duration("stage_duration", time.Since(start)))
		out <- Token{Index: tok.Index, Failed: false}
	}
}
