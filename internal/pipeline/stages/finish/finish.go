// Package finish implements the pipeline's terminal stage and the
// top-level progress-directory teardown that follows a fully successful
// run.
package finish

import (
	"context"
	"os"

	"taketake/internal/pipeline"
	"taketake/internal/services"
)

// Stage is a bookkeeping pass-through: by the time a token reaches finish,
// cleanup has already removed the per-file progress subdirectory and moved
// the file's artifacts into the destination library. Nothing remains to do
// per file; the run-level teardown lives in RemoveProgressDirIfAllSucceeded,
// called once after every file has passed through the graph.
type Stage struct{}

func (Stage) Name() pipeline.StageName { return pipeline.StageFinish }

func (Stage) FailureKind() services.FileErrorKind { return services.KindAborted }

func (Stage) Process(ctx context.Context, f *pipeline.FileInfo) error {
	return nil
}

// RemoveProgressDirIfAllSucceeded deletes the top-level
// .taketake.<datestamp>/ directory once every file in outcomes finished
// successfully, per spec.md §4.9: a run with any failure leaves the
// progress directory in place so a subsequent invocation can resume it.
func RemoveProgressDirIfAllSucceeded(progressDir string, outcomes []pipeline.FileOutcome) error {
	for _, o := range outcomes {
		if o.Status != "completed" {
			return nil
		}
	}
	if err := os.RemoveAll(progressDir); err != nil {
		return services.Wrap(services.ErrExternalTool, "finish", "remove progress directory", progressDir, err)
	}
	return nil
}

var _ pipeline.Stage = Stage{}
