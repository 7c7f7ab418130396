// Package flacenc implements the pipeline stage that encodes each source
// waveform to FLAC, crash-safely.
package flacenc

import (
	"context"
	"os"
	"path/filepath"

	"taketake/internal/cacheadvice"
	"taketake/internal/pipeline"
	"taketake/internal/services"
	"taketake/internal/services/flac"
)

const (
	inProgressName = ".in_progress.flac"
	encodedName    = ".encoded.flac"
)

// Stage encodes FileInfo.SourcePath to FLAC, per spec.md §4.5: any leftover
// .in_progress.flac from a prior crash is discarded before a fresh attempt,
// and a completed .encoded.flac short-circuits re-encoding on resume.
type Stage struct {
	Flac flac.Client
}

func (Stage) Name() pipeline.StageName { return pipeline.StageFlacenc }

func (Stage) FailureKind() services.FileErrorKind { return services.KindEncodeFail }

func (s Stage) Process(ctx context.Context, f *pipeline.FileInfo) error {
	inProgress := filepath.Join(f.ProgressDir, inProgressName)
	encoded := filepath.Join(f.ProgressDir, encodedName)

	if err := os.Remove(inProgress); err != nil && !os.IsNotExist(err) {
		return services.Wrap(services.ErrExternalTool, "flacenc", "remove stale partial encode", inProgress, err)
	}

	if _, err := os.Stat(encoded); err == nil {
		cacheadvice.Evict(f.SourcePath) //nolint:errcheck
		return nil
	} else if !os.IsNotExist(err) {
		return services.Wrap(services.ErrExternalTool, "flacenc", "stat encoded output", encoded, err)
	}

	if err := s.Flac.Encode(ctx, f.SourcePath, inProgress); err != nil {
		_ = os.Remove(inProgress)
		return services.Wrap(services.ErrExternalTool, "flacenc", "encode", f.SourcePath, err)
	}

	if err := os.Rename(inProgress, encoded); err != nil {
		return services.Wrap(services.ErrExternalTool, "flacenc", "commit encoded output", encoded, err)
	}

	// A missing cache-eviction advisory is a no-op, not a failure (spec's
	// cache-eviction interface is explicitly best-effort).
	cacheadvice.Evict(f.SourcePath) //nolint:errcheck
	return nil
}
