// Package xdelta implements the pipeline stage that proves the FLAC
// encode round-trips bit-for-bit against the original waveform.
package xdelta

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taketake/internal/cacheadvice"
	"taketake/internal/config"
	"taketake/internal/pipeline"
	"taketake/internal/services"
	"taketake/internal/services/flac"
	"taketake/internal/services/xdelta3"
)

const (
	encodedName = ".encoded.flac"
	xdeltaName  = ".xdelta"
)

// Differ is the xdelta3 surface this stage needs: producing a diff and
// reading back its VCDIFF header to confirm it proves a zero-delta copy.
type Differ interface {
	Diff(ctx context.Context, flacClient flac.Client, flacPath, wavPath, outPath string) error
	PrintDelta(ctx context.Context, path string) (string, error)
}

// Stage verifies FileInfo.SourcePath and the flac-decoded .encoded.flac
// are byte-identical, per spec.md §4.7: a source .wav already removed by
// an earlier cleanup means this file's diff already proved its point, so
// the stage is a no-op on resume.
type Stage struct {
	Xdelta Differ
	Flac   flac.Client
	Cfg    *config.Config
}

func (Stage) Name() pipeline.StageName { return pipeline.StageXdelta }

func (Stage) FailureKind() services.FileErrorKind { return services.KindXdeltaMismatch }

func (s Stage) Process(ctx context.Context, f *pipeline.FileInfo) error {
	wavInfo, err := os.Stat(f.SourcePath)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return services.Wrap(services.ErrExternalTool, "xdelta", "stat source", f.SourcePath, err)
	}

	xdeltaPath := filepath.Join(f.ProgressDir, xdeltaName)
	if existing, statErr := os.Stat(xdeltaPath); statErr == nil && existing.Size() > 0 {
		return s.verify(ctx, xdeltaPath, wavInfo.Size())
	} else if statErr != nil && !os.IsNotExist(statErr) {
		return services.Wrap(services.ErrExternalTool, "xdelta", "stat existing diff", xdeltaPath, statErr)
	}

	if err := s.waitForEviction(f.SourcePath); err != nil {
		return err
	}

	encoded := filepath.Join(f.ProgressDir, encodedName)
	tmpPath := xdeltaPath + ".tmp"
	if err := s.Xdelta.Diff(ctx, s.Flac, encoded, f.SourcePath, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrExternalTool, "xdelta", "diff", f.SourcePath, err)
	}
	if err := os.Rename(tmpPath, xdeltaPath); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrExternalTool, "xdelta", "commit diff", xdeltaPath, err)
	}

	return s.verify(ctx, xdeltaPath, wavInfo.Size())
}

func (s Stage) verify(ctx context.Context, xdeltaPath string, expectedSize int64) error {
	output, err := s.Xdelta.PrintDelta(ctx, xdeltaPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "xdelta", "printdelta", xdeltaPath, err)
	}
	zeroDelta, reason := xdelta3.ParseVCDiffHeader(output, expectedSize)
	if !zeroDelta {
		return services.WrapKind(services.KindXdeltaMismatch, services.ErrValidation, "xdelta", "verify zero-delta", reason, nil)
	}
	return nil
}

func (s Stage) waitForEviction(path string) error {
	pollInterval := 500 * time.Millisecond
	if s.Cfg.Workflow.EvictPollSeconds > 0 {
		pollInterval = time.Duration(s.Cfg.Workflow.EvictPollSeconds*1000) * time.Millisecond
	}
	maxWait := 30 * time.Second
	if s.Cfg.Workflow.EvictMaxWaitSeconds > 0 {
		maxWait = time.Duration(s.Cfg.Workflow.EvictMaxWaitSeconds) * time.Second
	}

	deadline := time.Now().Add(maxWait)
	for {
		resident, err := cacheadvice.IsResident(path)
		if err != nil {
			return nil
		}
		if !resident {
			return nil
		}
		if time.Now().After(deadline) {
			return services.WrapKind(services.KindEvictFail, services.ErrTimeout, "xdelta", "wait for cache eviction",
				fmt.Sprintf("%s is still page-cache resident after %s", path, maxWait), nil)
		}
		time.Sleep(pollInterval)
	}
}

var _ pipeline.Stage = Stage{}
