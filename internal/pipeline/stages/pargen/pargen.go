// Package pargen implements the pipeline stage that commits each file's
// final name (a symlink to its encoded artifact) and generates/verifies its
// parity volumes.
package pargen

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
	"taketake/internal/services/par2"
)

const encodedName = ".encoded.flac"

// Stage creates the <provided>.flac symlink, (re)generates parity volumes
// when any are missing or zero-byte, waits for the encoded artifact to
// leave page cache, and verifies the parity set, per spec.md §4.6.
type Stage struct {
	Par2 par2.Client
	Cfg  *config.Config
}

func (Stage) Name() pipeline.StageName { return pipeline.StagePargen }

func (Stage) FailureKind() services.FileErrorKind { return services.KindPar2CreateFail }

func (s Stage) Process(ctx context.Context, f *pipeline.FileInfo) error {
	encoded := filepath.Join(f.ProgressDir, encodedName)
	providedPath := filepath.Join(f.ProgressDir, f.ProvidedFilename+".flac")

	if _, err := os.Lstat(providedPath); os.IsNotExist(err) {
		if err := os.Symlink(encodedName, providedPath); err != nil {
			return services.Wrap(services.ErrExternalTool, "pargen", "create named symlink", providedPath, err)
		}
	} else if err != nil {
		return services.Wrap(services.ErrExternalTool, "pargen", "stat named symlink", providedPath, err)
	}

	volumes, err := par2.RelatedVolumes(providedPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "pargen", "enumerate parity volumes", providedPath, err)
	}
	if len(volumes) > 0 {
		zero, err := par2.HasZeroByteVolume(volumes)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "pargen", "inspect parity volumes", providedPath, err)
		}
		if zero {
			for _, v := range volumes {
				if err := os.Remove(v); err != nil && !os.IsNotExist(err) {
					return services.Wrap(services.ErrExternalTool, "pargen", "remove corrupt volume", v, err)
				}
			}
			volumes = nil
		}
	}

	if len(volumes) == 0 {
		if err := s.Par2.Create(ctx, providedPath, s.Cfg.Par2.NumVolumes, s.Cfg.Par2.RedundancyPercent); err != nil {
			return services.Wrap(services.ErrExternalTool, "pargen", "create parity set", providedPath, err)
		}
	}

	newVolumes, err := par2.RelatedVolumes(providedPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "pargen", "enumerate parity volumes", providedPath, err)
	}

	cacheadvice.Evict(encoded) //nolint:errcheck
	for _, v := range newVolumes {
		cacheadvice.Evict(v) //nolint:errcheck
	}

	if err := s.waitForEviction(encoded); err != nil {
		return err
	}

	if err := s.Par2.Verify(ctx, providedPath); err != nil {
		return services.WrapKind(services.KindPar2VerifyFail, services.ErrExternalTool, "pargen", "verify parity set", providedPath, err)
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
			// No residency-query support on this platform: skip the check
			// rather than fail (spec's cache-eviction interface is
			// explicitly best-effort where the OS lacks the advisory).
			return nil
		}
		if !resident {
			return nil
		}
		if time.Now().After(deadline) {
			return services.WrapKind(services.KindEvictFail, services.ErrTimeout, "pargen", "wait for cache eviction",
				fmt.Sprintf("%s is still page-cache resident after %s", path, maxWait), nil)
		}
		time.Sleep(pollInterval)
	}
}
