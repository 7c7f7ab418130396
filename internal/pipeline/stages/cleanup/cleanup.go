// Package cleanup implements the pipeline stage that commits a file's
// final artifacts into the destination library and retires its progress
// directory.
package cleanup

import (
	"context"
	"os"
	"path/filepath"

	"taketake/internal/cacheadvice"
	"taketake/internal/config"
	"taketake/internal/fileutil"
	"taketake/internal/pipeline"
	"taketake/internal/services"
	"taketake/internal/services/par2"
	"taketake/internal/talkytime"
)

const encodedName = ".encoded.flac"

// Stage copies the encoded FLAC and its parity volumes into their final
// location, verifies the copy, and deletes the source .wav when
// SourceModification allows it. With SourceModification enabled the set
// stages under the source root's flacs/ directory first and is then moved
// into the destination library; with it disabled the source .wav is never
// removed and the set is written straight to the destination, or beside
// the source .wav when no destination directory is configured. Per spec.md
// §4.8, it only runs once both pargen and the xdelta proof for every file
// have completed.
type Stage struct {
	Par2 par2.Client
	Cfg  *config.Config
}

func (Stage) Name() pipeline.StageName { return pipeline.StageCleanup }

func (Stage) FailureKind() services.FileErrorKind { return services.KindCopybackVerifyFail }

func (s Stage) Process(ctx context.Context, f *pipeline.FileInfo) error {
	parsed, err := talkytime.ParseFilename(f.ProvidedFilename)
	if err != nil {
		return services.Wrap(services.ErrValidation, "cleanup", "parse provided filename", f.ProvidedFilename, err)
	}

	if s.Cfg.SourceModification {
		if err := os.Remove(f.SourcePath); err != nil && !os.IsNotExist(err) {
			return services.Wrap(services.ErrExternalTool, "cleanup", "remove source", f.SourcePath, err)
		}
	}

	encoded := filepath.Join(f.ProgressDir, encodedName)
	linkPath := filepath.Join(f.ProgressDir, f.ProvidedFilename+".flac")
	volumes, err := par2.RelatedVolumes(linkPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "cleanup", "enumerate parity volumes", linkPath, err)
	}

	// The <source_root>/flacs/ staging area is part of replacing the
	// source medium's contents, so it only exists when source
	// modification is enabled; otherwise the artifacts land directly in
	// the destination, or beside the source .wav when no destination
	// directory is configured.
	var stagingDir string
	if s.Cfg.SourceModification {
		stagingDir = filepath.Join(filepath.Dir(f.SourcePath), "flacs")
	} else if s.Cfg.Paths.DestDir != "" {
		stagingDir = s.Cfg.Paths.DestDir
	} else {
		stagingDir = filepath.Dir(f.SourcePath)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, "cleanup", "create staging directory", stagingDir, err)
	}

	finalFlac := filepath.Join(stagingDir, f.ProvidedFilename+".flac")
	copies := map[string]string{finalFlac: encoded}
	for _, v := range volumes {
		copies[filepath.Join(stagingDir, filepath.Base(v))] = v
	}

	for dst, src := range copies {
		if _, err := os.Stat(dst); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return services.Wrap(services.ErrExternalTool, "cleanup", "stat staged copy", dst, err)
		}
		if err := fileutil.CopyFileVerified(src, dst); err != nil {
			return services.Wrap(services.ErrExternalTool, "cleanup", "copy with verification", dst, err)
		}
		if dst == finalFlac {
			if err := os.Chtimes(dst, parsed.Timestamp, parsed.Timestamp); err != nil {
				return services.Wrap(services.ErrExternalTool, "cleanup", "set staged mtime", dst, err)
			}
		}
		cacheadvice.Evict(dst) //nolint:errcheck
	}

	if err := s.Par2.Verify(ctx, finalFlac); err != nil {
		return services.Wrap(services.ErrExternalTool, "cleanup", "verify staged parity set", finalFlac, err)
	}

	if s.Cfg.SourceModification {
		destDir := s.Cfg.Paths.DestDir
		if destDir == "" {
			destDir = stagingDir
		} else if err := os.MkdirAll(destDir, 0o755); err != nil {
			return services.Wrap(services.ErrExternalTool, "cleanup", "create destination directory", destDir, err)
		}

		if destDir != stagingDir {
			for dst := range copies {
				finalDst := filepath.Join(destDir, filepath.Base(dst))
				if err := os.Rename(dst, finalDst); err != nil {
					return services.Wrap(services.ErrExternalTool, "cleanup", "move into destination", finalDst, err)
				}
				if dst == finalFlac {
					if err := os.Chtimes(finalDst, parsed.Timestamp, parsed.Timestamp); err != nil {
						return services.Wrap(services.ErrExternalTool, "cleanup", "set destination mtime", finalDst, err)
					}
				}
			}
		}
	}

	if err := os.RemoveAll(f.ProgressDir); err != nil {
		return services.Wrap(services.ErrExternalTool, "cleanup", "remove progress subdirectory", f.ProgressDir, err)
	}

	return nil
}

var _ pipeline.Stage = Stage{}
