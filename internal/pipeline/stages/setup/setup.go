// Package setup implements the pipeline's global initializer: discovering
// or resuming a run's progress directory and the per-file scaffolding
// underneath it, then (as the graph's first per-token stage) loading any
// already-written filename markers into each FileInfo.
package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"taketake/internal/pipeline"
	"taketake/internal/services"
)

const (
	progressDirPrefix  = "." + "taketake."
	srcMarkerName      = ".src"
	progressDateLayout = "20060102-1504"
)

// Discover implements spec §4.2 steps 1-3: it selects an existing progress
// directory to resume, or creates a new one, then builds FileInfo for every
// source .wav in sorted order. The returned bool reports whether an
// existing run was resumed.
func Discover(sourceDir string) (progressDir string, files []*pipeline.FileInfo, resumed bool, err error) {
	sourceDir, err = filepath.Abs(sourceDir)
	if err != nil {
		return "", nil, false, services.Wrap(services.ErrConfiguration, "setup", "resolve source dir", sourceDir, err)
	}

	existing, err := newestProgressDir(sourceDir)
	if err != nil {
		return "", nil, false, services.Wrap(services.ErrExternalTool, "setup", "scan progress dirs", sourceDir, err)
	}

	if existing != "" {
		if err := verifySrcMarker(existing, sourceDir); err != nil {
			return "", nil, false, err
		}
		files, err := loadExistingFiles(existing, sourceDir)
		if err != nil {
			return "", nil, false, err
		}
		return existing, files, true, nil
	}

	progressDir, err = createProgressDir(sourceDir)
	if err != nil {
		return "", nil, false, err
	}
	files, err = scanAndScaffold(progressDir, sourceDir)
	if err != nil {
		return "", nil, false, err
	}
	return progressDir, files, false, nil
}

func newestProgressDir(sourceDir string) (string, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return "", err
	}
	var candidates []string
	for _, e := range entries {
		if e.IsDir() && len(e.Name()) > len(progressDirPrefix) && e.Name()[:len(progressDirPrefix)] == progressDirPrefix {
			candidates = append(candidates, e.Name())
		}
	}
	if len(candidates) == 0 {
		return "", nil
	}
	sort.Strings(candidates)
	return filepath.Join(sourceDir, candidates[len(candidates)-1]), nil
}

func verifySrcMarker(progressDir, sourceDir string) error {
	data, err := os.ReadFile(filepath.Join(progressDir, srcMarkerName))
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "setup", "read .src marker", progressDir, err)
	}
	lines := splitLines(string(data))
	if len(lines) == 0 || lines[0] != sourceDir {
		return services.Wrap(services.ErrValidation, "setup", "verify .src marker",
			fmt.Sprintf("progress dir %s names source root %q, expected %q", progressDir, firstOr(lines, ""), sourceDir), nil)
	}
	return nil
}

func createProgressDir(sourceDir string) (string, error) {
	now := time.Now()
	name := progressDirPrefix + now.Format(progressDateLayout) + "-" + now.Weekday().String()[:3]
	progressDir := filepath.Join(sourceDir, name)
	if err := os.MkdirAll(progressDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "setup", "create progress dir", progressDir, err)
	}
	content := sourceDir + "\n" + uuid.NewString() + "\n"
	if err := os.WriteFile(filepath.Join(progressDir, srcMarkerName), []byte(content), 0o644); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "setup", "write .src marker", progressDir, err)
	}
	return progressDir, nil
}

func scanAndScaffold(progressDir, sourceDir string) ([]*pipeline.FileInfo, error) {
	matches, err := filepath.Glob(filepath.Join(sourceDir, "*.wav"))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "setup", "glob source wavs", sourceDir, err)
	}
	sort.Strings(matches)

	files := make([]*pipeline.FileInfo, 0, len(matches))
	for i, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "setup", "stat source file", path, err)
		}
		subdir := filepath.Join(progressDir, filepath.Base(path))
		if err := os.MkdirAll(subdir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "setup", "create file progress dir", subdir, err)
		}
		files = append(files, &pipeline.FileInfo{
			SourcePath:    path,
			SourceSize:    info.Size(),
			SourceModTime: info.ModTime(),
			ProgressDir:   subdir,
			Index:         i,
		})
	}
	return files, nil
}

func loadExistingFiles(progressDir, sourceDir string) ([]*pipeline.FileInfo, error) {
	entries, err := os.ReadDir(progressDir)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "setup", "read progress dir", progressDir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	files := make([]*pipeline.FileInfo, 0, len(names))
	for i, name := range names {
		path := filepath.Join(sourceDir, name)
		var size int64
		var modTime time.Time
		if info, err := os.Stat(path); err == nil {
			size, modTime = info.Size(), info.ModTime()
		}
		files = append(files, &pipeline.FileInfo{
			SourcePath:    path,
			SourceSize:    size,
			SourceModTime: modTime,
			ProgressDir:   filepath.Join(progressDir, name),
			Index:         i,
		})
	}
	return files, nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func firstOr(lines []string, fallback string) string {
	if len(lines) == 0 {
		return fallback
	}
	return lines[0]
}

// Stage is the per-token member of the graph: it loads any already-written
// .filename_guess/.filename_provided markers into FileInfo, an idempotent
// no-op when neither marker exists yet (the common first-run case).
type Stage struct{}

func (Stage) Name() pipeline.StageName { return pipeline.StageSetup }

func (Stage) FailureKind() services.FileErrorKind { return services.KindSetupFail }

func (Stage) Process(ctx context.Context, f *pipeline.FileInfo) error {
	if guess, err := os.ReadFile(filepath.Join(f.ProgressDir, ".filename_guess")); err == nil {
		f.GuessedFilename = string(guess)
	} else if !os.IsNotExist(err) {
		return err
	}
	if provided, err := os.ReadFile(filepath.Join(f.ProgressDir, ".filename_provided")); err == nil {
		f.ProvidedFilename = string(provided)
	} else if !os.IsNotExist(err) {
		return err
	}
	return nil
}
