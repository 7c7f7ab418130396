// Package prompt implements the pipeline stage that asks an operator to
// confirm or correct each file's guessed filename before pargen runs.
package prompt

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"taketake/internal/config"
	"taketake/internal/fileutil"
	"taketake/internal/pipeline"
	prompter "taketake/internal/prompt"
	"taketake/internal/services"
)

const providedMarkerName = ".filename_provided"

// maxPromptAttempts bounds re-prompting so a non-interactive collaborator
// (or a script feeding garbage on stdin) can't spin the stage forever.
const maxPromptAttempts = 10

// Stage serializes prompts across files through promptMu: spec.md §4.4
// requires exactly one active dialog at a time even when multiple indices
// are already queued.
type Stage struct {
	Prompter prompter.Interface
	Cfg      *config.Config

	promptMu sync.Mutex
}

func (*Stage) Name() pipeline.StageName { return pipeline.StagePrompt }

func (*Stage) FailureKind() services.FileErrorKind { return services.KindPromptValidation }

func (s *Stage) Process(ctx context.Context, f *pipeline.FileInfo) error {
	if f.ProvidedFilename != "" {
		return nil
	}

	s.promptMu.Lock()
	defer s.promptMu.Unlock()

	rules := validationRules{
		weekdayTolerance: time.Duration(s.Cfg.Naming.WeekdayToleranceMins) * time.Minute,
		maxDelta:         time.Duration(s.Cfg.Naming.MaxDeltaHours) * time.Hour,
	}

	current := f.GuessedFilename
	fallback := f.ProvidedFilename

	var lastErr error
	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		candidate, err := s.Prompter.Suggest(ctx, current, fallback)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "prompt", "suggest filename", f.SourcePath, err)
		}

		if _, err := rules.validate(candidate, f.GuessedTimestamp); err != nil {
			lastErr = err
			fallback = candidate
			continue
		}

		f.ProvidedFilename = candidate
		markerPath := filepath.Join(f.ProgressDir, providedMarkerName)
		if err := fileutil.WriteFileAtomic(markerPath, []byte(candidate), 0o644); err != nil {
			return services.WrapKind(services.KindProgressWrite, services.ErrTransient, "prompt", "write provided filename", markerPath, err)
		}
		return nil
	}

	return services.Wrap(services.ErrValidation, "prompt", "validate filename",
		fmt.Sprintf("gave up after %d attempts, last error: %v", maxPromptAttempts, lastErr), nil)
}
