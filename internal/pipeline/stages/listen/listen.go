// Package listen implements the pipeline's speech-recognition stage: it
// finds a likely speech span near the start of each recording, recognizes
// it, parses the result for a spoken timestamp, and writes the resulting
// guessed filename as a progress marker.
package listen

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"taketake/internal/config"
	"taketake/internal/fileutil"
	"taketake/internal/pipeline"
	"taketake/internal/services"
	"taketake/internal/services/speech"
	"taketake/internal/talkytime"
)

const guessMarkerName = ".filename_guess"

// Stage recognizes speech from each file's leading span and constructs its
// guessed filename, skipping files that already have a .filename_guess
// marker on disk (the idempotence witness spec.md §3 describes).
type Stage struct {
	Speech speech.Client
	Cfg    *config.Config
}

func (Stage) Name() pipeline.StageName { return pipeline.StageListen }

func (Stage) FailureKind() services.FileErrorKind { return services.KindSpeechRecogFail }

func (s Stage) Process(ctx context.Context, f *pipeline.FileInfo) error {
	if f.GuessedFilename != "" {
		return nil
	}

	scanSeconds := float64(s.Cfg.Workflow.FileScanSeconds)
	duration, err := s.Speech.Duration(ctx, f.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "listen", "probe duration", f.SourcePath, err)
	}
	if scanSeconds > duration {
		scanSeconds = duration
	}

	silences, err := s.Speech.DetectSilence(ctx, f.SourcePath, scanSeconds,
		s.Cfg.Workflow.SilenceThresholdDBFS, s.Cfg.Workflow.SilenceMinDurSeconds)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "listen", "detect silence", f.SourcePath, err)
	}

	span, ok := talkytime.FindLikelySpeechSpan(silences, scanSeconds, talkytime.SpeechSpanParams{
		MinTalkSeconds:     s.Cfg.Workflow.MinTalkSeconds,
		MaxTalkSeconds:     s.Cfg.Workflow.MaxTalkSeconds,
		TalkAttackSeconds:  s.Cfg.Workflow.TalkAttackSeconds,
		TalkReleaseSeconds: s.Cfg.Workflow.TalkReleaseSeconds,
	})
	if !ok {
		return services.Wrap(services.ErrTransient, "listen", "find speech span",
			fmt.Sprintf("no likely speech span found in the first %gs of %s", scanSeconds, f.SourcePath), nil)
	}

	text, err := s.recognizeWithRetry(ctx, f.SourcePath, span)
	if err != nil {
		return services.Wrap(services.ErrTimeout, "listen", "recognize speech", f.SourcePath, err)
	}

	ts, extra, err := talkytime.ParseWords(text)
	if err != nil {
		return services.WrapKind(services.KindTimestampParse, services.ErrValidation, "listen", "parse timestamp", text, err)
	}

	f.GuessedTimestamp = ts
	f.Duration = time.Duration(duration * float64(time.Second))
	f.Notes = extra
	f.GuessedFilename = talkytime.BuildFilename(s.Cfg.Naming.Prefix, ts, false, f.Duration, extra, filepath.Base(f.SourcePath))

	markerPath := filepath.Join(f.ProgressDir, guessMarkerName)
	if err := fileutil.WriteFileAtomic(markerPath, []byte(f.GuessedFilename), 0o644); err != nil {
		return services.WrapKind(services.KindProgressWrite, services.ErrTransient, "listen", "write filename guess", markerPath, err)
	}
	return nil
}

func (s Stage) recognizeWithRetry(ctx context.Context, path string, span talkytime.TimeRange) (string, error) {
	timeout := time.Duration(s.Cfg.Workflow.SpeechTimeoutSeconds) * time.Second
	retries := s.Cfg.Workflow.SpeechRetryCount

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		recCtx, cancel := context.WithTimeout(ctx, timeout)
		text, err := s.Speech.Recognize(recCtx, path, span.Start, span.Duration)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", lastErr
}
