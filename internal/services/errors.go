package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// kindError stamps an error with the exact FileErrorKind it should be
// reported as, bypassing KindFor's marker-based guess. Several stages share
// the same sentinel marker (e.g. ErrValidation) for failures that must still
// be told apart in the report.
type kindError struct {
	kind FileErrorKind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }

// WrapKind behaves like Wrap but also records the exact FileErrorKind the
// failure should be reported as, so KindFor returns it regardless of which
// sentinel marker also matches.
func WrapKind(kind FileErrorKind, marker error, stage, operation, message string, err error) error {
	return &kindError{kind: kind, err: Wrap(marker, stage, operation, message, err)}
}

// FileErrorKind identifies which stage of the pipeline a file failed at and
// why, for the end-of-run report and for resume diagnostics.
type FileErrorKind string

const (
	KindSetupFail          FileErrorKind = "SetupFail"
	KindSpeechRecogFail    FileErrorKind = "SpeechRecogFail"
	KindTimestampParse     FileErrorKind = "TimestampParse"
	KindPromptValidation   FileErrorKind = "PromptValidation"
	KindEncodeFail         FileErrorKind = "EncodeFail"
	KindPar2CreateFail     FileErrorKind = "Par2CreateFail"
	KindPar2VerifyFail     FileErrorKind = "Par2VerifyFail"
	KindEvictFail          FileErrorKind = "EvictFail"
	KindXdeltaMismatch     FileErrorKind = "XdeltaMismatch"
	KindCopybackVerifyFail FileErrorKind = "CopybackVerifyFail"
	KindProgressWrite      FileErrorKind = "ProgressWrite"
	KindAborted            FileErrorKind = "Aborted"
)

// KindFor maps a stage-reported error to the FileErrorKind recorded against
// the failing file, falling back to the stage-supplied default when the
// error carries no sentinel marker of its own (e.g. a raw I/O error).
func KindFor(err error, stageDefault FileErrorKind) FileErrorKind {
	if err == nil {
		return ""
	}
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return KindSpeechRecogFail
	case errors.Is(err, ErrValidation):
		return KindPromptValidation
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return KindSetupFail
	default:
		if stageDefault != "" {
			return stageDefault
		}
		return KindAborted
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
