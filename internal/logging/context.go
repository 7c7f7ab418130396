package logging

import (
	"context"
	"log/slog"

	"taketake/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldFileIndex is the standardized structured logging key for a file's
	// position in the run's sorted input list.
	FieldFileIndex = "file_index"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldSourcePath is the standardized structured logging key for the
	// source recording path a log line concerns.
	FieldSourcePath = "source_path"
	// FieldCorrelationID is the standardized structured logging key for the
	// per-run correlation identifier (a uuid stamped at setup).
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a warning or error log line by what happened.
	FieldEventType = "event_type"
	// FieldErrorHint carries operator-facing guidance on a warning or error log line.
	FieldErrorHint = "error_hint"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if idx, ok := services.FileIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldFileIndex, idx))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
