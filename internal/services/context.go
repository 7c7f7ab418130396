package services

import "context"

type contextKey string

const (
	fileIndexKey contextKey = "file_index"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

// WithFileIndex annotates context with the file's position in the run's
// sorted input list.
func WithFileIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, fileIndexKey, index)
}

// FileIndexFromContext extracts the file index if present.
func FileIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(fileIndexKey).(int)
	return v, ok
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with the run's correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
