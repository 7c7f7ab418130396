// Package services defines shared utilities consumed by the pipeline stage
// handlers and external tool wrappers.
//
// Key responsibilities:
//   - Context helpers that stamp file index, stage name, and the run's
//     correlation identifier for logging and tracing.
//   - Structured error markers, the Wrap helper, and the FileErrorKind
//     classification that turns a wrapped error into the kind recorded
//     against the failing file.
//
// The external tool clients (flac, par2, xdelta3, speech) live in their own
// subpackages, each behind its own interface for testability; this package
// defines no shared command-execution or progress-streaming type.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
