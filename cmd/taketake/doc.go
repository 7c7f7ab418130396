// Package main hosts the taketake CLI entrypoint and command graph.
//
// The Cobra-based command tree turns a single invocation into one archival
// run: resolving configuration, building the eight-stage pipeline against
// the real flac/par2/xdelta3/speech binaries, driving it to completion (or
// resuming one left in progress by a prior crash), and rendering the final
// per-file report. It centralizes configuration resolution and structured
// logging setup so subcommands can focus on user experience instead of
// wiring.
package main
