// Package pipeline drives a recording through the archival stage graph:
// setup, listen, prompt, flacenc, pargen, xdelta, cleanup, finish. Stages
// are cooperative actors coupled by bounded channels of per-file tokens,
// with crash-safe resumption read back from on-disk progress markers
// rather than any in-memory state.
//
// The graph itself (which stage feeds which, and the All(xdelta) barrier
// protecting cleanup) lives in Manager; individual stage behavior lives in
// the internal/pipeline/stages subpackages.
package pipeline
