// Package talkytime parses the spoken timestamp recognized at the front of a
// recording into a structured time.Time, and builds and parses the resulting
// filename grammar.
//
// The word grammar is a direct port of the hand-rolled parser in the prior
// Python implementation (words_to_timestamp and its grok_* helpers): speech
// recognition output is never a clean sentence, so the grammar tolerates
// filler words ("oh", "and", "o'clock") and digit-pair ("twenty one")
// renderings of a number. Hyphenated compounds ("twenty-one") are not
// recognized as numbers.
package talkytime
