package talkytime

import (
	"sort"
)

// TimeRange is a span of audio, in seconds from the start of a file.
type TimeRange struct {
	Start    float64
	Duration float64
}

// End returns the end offset of the range.
func (r TimeRange) End() float64 {
	return r.Start + r.Duration
}

// epsilonSeconds guards against spurious zero-length gaps introduced by
// floating point rounding in ffmpeg's silencedetect timestamps.
const epsilonSeconds = 0.01

// InvertSilences returns the spans of non-silent audio implied by silences,
// within [0, scanDurationSeconds). scanDurationSeconds should be capped to
// the file's actual duration to avoid a spurious trailing range.
func InvertSilences(silences []TimeRange, scanDurationSeconds float64) []TimeRange {
	var nonSilences []TimeRange
	prevSilenceEnd := 0.0

	ranges := append(append([]TimeRange{}, silences...), TimeRange{Start: scanDurationSeconds, Duration: 0})
	for _, r := range ranges {
		start := r.Start
		if start > scanDurationSeconds {
			start = scanDurationSeconds
		}
		if start > prevSilenceEnd+epsilonSeconds {
			nonSilences = append(nonSilences, TimeRange{Start: prevSilenceEnd, Duration: start - prevSilenceEnd})
		}
		prevSilenceEnd = r.End()
	}
	return nonSilences
}

// SpeechSpanParams bounds the non-silent span search.
type SpeechSpanParams struct {
	MinTalkSeconds   float64
	MaxTalkSeconds   float64
	TalkAttackSeconds float64
	TalkReleaseSeconds float64
}

// FindLikelySpeechSpan returns the first non-silent span at least
// params.MinTalkSeconds long, expanded by the attack/release margins and
// capped at params.MaxTalkSeconds, the way find_likely_audio_span does. ok
// is false if no candidate span was found.
func FindLikelySpeechSpan(silences []TimeRange, scanDurationSeconds float64, params SpeechSpanParams) (span TimeRange, ok bool) {
	nonSilences := InvertSilences(silences, scanDurationSeconds)
	sort.Slice(nonSilences, func(i, j int) bool { return nonSilences[i].Start < nonSilences[j].Start })

	for _, r := range nonSilences {
		if r.Duration < params.MinTalkSeconds {
			continue
		}
		start := r.Start - params.TalkAttackSeconds
		if start < 0 {
			start = 0
		}
		duration := r.Duration + params.TalkAttackSeconds + params.TalkReleaseSeconds
		if duration > params.MaxTalkSeconds {
			duration = params.MaxTalkSeconds
		}
		return TimeRange{Start: start, Duration: duration}, true
	}
	return TimeRange{}, false
}
