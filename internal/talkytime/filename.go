package talkytime

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// notesCaser title-cases the free-form notes segment so recognizer
// leftovers like "bach minuet" read as "Bach-Minuet" in the committed
// filename.
var notesCaser = cases.Title(language.English)

// timestampLayout is the YYYYMMDD-HHMMSS-Ddd segment of a guessed or
// provided filename.
const timestampLayout = "20060102-150405"

// LowConfidenceMarker is appended to the timestamp segment when the
// recognizer could not confidently resolve every word in the grammar.
const LowConfidenceMarker = "+?"

// FormatTimestamp renders t as the YYYYMMDD-HHMMSS-Ddd segment used in both
// guessed and provided filenames.
func FormatTimestamp(t time.Time) string {
	weekday := abbreviatedWeekdays[int(t.Weekday())]
	return fmt.Sprintf("%s-%s", t.Format(timestampLayout), weekday)
}

// FormatDuration renders a clip length as compact HhMmSs text, omitting
// every zero unit; a duration that rounds to zero renders as "0s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var b strings.Builder
	if hours > 0 {
		fmt.Fprintf(&b, "%dh", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dm", minutes)
	}
	if seconds > 0 || b.Len() == 0 {
		fmt.Fprintf(&b, "%ds", seconds)
	}
	return b.String()
}

// BuildFilename assembles the dot-delimited stem described by the filename
// grammar: <prefix>.<timestamp>[+?].<runtime>.<notes>.<orig_basename>
//
// notes is a list of free-form words (recognizer leftovers, plus any
// operator-supplied annotation) joined with dashes. An empty notes list
// collapses to a single "-" placeholder segment so the grammar's segment
// count stays fixed regardless of whether the operator spoke any extra
// words, making the stem mechanically splittable by ".".
func BuildFilename(prefix string, ts time.Time, lowConfidence bool, duration time.Duration, notes []string, origBasename string) string {
	stamp := FormatTimestamp(ts)
	if lowConfidence {
		stamp += LowConfidenceMarker
	}

	notesSegment := "-"
	if len(notes) > 0 {
		notesSegment = notesCaser.String(strings.Join(notes, "-"))
	}

	base := strings.TrimSuffix(origBasename, filepathExt(origBasename))

	return strings.Join([]string{
		prefix,
		stamp,
		FormatDuration(duration),
		notesSegment,
		base,
	}, ".")
}

func filepathExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}

// ParsedFilename holds the decomposed fields of a guessed or provided
// filename stem, per the grammar BuildFilename assembles.
type ParsedFilename struct {
	Prefix        string
	Timestamp     time.Time
	LowConfidence bool
	Weekday       string
	Runtime       string
	Notes         []string
	OrigBasename  string
}

// ParseFilename splits a previously built filename stem (without its
// extension) back into its grammar segments. It is the inverse of
// BuildFilename and is used to recover state when resuming a run from
// progress-directory markers alone.
func ParseFilename(stem string) (ParsedFilename, error) {
	parts := strings.SplitN(stem, ".", 5)
	if len(parts) != 5 {
		return ParsedFilename{}, fmt.Errorf("filename stem %q does not have 5 dot-delimited segments", stem)
	}

	prefix, stampSeg, runtimeSeg, notesSeg, origBasename := parts[0], parts[1], parts[2], parts[3], parts[4]

	lowConfidence := strings.HasSuffix(stampSeg, LowConfidenceMarker)
	stampSeg = strings.TrimSuffix(stampSeg, LowConfidenceMarker)

	segs := strings.SplitN(stampSeg, "-", 3)
	if len(segs) != 3 {
		return ParsedFilename{}, fmt.Errorf("timestamp segment %q is malformed", stampSeg)
	}
	weekday := segs[2]
	ts, err := time.Parse(timestampLayout, segs[0]+"-"+segs[1])
	if err != nil {
		return ParsedFilename{}, fmt.Errorf("parse timestamp segment %q: %w", stampSeg, err)
	}

	var notes []string
	if notesSeg != "-" {
		notes = strings.Split(notesSeg, "-")
	}

	return ParsedFilename{
		Prefix:        prefix,
		Timestamp:     ts,
		LowConfidence: lowConfidence,
		Weekday:       weekday,
		Runtime:       runtimeSeg,
		Notes:         notes,
		OrigBasename:  origBasename,
	}, nil
}
