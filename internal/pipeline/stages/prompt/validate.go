package prompt

import (
	"fmt"
	"time"

	"taketake/internal/talkytime"
)

// validationRules is the set of bounds the prompt stage checks a
// freshly-accepted filename's timestamp against, per spec.md §4.4.
type validationRules struct {
	weekdayTolerance time.Duration
	maxDelta         time.Duration
	now              func() time.Time
}

// validate parses candidate's timestamp segment and checks it against
// guessed (the machine's own guess, used as the bounded-delta anchor). It
// returns the parsed filename on success.
func (r validationRules) validate(candidate string, guessed time.Time) (talkytime.ParsedFilename, error) {
	parsed, err := talkytime.ParseFilename(candidate)
	if err != nil {
		return talkytime.ParsedFilename{}, fmt.Errorf("unparseable filename %q: %w", candidate, err)
	}

	if err := r.checkWeekday(parsed); err != nil {
		return talkytime.ParsedFilename{}, err
	}
	if err := r.checkBoundedDelta(parsed, guessed); err != nil {
		return talkytime.ParsedFilename{}, err
	}
	if err := r.checkNotFuture(parsed); err != nil {
		return talkytime.ParsedFilename{}, err
	}
	return parsed, nil
}

func (r validationRules) checkWeekday(parsed talkytime.ParsedFilename) error {
	if weekdayAbbrev(parsed.Timestamp) == parsed.Weekday {
		return nil
	}
	// A recording made within weekdayTolerance of midnight can legitimately
	// carry the adjacent day's weekday if the operator's spoken date rounds
	// to the other side of the boundary; only a mismatch outside that
	// window is rejected.
	if r.weekdayTolerance > 0 {
		if weekdayAbbrev(parsed.Timestamp.Add(r.weekdayTolerance)) == parsed.Weekday {
			return nil
		}
		if weekdayAbbrev(parsed.Timestamp.Add(-r.weekdayTolerance)) == parsed.Weekday {
			return nil
		}
	}
	return fmt.Errorf("weekday %q in filename does not match the date %s (%s)",
		parsed.Weekday, parsed.Timestamp.Format("2006-01-02"), weekdayAbbrev(parsed.Timestamp))
}

func weekdayAbbrev(t time.Time) string {
	return t.Weekday().String()[:3]
}

func (r validationRules) checkBoundedDelta(parsed talkytime.ParsedFilename, guessed time.Time) error {
	if guessed.IsZero() {
		return nil
	}
	delta := parsed.Timestamp.Sub(guessed)
	if delta < 0 {
		delta = -delta
	}
	if delta > r.maxDelta {
		return fmt.Errorf("timestamp %s is %s away from the guessed timestamp %s, beyond the allowed %s",
			parsed.Timestamp.Format(time.RFC3339), delta, guessed.Format(time.RFC3339), r.maxDelta)
	}
	return nil
}

func (r validationRules) checkNotFuture(parsed talkytime.ParsedFilename) error {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	if parsed.Timestamp.After(now()) {
		return fmt.Errorf("timestamp %s is in the future", parsed.Timestamp.Format(time.RFC3339))
	}
	return nil
}
