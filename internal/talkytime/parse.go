package talkytime

import (
	"fmt"
	"strings"
	"time"
)

// popOptionalWords pops the given space-separated candidate words off the
// front of *words in order, skipping any not present, and reports whether
// anything was popped.
func popOptionalWords(words *[]string, optWords string) bool {
	w := *words
	popped := false
	for _, opt := range strings.Fields(optWords) {
		if len(w) > 0 && w[0] == opt {
			w = w[1:]
			popped = true
		}
	}
	*words = w
	return popped
}

// grokDigitPair parses a 1 or 2 digit-word doublet (e.g. "twenty one",
// "fifteen"). If no number word is found, *words is untouched and 0 is
// returned, allowing datestamps with missing timestamp components.
func grokDigitPair(words *[]string) int {
	w := *words
	value := 0
	if len(w) > 0 {
		if n, ok := toNum(w[0]); ok {
			value = n
			w = w[1:]
			if len(w) > 0 && (value == 0 || value >= 20) {
				if n2, ok := toNum(w[0]); ok && n2 < 10 {
					value += n2
					w = w[1:]
				}
			}
		}
	}
	*words = w
	return value
}

// grokTimeWords parses an hour, minute, second triple from a word list
// already isolated to the speech clause preceding the weekday/month name.
func grokTimeWords(words []string) (hour, minute, second int) {
	done := false

	hour = grokDigitPair(&words)
	if popOptionalWords(&words, "second seconds") {
		second = hour
		hour = 0
		done = true
	}

	tookMinuteWord := false
	if !done {
		tookMinuteWord = popOptionalWords(&words, "minute minutes")
	}
	if tookMinuteWord {
		minute = hour
		hour = 0
		popOptionalWords(&words, "and")
	} else {
		popOptionalWords(&words, "hundred hour hours oh clock oclock o'clock and")
		minute = grokDigitPair(&words)
		if popOptionalWords(&words, "second seconds") {
			second = minute
			minute = 0
			done = true
		} else {
			popOptionalWords(&words, "oh clock oclock o'clock minute minutes and")
		}
	}

	if !done {
		second = grokDigitPair(&words)
		popOptionalWords(&words, "second seconds")
	}

	return hour, minute, second
}

// grokDayOfMonth pops the day-of-month ordinal ("twenty first", "first") off
// the front of *words and returns the resulting day number.
func grokDayOfMonth(words *[]string) (int, error) {
	w := *words
	if len(w) == 0 {
		return 0, fmt.Errorf("word list is empty, no day of month found")
	}

	idx := 0
	day := 0
	if n, ok := toNum(w[0]); ok {
		day = n
		idx++
	}

	if idx < len(w) {
		if ord, ok := ordinalWords[w[idx]]; ok {
			day += ord
			idx++
		} else {
			return 0, fmt.Errorf("could not find Nth-like ordinal in %q", strings.Join(w, " "))
		}
	} else {
		return 0, fmt.Errorf("could not find Nth-like ordinal in %q", strings.Join(w, " "))
	}

	if day < 1 || day > 31 {
		return 0, fmt.Errorf("parsed month day %d from %q is out of range", day, strings.Join(w[:idx], " "))
	}

	*words = w[idx:]
	return day, nil
}

// grokYear pops a spoken year ("nineteen eighty four", "two thousand
// twenty one") off the front of *words, expecting a result in 1900-2999.
func grokYear(words *[]string) (int, error) {
	w := *words
	idx := 0

	curWord := func() (string, bool) {
		if idx < len(w) {
			return w[idx], true
		}
		return "", false
	}
	curNum := func() (int, bool) {
		word, ok := curWord()
		if !ok {
			return 0, false
		}
		return toNum(word)
	}

	year, ok := curNum()
	if !ok {
		return 0, fmt.Errorf("could not find year in %q", strings.Join(w, " "))
	}
	idx++

	switch {
	case year >= 1 && year <= 3:
		if word, _ := curWord(); word == "thousand" {
			idx++
			year *= 1000
		} else {
			return 0, fmt.Errorf("expected 'thousand' after %d parsing year from %q", year, strings.Join(w, " "))
		}
		if word, _ := curWord(); word == "and" {
			idx++
		}
		if num, ok := curNum(); ok {
			idx++
			switch {
			case num < 10:
				if word, _ := curWord(); word == "hundred" {
					idx++
					year += num * 100
					if word, _ := curWord(); word == "and" {
						idx++
					}
					if num2, ok := curNum(); ok {
						idx++
						year += num2
						if num3, ok := curNum(); ok && num3 < 10 {
							idx++
							year += num3
						}
					}
				} else {
					year += num
				}
			case num >= 10 && num < 20:
				year += num
			case num < 30:
				year += num
				if num2, ok := curNum(); ok && num2 < 10 {
					idx++
					year += num2
				}
			default:
				// Not a year digit, e.g. "two thousand".
			}
		}

	case year >= 19 && year <= 29:
		if year > 19 {
			if num, ok := curNum(); ok && num < 10 {
				idx++
				year += num
			}
		}
		year *= 100

		moreRequired := true
		if word, _ := curWord(); word == "hundred" {
			idx++
			moreRequired = false
		}
		if word, _ := curWord(); word == "and" {
			idx++
		}

		if num, ok := curNum(); ok {
			idx++
			switch {
			case num == 0:
				year += num
			case num%10 == 0 && num >= 20 && num < 100:
				// A tens word ("twenty", "eighty"): may be followed by a
				// ones digit, e.g. "nineteen eighty four" -> 19|84.
				year += num
				if num2, ok := curNum(); ok && num2 < 10 {
					idx++
					year += num2
				}
			default:
				// A teen (10-19) or an already-complete value.
				year += num
			}
		} else if moreRequired {
			return 0, fmt.Errorf("year parse error: missing second doublet after %d in %q", year, strings.Join(w, " "))
		}
	}

	if year < 1900 || year > 2999 {
		return 0, fmt.Errorf("parsed year %d from %q is out of range", year, strings.Join(w[:idx], " "))
	}

	*words = w[idx:]
	return year, nil
}

// grokDateWords parses year, month, day, and an optional weekday token from
// the word list following the hour/minute/second clause.
func grokDateWords(words []string) (year, month, day int, weekday string, extra []string, err error) {
	w := words

	if len(w) > 0 {
		if _, ok := dayWords[w[0]]; ok {
			weekday = w[0]
			w = w[1:]
		}
	}

	if len(w) == 0 {
		return 0, 0, 0, "", nil, fmt.Errorf("should have found a month name in %q", strings.Join(words, " "))
	}
	if idx, ok := monthWords[w[0]]; ok {
		month = idx + 1
		w = w[1:]
	} else {
		return 0, 0, 0, "", nil, fmt.Errorf("should have found a month name in %q", strings.Join(words, " "))
	}

	day, err = grokDayOfMonth(&w)
	if err != nil {
		return 0, 0, 0, "", nil, err
	}

	if len(w) > 0 {
		if _, ok := dayWords[w[0]]; ok {
			weekday = w[0]
			w = w[1:]
		}
	}

	year, err = grokYear(&w)
	if err != nil {
		return 0, 0, 0, "", nil, err
	}

	return year, month, day, weekday, w, nil
}

// ParseWords converts recognized speech text into a timestamp plus any
// leftover words (the operator's spoken notes). The weekday, if spoken, is
// not cross-checked against the parsed date here; prompt-time validation
// (spec.md's weekday-match rule) does that, since a mismatch there means an
// operator misspoke rather than a grammar failure.
func ParseWords(text string) (time.Time, []string, error) {
	if strings.TrimSpace(text) == "" {
		return time.Time{}, nil, fmt.Errorf("no speech text to parse")
	}

	words := lowerAll(strings.Fields(text))

	splitIdx := -1
	for i, word := range words {
		_, isDay := dayWords[word]
		_, isMonth := monthWords[word]
		if isDay || isMonth {
			splitIdx = i
			break
		}
	}
	if splitIdx < 0 {
		return time.Time{}, nil, fmt.Errorf("failed to find a month name in %q", text)
	}

	hour, minute, second := grokTimeWords(words[:splitIdx])
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, nil, fmt.Errorf("parsed time %02d:%02d:%02d out of range", hour, minute, second)
	}

	year, month, day, _, extra, err := grokDateWords(words[splitIdx:])
	if err != nil {
		return time.Time{}, nil, err
	}

	ts := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return ts, extra, nil
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}
