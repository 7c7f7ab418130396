package talkytime

import (
	"testing"
	"time"
)

func TestParseWordsBasic(t *testing.T) {
	ts, extra, err := ParseWords("ten forty four november sixth twenty twenty one")
	if err != nil {
		t.Fatalf("ParseWords returned error: %v", err)
	}
	want := time.Date(2021, time.November, 6, 10, 44, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("got %v, want %v", ts, want)
	}
	if len(extra) != 0 {
		t.Fatalf("expected no leftover words, got %v", extra)
	}
}

func TestParseWordsWithSecondsAndNotes(t *testing.T) {
	ts, extra, err := ParseWords("ten forty four and thirty seconds november sixth twenty twenty one piano practice")
	if err != nil {
		t.Fatalf("ParseWords returned error: %v", err)
	}
	if ts.Hour() != 10 || ts.Minute() != 44 || ts.Second() != 30 {
		t.Fatalf("got h=%d m=%d s=%d", ts.Hour(), ts.Minute(), ts.Second())
	}
	if len(extra) != 2 || extra[0] != "piano" || extra[1] != "practice" {
		t.Fatalf("unexpected leftover words: %v", extra)
	}
}

func TestParseWordsWithWeekday(t *testing.T) {
	ts, _, err := ParseWords("nine oh clock saturday november sixth twenty twenty one")
	if err != nil {
		t.Fatalf("ParseWords returned error: %v", err)
	}
	if ts.Hour() != 9 || ts.Minute() != 0 {
		t.Fatalf("got h=%d m=%d", ts.Hour(), ts.Minute())
	}
	if ts.Month() != time.November || ts.Day() != 6 || ts.Year() != 2021 {
		t.Fatalf("got date %v", ts)
	}
}

func TestParseWordsNineteenthCenturyYear(t *testing.T) {
	ts, _, err := ParseWords("ten january first nineteen eighty four")
	if err != nil {
		t.Fatalf("ParseWords returned error: %v", err)
	}
	if ts.Year() != 1984 || ts.Month() != time.January || ts.Day() != 1 {
		t.Fatalf("got date %v", ts)
	}
}

func TestParseWordsThousandStyleYear(t *testing.T) {
	ts, _, err := ParseWords("eight fifteen march third two thousand and five")
	if err != nil {
		t.Fatalf("ParseWords returned error: %v", err)
	}
	if ts.Year() != 2005 || ts.Month() != time.March || ts.Day() != 3 {
		t.Fatalf("got date %v", ts)
	}
}

func TestParseWordsNoMonthFound(t *testing.T) {
	if _, _, err := ParseWords("ten forty four"); err == nil {
		t.Fatal("expected error when no month name is present")
	}
}

func TestParseWordsEmpty(t *testing.T) {
	if _, _, err := ParseWords("   "); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestParseWordsOutOfRangeTime(t *testing.T) {
	// "twenty five" hour words parse to hour=25, which must be rejected
	// rather than silently normalized by time.Date into the next day.
	if _, _, err := ParseWords("twenty five hundred november sixth twenty twenty one"); err == nil {
		t.Fatal("expected error for out-of-range hour")
	}
}

func TestGrokDigitPairVariants(t *testing.T) {
	cases := []struct {
		words []string
		want  int
		left  int
	}{
		{[]string{"fifteen"}, 15, 0},
		{[]string{"twenty", "one"}, 21, 0},
		{[]string{"oh", "five"}, 5, 0},
		{[]string{"forty", "two", "leftover"}, 42, 1},
	}
	for _, tc := range cases {
		words := append([]string{}, tc.words...)
		got := grokDigitPair(&words)
		if got != tc.want {
			t.Errorf("grokDigitPair(%v) = %d, want %d", tc.words, got, tc.want)
		}
		if len(words) != tc.left {
			t.Errorf("grokDigitPair(%v) left %d words, want %d", tc.words, len(words), tc.left)
		}
	}
}

func TestGrokDayOfMonth(t *testing.T) {
	cases := []struct {
		in   []string
		want int
	}{
		{[]string{"first"}, 1},
		{[]string{"twenty", "first"}, 21},
		{[]string{"thirtieth"}, 30},
	}
	for _, tc := range cases {
		words := append([]string{}, tc.in...)
		got, err := grokDayOfMonth(&words)
		if err != nil {
			t.Errorf("grokDayOfMonth(%v) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("grokDayOfMonth(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestGrokYearInvalidOutOfRange(t *testing.T) {
	words := []string{"three", "thousand"}
	if _, err := grokYear(&words); err == nil {
		t.Fatal("expected out-of-range year error")
	}
}
