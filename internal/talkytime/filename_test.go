package talkytime

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{93 * time.Second, "1m33s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h2m3s"},
		{2 * time.Hour, "2h"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2021, time.November, 6, 10, 44, 0, 0, time.UTC)
	got := FormatTimestamp(ts)
	want := "20211106-104400-Sat"
	if got != want {
		t.Fatalf("FormatTimestamp = %q, want %q", got, want)
	}
}

func TestBuildAndParseFilenameRoundTrip(t *testing.T) {
	ts := time.Date(2021, time.November, 6, 10, 44, 0, 0, time.UTC)
	dur := 93*time.Minute + 27*time.Second
	notes := []string{"bach", "minuet", "93bpm"}
	stem := BuildFilename("piano", ts, false, dur, notes, "audio001.wav")

	want := "piano.20211106-104400-Sat.1h33m27s.Bach-Minuet-93Bpm.audio001"
	if stem != want {
		t.Fatalf("BuildFilename = %q, want %q", stem, want)
	}

	parsed, err := ParseFilename(stem)
	if err != nil {
		t.Fatalf("ParseFilename returned error: %v", err)
	}
	if parsed.Prefix != "piano" {
		t.Errorf("Prefix = %q", parsed.Prefix)
	}
	if !parsed.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, ts)
	}
	if parsed.LowConfidence {
		t.Error("expected LowConfidence false")
	}
	if parsed.Weekday != "Sat" {
		t.Errorf("Weekday = %q", parsed.Weekday)
	}
	if parsed.Runtime != "1h33m27s" {
		t.Errorf("Runtime = %q", parsed.Runtime)
	}
	if len(parsed.Notes) != 3 || parsed.Notes[0] != "Bach" || parsed.Notes[1] != "Minuet" || parsed.Notes[2] != "93Bpm" {
		t.Errorf("Notes = %v", parsed.Notes)
	}
	if parsed.OrigBasename != "audio001" {
		t.Errorf("OrigBasename = %q", parsed.OrigBasename)
	}
}

func TestBuildFilenameLowConfidenceAndNoNotes(t *testing.T) {
	ts := time.Date(2021, time.November, 6, 10, 44, 0, 0, time.UTC)
	stem := BuildFilename("rec", ts, true, 5*time.Second, nil, "audio002.wav")
	want := "rec.20211106-104400-Sat+?.5s.-.audio002"
	if stem != want {
		t.Fatalf("BuildFilename = %q, want %q", stem, want)
	}

	parsed, err := ParseFilename(stem)
	if err != nil {
		t.Fatalf("ParseFilename returned error: %v", err)
	}
	if !parsed.LowConfidence {
		t.Error("expected LowConfidence true")
	}
	if len(parsed.Notes) != 0 {
		t.Errorf("expected no notes, got %v", parsed.Notes)
	}
}

func TestParseFilenameMalformed(t *testing.T) {
	if _, err := ParseFilename("too.few.segments"); err == nil {
		t.Fatal("expected error for malformed stem")
	}
}
