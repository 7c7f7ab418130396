package report

import (
	"strings"
	"testing"
	"time"

	"taketake/internal/pipeline"
)

func TestTableRendersOneRowPerOutcome(t *testing.T) {
	outcomes := []pipeline.FileOutcome{
		{Filename: "piano.flac", Status: "completed", Stage: pipeline.StageFinish, Duration: 3 * time.Second},
		{Filename: "violin.flac", Status: "failed", Stage: pipeline.StageFlacenc, ErrorText: "boom", Duration: time.Second},
	}
	out := Table(outcomes)
	if !strings.Contains(out, "piano.flac") || !strings.Contains(out, "violin.flac") {
		t.Fatalf("expected both filenames in table, got:\n%s", out)
	}
	if !strings.Contains(out, "boom") {
		t.Fatalf("expected error text in table, got:\n%s", out)
	}
}

func TestSummaryCountsByStatus(t *testing.T) {
	files := []*pipeline.FileInfo{
		{SourceSize: 1000},
		{SourceSize: 2000},
	}
	outcomes := []pipeline.FileOutcome{
		{Status: "completed"},
		{Status: "failed"},
	}
	summary := Summary(files, outcomes)
	if !strings.Contains(summary, "1 succeeded") || !strings.Contains(summary, "1 failed") {
		t.Fatalf("unexpected summary: %q", summary)
	}
}
