package prompt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taketake/internal/config"
	"taketake/internal/pipeline"
)

type fakePrompter struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakePrompter) Suggest(ctx context.Context, current, fallback string) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return f.responses[len(f.responses)-1], nil
}

func testCfg() *config.Config {
	cfg := &config.Config{}
	cfg.Naming.MaxDeltaHours = 24
	return cfg
}

func TestProcessAcceptsFirstValidCandidate(t *testing.T) {
	dir := t.TempDir()
	s := &Stage{
		Prompter: &fakePrompter{responses: []string{"piano.20211106-104400-Sat.1h0m0s.-.orig"}},
		Cfg:      testCfg(),
	}
	f := &pipeline.FileInfo{
		GuessedFilename:  "piano.20211106-104400-Sat.1h0m0s.-.orig",
		GuessedTimestamp: time.Date(2021, 11, 6, 10, 44, 0, 0, time.UTC),
		ProgressDir:      dir,
	}

	if err := s.Process(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	if f.ProvidedFilename != "piano.20211106-104400-Sat.1h0m0s.-.orig" {
		t.Fatalf("unexpected provided filename: %q", f.ProvidedFilename)
	}
	data, err := os.ReadFile(filepath.Join(dir, providedMarkerName))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != f.ProvidedFilename {
		t.Fatalf("marker mismatch: %q", data)
	}
}

func TestProcessSkipsWhenAlreadyProvided(t *testing.T) {
	s := &Stage{Prompter: &fakePrompter{}, Cfg: testCfg()}
	f := &pipeline.FileInfo{ProvidedFilename: "already.done"}
	if err := s.Process(context.Background(), f); err != nil {
		t.Fatal(err)
	}
}

func TestProcessRepromptsOnInvalidCandidate(t *testing.T) {
	s := &Stage{
		Prompter: &fakePrompter{responses: []string{
			"not-enough-segments",
			"piano.20211106-104400-Sat.1h0m0s.-.orig",
		}},
		Cfg: testCfg(),
	}
	f := &pipeline.FileInfo{
		GuessedFilename:  "piano.20211106-104400-Sat.1h0m0s.-.orig",
		GuessedTimestamp: time.Date(2021, 11, 6, 10, 44, 0, 0, time.UTC),
		ProgressDir:      t.TempDir(),
	}
	if err := s.Process(context.Background(), f); err != nil {
		t.Fatal(err)
	}
}

func TestProcessSurfacesPrompterError(t *testing.T) {
	s := &Stage{Prompter: &fakePrompter{errs: []error{errors.New("stdin closed")}}, Cfg: testCfg()}
	f := &pipeline.FileInfo{ProgressDir: t.TempDir()}
	if err := s.Process(context.Background(), f); err == nil {
		t.Fatal("expected error from prompter")
	}
}
