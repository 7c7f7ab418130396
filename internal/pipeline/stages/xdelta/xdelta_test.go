package xdelta

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"taketake/internal/cacheadvice"
	"taketake/internal/config"
	"taketake/internal/pipeline"
	"taketake/internal/services/flac"
)

const zeroDeltaPrintDelta = `VCDIFF version:                0
VCDIFF header indicator:       VCD_APPHEADER
VCDIFF copy window length:    3
VCDIFF copy window offset:    0
VCDIFF target window length:  3
VCDIFF data section length:   0
  Offset Code Type1 Size1 @Addr1 + Type2 Size2 @Addr2
  000000 019  CPY_0 3 @0

`

type fakeDiffer struct {
	diffErr     error
	printDelta  string
	printErr    error
	diffCalls   int
	printCalls  int
}

func (f *fakeDiffer) Diff(ctx context.Context, flacClient flac.Client, flacPath, wavPath, outPath string) error {
	f.diffCalls++
	if f.diffErr != nil {
		return f.diffErr
	}
	return os.WriteFile(outPath, []byte("diff-bytes"), 0o644)
}

func (f *fakeDiffer) PrintDelta(ctx context.Context, path string) (string, error) {
	f.printCalls++
	if f.printErr != nil {
		return "", f.printErr
	}
	return f.printDelta, nil
}

type fakeFlac struct{}

func (fakeFlac) Encode(ctx context.Context, wavPath, outPath string) error  { return nil }
func (fakeFlac) Decode(ctx context.Context, flacPath, outPath string) error { return nil }
func (fakeFlac) DecodeToPipe(ctx context.Context, flacPath string) (io.ReadCloser, *exec.Cmd, error) {
	return nil, nil, nil
}

func testCfg() *config.Config {
	cfg := &config.Config{}
	cfg.Workflow.EvictPollSeconds = 0
	cfg.Workflow.EvictMaxWaitSeconds = 1
	return cfg
}

func TestProcessSkipsWhenSourceAlreadyRemoved(t *testing.T) {
	dir := t.TempDir()
	s := Stage{Xdelta: &fakeDiffer{}, Flac: fakeFlac{}, Cfg: testCfg()}
	f := &pipeline.FileInfo{SourcePath: filepath.Join(dir, "gone.wav"), ProgressDir: dir}

	if err := s.Process(context.Background(), f); err != nil {
		t.Fatal(err)
	}
}

func TestProcessDiffsAndVerifiesZeroDelta(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.wav")
	os.WriteFile(src, []byte("abc"), 0o644)
	os.WriteFile(filepath.Join(dir, encodedName), []byte("abc"), 0o644)
	cacheadvice.Evict(src)

	differ := &fakeDiffer{printDelta: zeroDeltaPrintDelta}
	s := Stage{Xdelta: differ, Flac: fakeFlac{}, Cfg: testCfg()}
	f := &pipeline.FileInfo{SourcePath: src, ProgressDir: dir}

	if err := s.Process(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	if differ.diffCalls != 1 {
		t.Fatalf("expected one Diff call, got %d", differ.diffCalls)
	}
	if _, err := os.Stat(filepath.Join(dir, xdeltaName)); err != nil {
		t.Fatalf("expected committed xdelta file: %v", err)
	}
}

func TestProcessSkipsDiffWhenAlreadyProduced(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.wav")
	os.WriteFile(src, []byte("abc"), 0o644)
	os.WriteFile(filepath.Join(dir, xdeltaName), []byte("existing"), 0o644)

	differ := &fakeDiffer{printDelta: zeroDeltaPrintDelta}
	s := Stage{Xdelta: differ, Flac: fakeFlac{}, Cfg: testCfg()}
	f := &pipeline.FileInfo{SourcePath: src, ProgressDir: dir}

	if err := s.Process(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	if differ.diffCalls != 0 {
		t.Fatalf("expected Diff to be skipped, called %d times", differ.diffCalls)
	}
	if differ.printCalls != 1 {
		t.Fatalf("expected existing diff to be re-verified, called %d times", differ.printCalls)
	}
}

func TestProcessFailsOnMismatch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.wav")
	os.WriteFile(src, []byte("abc"), 0o644)
	os.WriteFile(filepath.Join(dir, encodedName), []byte("abc"), 0o644)
	cacheadvice.Evict(src)

	differ := &fakeDiffer{printDelta: "garbage output"}
	s := Stage{Xdelta: differ, Flac: fakeFlac{}, Cfg: testCfg()}
	f := &pipeline.FileInfo{SourcePath: src, ProgressDir: dir}

	if err := s.Process(context.Background(), f); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestProcessSurfacesDiffFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.wav")
	os.WriteFile(src, []byte("abc"), 0o644)
	cacheadvice.Evict(src)

	differ := &fakeDiffer{diffErr: errors.New("boom")}
	s := Stage{Xdelta: differ, Flac: fakeFlac{}, Cfg: testCfg()}
	f := &pipeline.FileInfo{SourcePath: src, ProgressDir: dir}

	if err := s.Process(context.Background(), f); err == nil {
		t.Fatal("expected diff error to surface")
	}
	if _, err := os.Stat(filepath.Join(dir, xdeltaName+".tmp")); !os.IsNotExist(err) {
		t.Fatalf("expected no leftover temp file, err=%v", err)
	}
}
