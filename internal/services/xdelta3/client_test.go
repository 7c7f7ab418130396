package xdelta3

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"

	"taketake/internal/services/flac"
)

const matchingPrintDelta = `VCDIFF version:                0
VCDIFF header indicator:       VCD_APPHEADER
VCDIFF copy window length:    22670
VCDIFF copy window offset:    0
VCDIFF target window length:  22670
VCDIFF data section length:   0
  Offset Code Type1 Size1 @Addr1 + Type2 Size2 @Addr2
  000000 019  CPY_0 22670 @0

`

func TestParseVCDiffHeaderZeroDelta(t *testing.T) {
	ok, reason := ParseVCDiffHeader(matchingPrintDelta, 22670)
	if !ok {
		t.Fatalf("expected zero-delta match, got mismatch reason %q", reason)
	}
}

func TestParseVCDiffHeaderWrongSize(t *testing.T) {
	ok, reason := ParseVCDiffHeader(matchingPrintDelta, 99)
	if ok {
		t.Fatal("expected mismatch for wrong expected size")
	}
	if reason == "" {
		t.Fatal("expected a mismatch reason")
	}
}

func TestParseVCDiffHeaderTrailingData(t *testing.T) {
	withTrailing := strings.TrimRight(matchingPrintDelta, "\n") + "\nextra garbage\n"
	ok, reason := ParseVCDiffHeader(withTrailing, 22670)
	if ok {
		t.Fatal("expected mismatch for trailing data after instruction line")
	}
	if reason == "" {
		t.Fatal("expected a mismatch reason")
	}
}

func TestParseVCDiffHeaderMissingField(t *testing.T) {
	missingField := strings.Replace(matchingPrintDelta, "VCDIFF data section length:   0\n", "", 1)
	ok, reason := ParseVCDiffHeader(missingField, 22670)
	if ok {
		t.Fatal("expected mismatch for missing header field")
	}
	if reason == "" {
		t.Fatal("expected a mismatch reason")
	}
}

// fakeFlacClient implements flac.Client for exercising Diff without a real
// flac binary.
type fakeFlacClient struct {
	data []byte
}

func (f *fakeFlacClient) Encode(ctx context.Context, wavPath, outPath string) error { return nil }
func (f *fakeFlacClient) Decode(ctx context.Context, flacPath, outPath string) error {
	return nil
}
func (f *fakeFlacClient) DecodeToPipe(ctx context.Context, flacPath string) (io.ReadCloser, *exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcessCat")
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "XDELTA_HELPER_MODE=cat")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	return stdout, cmd, nil
}

var _ flac.Client = (*fakeFlacClient)(nil)

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcessCat")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("XDELTA_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() { commandContext = original })
}

func TestDiffRunsDecoderAndDiffer(t *testing.T) {
	setHelperCommand(t, "cat")
	cli := NewCLI()
	tempDir := t.TempDir()
	out := tempDir + "/out.xdelta"

	err := cli.Diff(context.Background(), &fakeFlacClient{}, tempDir+"/in.flac", tempDir+"/in.wav", out)
	if err != nil {
		t.Fatalf("Diff returned error: %v", err)
	}
	if _, statErr := os.Stat(out); statErr != nil {
		t.Fatalf("expected output file to be created: %v", statErr)
	}
}

func TestHelperProcessCat(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("XDELTA_HELPER_MODE") {
	case "cat":
		io.Copy(os.Stdout, os.Stdin)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
