// Package xdelta3 wraps the external xdelta3(1) differ and parses its
// VCDIFF "printdelta" output to recognize a zero-delta (byte-identical)
// witness between a decoded FLAC file and its source waveform.
package xdelta3

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"taketake/internal/services/flac"
)

var commandContext = exec.CommandContext

// Client defines the xdelta3 operations the pipeline needs.
type Client interface {
	Diff(ctx context.Context, flacClient flac.Client, flacPath, wavPath, outPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the xdelta3 command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "xdelta3"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Diff decodes flacPath via flacClient and pipes the resulting PCM into
// "xdelta3 -s wavPath", writing outPath. The flac decoder and the xdelta3
// differ run concurrently, connected by an os.Pipe; this process closes
// its own copies of both pipe ends once the differ starts, so the decoder
// receives SIGPIPE if the differ exits early, mirroring the original's
// explicit os.close(write_from_flac) comment.
func (c *CLI) Diff(ctx context.Context, flacClient flac.Client, flacPath, wavPath, outPath string) error {
	if flacPath == "" || wavPath == "" || outPath == "" {
		return fmt.Errorf("xdelta3: flacPath, wavPath, and outPath are all required")
	}

	decodeOut, decodeCmd, err := flacClient.DecodeToPipe(ctx, flacPath)
	if err != nil {
		return fmt.Errorf("xdelta3: start flac decode: %w", err)
	}
	defer decodeOut.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("xdelta3: create %s: %w", outPath, err)
	}
	defer out.Close()

	diffCmd := commandContext(ctx, c.binary, "-s", wavPath) //nolint:gosec
	diffCmd.Stdin = decodeOut
	diffCmd.Stdout = out
	diffCmd.Stderr = os.Stderr

	if err := diffCmd.Start(); err != nil {
		return fmt.Errorf("xdelta3: start differ: %w", err)
	}
	// The differ now holds its own copy of the read end.
	decodeOut.Close()

	diffErr := diffCmd.Wait()
	decodeErr := decodeCmd.Wait()

	if diffErr != nil {
		return fmt.Errorf("xdelta3: differ failed: %w", diffErr)
	}
	if decodeErr != nil {
		return fmt.Errorf("xdelta3: flac decode failed: %w", decodeErr)
	}
	return nil
}

// PrintDelta invokes "xdelta3 printdelta" against path and returns its
// stdout text.
func (c *CLI) PrintDelta(ctx context.Context, path string) (string, error) {
	cmd := commandContext(ctx, c.binary, "printdelta", path) //nolint:gosec
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("xdelta3 printdelta failed: %w", err)
	}
	return string(out), nil
}

// ParseVCDiffHeader reads the output of "xdelta3 printdelta path" and
// reports whether it proves a zero-delta (byte-identical) copy between the
// xdelta's source and target of expectedSize bytes: a VCDIFF header whose
// copy window and target window both equal expectedSize, a zero-length
// data section, and exactly one CPY_0 instruction spanning the whole file,
// followed by EOF. Any deviation means XdeltaMismatch for the caller.
func ParseVCDiffHeader(printDeltaOutput string, expectedSize int64) (zeroDelta bool, mismatchReason string) {
	expectedVCDiffs := map[string]string{
		"VCDIFF header indicator":     "VCD_APPHEADER",
		"VCDIFF copy window length":   fmt.Sprintf("%d", expectedSize),
		"VCDIFF copy window offset":   "0",
		"VCDIFF target window length": fmt.Sprintf("%d", expectedSize),
		"VCDIFF data section length":  "0",
	}
	found := make(map[string]bool, len(expectedVCDiffs))

	const headerLine = "Offset Code Type1 Size1 @Addr1 + Type2 Size2 @Addr2"
	expectedInstr := fmt.Sprintf("000000 019  CPY_0 %d @0", expectedSize)
	expectedInstrFields := strings.Fields(expectedInstr)

	scanner := bufio.NewScanner(strings.NewReader(printDeltaOutput))

	var line string
	for scanner.Scan() {
		line = strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, ":") {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			break
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if want, ok := expectedVCDiffs[key]; ok {
			if want != value {
				return false, fmt.Sprintf("key %q value %q != expected %q", key, value, want)
			}
			found[key] = true
		}
	}

	for key := range expectedVCDiffs {
		if !found[key] {
			return false, fmt.Sprintf("missing expected VCDIFF header line %q", key)
		}
	}

	if line != headerLine {
		return false, fmt.Sprintf("expected header line %q, got %q", headerLine, line)
	}

	if !scanner.Scan() {
		return false, "missing instruction line"
	}
	instrFields := strings.Fields(scanner.Text())
	if len(instrFields) != len(expectedInstrFields) {
		return false, fmt.Sprintf("expected instruction %q, got %q", expectedInstr, scanner.Text())
	}
	for i := range expectedInstrFields {
		if instrFields[i] != expectedInstrFields[i] {
			return false, fmt.Sprintf("expected instruction %q, got %q", expectedInstr, scanner.Text())
		}
	}

	if scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			return false, "expected EOF after single instruction line"
		}
	}
	if scanner.Scan() {
		return false, "unexpected trailing output after instruction line"
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Sprintf("scan error: %v", err)
	}

	return true, ""
}

var _ Client = (*CLI)(nil)
