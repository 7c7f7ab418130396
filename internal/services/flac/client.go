// Package flac wraps the external flac(1) encoder/decoder binary.
package flac

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"taketake/internal/cacheadvice"
)

var commandContext = exec.CommandContext

// Client defines the FLAC codec operations the pipeline needs.
type Client interface {
	Encode(ctx context.Context, wavPath, outPath string) error
	Decode(ctx context.Context, flacPath, outPath string) error
	DecodeToPipe(ctx context.Context, flacPath string) (io.ReadCloser, *exec.Cmd, error)
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

// CLI wraps the flac command-line codec.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "flac"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Encode runs the FLAC encoder against wavPath, writing outPath. outPath is
// expected to be a ".in_progress.flac"-style scratch path; the pipeline
// stage is responsible for the atomic rename to its final name.
func (c *CLI) Encode(ctx context.Context, wavPath, outPath string) error {
	if wavPath == "" {
		return fmt.Errorf("flac: input path required")
	}
	if outPath == "" {
		return fmt.Errorf("flac: output path required")
	}

	cmd := commandContext(ctx, c.binary, "--replay-gain", "--force", "-o", outPath, wavPath) //nolint:gosec
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("flac encode failed: %w: %s", err, string(out))
	}
	return nil
}

// Decode runs the FLAC decoder against flacPath, writing a WAV to outPath.
func (c *CLI) Decode(ctx context.Context, flacPath, outPath string) error {
	if flacPath == "" {
		return fmt.Errorf("flac: input path required")
	}
	if outPath == "" {
		return fmt.Errorf("flac: output path required")
	}

	cmd := commandContext(ctx, c.binary, "-d", "--force", "-o", outPath, flacPath) //nolint:gosec
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("flac decode failed: %w: %s", err, string(out))
	}
	return nil
}

// DecodeToPipe starts "flac -c -d <flacPath>", streaming decoded PCM/WAV to
// stdout, and returns the read end of that stream plus the running command
// so the caller can wire it into a concurrent differ and wait on exit.
// Closing the returned ReadCloser closes the pipe's read end only; the
// caller must still call cmd.Wait.
func (c *CLI) DecodeToPipe(ctx context.Context, flacPath string) (io.ReadCloser, *exec.Cmd, error) {
	if flacPath == "" {
		return nil, nil, fmt.Errorf("flac: input path required")
	}

	cmd := commandContext(ctx, c.binary, "-c", "-d", "--silent", flacPath) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("flac: stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("flac: start decode: %w", err)
	}

	return stdout, cmd, nil
}

// EvictAfterEncode advises the kernel to drop outPath's pages from cache
// once the encode has completed and been verified durable.
func EvictAfterEncode(outPath string) error {
	return cacheadvice.Evict(outPath)
}

var _ Client = (*CLI)(nil)
