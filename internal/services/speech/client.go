// Package speech wraps the external speech-to-text recognizer plus the
// ffmpeg/ffprobe helpers used to bound what audio gets sent to it.
package speech

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"taketake/internal/talkytime"
)

var commandContext = exec.CommandContext

// Client defines the speech recognition and pre-recognition audio analysis
// operations the pipeline needs.
type Client interface {
	Duration(ctx context.Context, wavPath string) (float64, error)
	DetectSilence(ctx context.Context, wavPath string, scanSeconds, thresholdDBFS, minDurationSeconds float64) ([]talkytime.TimeRange, error)
	Recognize(ctx context.Context, wavPath string, offset, duration float64) (string, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithSpeechBinary overrides the recognizer binary name.
func WithSpeechBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.speechBinary = binary
		}
	}
}

// WithFfmpegBinary overrides the ffmpeg binary name.
func WithFfmpegBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.ffmpegBinary = binary
		}
	}
}

// WithFfprobeBinary overrides the ffprobe binary name.
func WithFfprobeBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.ffprobeBinary = binary
		}
	}
}

// CLI wraps the speech recognizer, ffmpeg, and ffprobe command-line tools.
type CLI struct {
	speechBinary  string
	ffmpegBinary  string
	ffprobeBinary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{speechBinary: "pocketsphinx", ffmpegBinary: "ffmpeg", ffprobeBinary: "ffprobe"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Duration invokes ffprobe to report the duration, in seconds, of wavPath.
func (c *CLI) Duration(ctx context.Context, wavPath string) (float64, error) {
	if wavPath == "" {
		return 0, fmt.Errorf("speech: path required")
	}
	args := []string{"-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", wavPath}
	cmd := commandContext(ctx, c.ffprobeBinary, args...) //nolint:gosec
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration failed: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("speech: could not parse ffprobe duration output %q: %w", out, err)
	}
	return duration, nil
}

// DetectSilence runs ffmpeg's silencedetect filter over the first
// scanSeconds of wavPath and returns the detected silent spans.
func (c *CLI) DetectSilence(ctx context.Context, wavPath string, scanSeconds, thresholdDBFS, minDurationSeconds float64) ([]talkytime.TimeRange, error) {
	if wavPath == "" {
		return nil, fmt.Errorf("speech: path required")
	}
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", thresholdDBFS, minDurationSeconds)
	args := []string{"-t", fmt.Sprintf("%g", scanSeconds), "-i", wavPath, "-af", filter, "-f", "null", "-"}
	cmd := commandContext(ctx, c.ffmpegBinary, args...) //nolint:gosec
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("speech: stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("speech: start ffmpeg: %w", err)
	}

	var starts, durations []float64
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(strings.TrimSpace(line), "[silencedetect") {
			continue
		}
		fields := strings.Fields(line)
		last := fields[len(fields)-1]
		value, err := strconv.ParseFloat(last, 64)
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(line, "silence_start"):
			starts = append(starts, value)
		case strings.Contains(line, "silence_end"):
			// A silence_end line ends with "| silence_duration: <seconds>".
			durations = append(durations, value)
		}
	}
	waitErr := cmd.Wait()
	// ffmpeg with "-f null -" always exits non-zero-safe only when the
	// filter graph genuinely failed; silencedetect output lands on stderr
	// regardless of exit status, so a parse failure is what we surface.
	if waitErr != nil && len(starts) == 0 && len(durations) == 0 {
		return nil, fmt.Errorf("speech: ffmpeg silencedetect failed: %w", waitErr)
	}

	n := len(starts)
	if len(durations) < n {
		n = len(durations)
	}
	ranges := make([]talkytime.TimeRange, 0, n)
	for i := 0; i < n; i++ {
		ranges = append(ranges, talkytime.TimeRange{Start: starts[i], Duration: durations[i]})
	}
	return ranges, nil
}

// Recognize invokes the speech recognizer against the [offset,
// offset+duration) span of wavPath and returns the recognized text.
func (c *CLI) Recognize(ctx context.Context, wavPath string, offset, duration float64) (string, error) {
	if wavPath == "" {
		return "", fmt.Errorf("speech: path required")
	}
	args := []string{
		"-infile", wavPath,
		"-offset", fmt.Sprintf("%g", offset),
		"-duration", fmt.Sprintf("%g", duration),
	}
	cmd := commandContext(ctx, c.speechBinary, args...) //nolint:gosec
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("speech recognize failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

var _ Client = (*CLI)(nil)
