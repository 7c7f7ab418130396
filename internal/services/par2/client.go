// Package par2 wraps the external par2(1) creator/verifier binary and
// carries the blocksize arithmetic the pipeline needs to size a parity set.
package par2

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
)

var commandContext = exec.CommandContext

const (
	// baseBlockSize is par2_base_blocksize in the original: every computed
	// blocksize is a multiple of this.
	baseBlockSize = 4096
	// maxNumBlocks is par2_max_num_blocks in the original: the largest
	// number of blocks par2 will be asked to split a file into.
	maxNumBlocks = 10000
)

// Client defines the par2 parity operations the pipeline needs.
type Client interface {
	Create(ctx context.Context, path string, numVolumes, redundancyPercent int) error
	Verify(ctx context.Context, path string) error
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

// CLI wraps the par2cmdline command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "par2"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// BlockSize computes the parity block size for a file of the given size,
// the way get_nearest_n/par2_create does in the original: the smallest
// multiple of baseBlockSize such that the resulting block count, given the
// total parity bytes implied by numVolumes and redundancyPercent, does not
// exceed maxNumBlocks.
func BlockSize(fileSize int64, numVolumes, redundancyPercent int) int64 {
	if fileSize <= 0 {
		return baseBlockSize
	}
	numPar2Bytes := fileSize * int64(numVolumes) * int64(redundancyPercent) / 100
	if numPar2Bytes <= 0 {
		return baseBlockSize
	}
	minBlockSize := numPar2Bytes / maxNumBlocks
	if minBlockSize < 1 {
		minBlockSize = 1
	}
	return roundUpToMultiple(minBlockSize, baseBlockSize)
}

func roundUpToMultiple(value, multiple int64) int64 {
	if value <= multiple {
		return multiple
	}
	remainder := value % multiple
	if remainder == 0 {
		return value
	}
	return value + (multiple - remainder)
}

// Create invokes the par2 creator against path, producing vol*.par2
// volumes sized by BlockSize, then deletes the redundant base .par2 file
// the original always discards ("it's redundant with the vol par2").
func (c *CLI) Create(ctx context.Context, path string, numVolumes, redundancyPercent int) error {
	if path == "" {
		return fmt.Errorf("par2: path required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("par2: stat %s: %w", path, err)
	}

	blockSize := BlockSize(info.Size(), numVolumes, redundancyPercent)
	args := []string{
		"create",
		"-q",
		fmt.Sprintf("-s%d", blockSize),
		fmt.Sprintf("-n%d", numVolumes),
		fmt.Sprintf("-r%d", redundancyPercent),
		path,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("par2 create failed: %w: %s", err, string(out))
	}

	basePar2 := path + ".par2"
	if err := os.Remove(basePar2); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("par2: remove redundant base file %s: %w", basePar2, err)
	}
	return nil
}

// Verify invokes the par2 verifier against path's sibling parity set.
func (c *CLI) Verify(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("par2: path required")
	}
	volumes, err := RelatedVolumes(path)
	if err != nil {
		return err
	}
	if len(volumes) == 0 {
		return fmt.Errorf("par2: no parity volumes found for %s", path)
	}

	cmd := commandContext(ctx, c.binary, "verify", "-q", volumes[0]) //nolint:gosec
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("par2 verify failed: %w: %s", err, string(out))
	}
	return nil
}

// RelatedVolumes locates the "<path>.vol*.par2" set beside path, the way
// get_related_par2file does in the original, sorted for determinism.
func RelatedVolumes(path string) ([]string, error) {
	pattern := path + ".vol*.par2"
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("par2: glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// HasZeroByteVolume reports whether any volume in the set is zero bytes,
// which the pipeline treats as corrupt and regenerates wholesale.
func HasZeroByteVolume(volumes []string) (bool, error) {
	for _, v := range volumes {
		info, err := os.Stat(v)
		if err != nil {
			return false, fmt.Errorf("par2: stat %s: %w", v, err)
		}
		if info.Size() == 0 {
			return true, nil
		}
	}
	return false, nil
}

var _ Client = (*CLI)(nil)
