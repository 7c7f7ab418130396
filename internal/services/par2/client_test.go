package par2

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestBlockSizeMinimumIsBase(t *testing.T) {
	if got := BlockSize(1000, 2, 2); got != baseBlockSize {
		t.Fatalf("BlockSize = %d, want %d", got, baseBlockSize)
	}
}

func TestBlockSizeScalesWithFileSize(t *testing.T) {
	// 10 GiB file, 2 volumes, 2% redundancy -> well above the minimum,
	// and must be an exact multiple of baseBlockSize.
	size := int64(10) * 1024 * 1024 * 1024
	got := BlockSize(size, 2, 2)
	if got%baseBlockSize != 0 {
		t.Fatalf("BlockSize %d is not a multiple of %d", got, baseBlockSize)
	}
	numPar2Bytes := size * 2 * 2 / 100
	numBlocks := numPar2Bytes / got
	if numBlocks > maxNumBlocks {
		t.Fatalf("BlockSize %d implies %d blocks, exceeding max %d", got, numBlocks, maxNumBlocks)
	}
}

func TestRelatedVolumesSortedAndEmpty(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "song.flac")
	for _, name := range []string{"song.flac.vol0001+1.par2", "song.flac.vol0000+1.par2"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write volume: %v", err)
		}
	}

	volumes, err := RelatedVolumes(base)
	if err != nil {
		t.Fatalf("RelatedVolumes returned error: %v", err)
	}
	if len(volumes) != 2 {
		t.Fatalf("expected 2 volumes, got %d", len(volumes))
	}
	if filepath.Base(volumes[0]) != "song.flac.vol0000+1.par2" {
		t.Fatalf("expected sorted volumes, got %v", volumes)
	}
}

func TestHasZeroByteVolume(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "vol0000+1.par2")
	zero := filepath.Join(dir, "vol0001+1.par2")
	if err := os.WriteFile(good, []byte("x"), 0o644); err != nil {
		t.Fatalf("write good: %v", err)
	}
	if err := os.WriteFile(zero, nil, 0o644); err != nil {
		t.Fatalf("write zero: %v", err)
	}

	hasZero, err := HasZeroByteVolume([]string{good, zero})
	if err != nil {
		t.Fatalf("HasZeroByteVolume returned error: %v", err)
	}
	if !hasZero {
		t.Fatal("expected zero-byte volume to be detected")
	}

	hasZero, err = HasZeroByteVolume([]string{good})
	if err != nil {
		t.Fatalf("HasZeroByteVolume returned error: %v", err)
	}
	if hasZero {
		t.Fatal("expected no zero-byte volume")
	}
}

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("PAR2_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() { commandContext = original })
}

func TestCreateRemovesRedundantBaseFile(t *testing.T) {
	setHelperCommand(t, "success")
	cli := NewCLI()
	dir := t.TempDir()
	path := filepath.Join(dir, "song.flac")
	if err := os.WriteFile(path, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	basePar2 := path + ".par2"
	if err := os.WriteFile(basePar2, []byte("x"), 0o644); err != nil {
		t.Fatalf("write base par2: %v", err)
	}

	if err := cli.Create(context.Background(), path, 2, 2); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := os.Stat(basePar2); !os.IsNotExist(err) {
		t.Fatalf("expected redundant base par2 file to be removed, stat err = %v", err)
	}
}

func TestVerifyNoVolumes(t *testing.T) {
	cli := NewCLI()
	dir := t.TempDir()
	path := filepath.Join(dir, "song.flac")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if err := cli.Verify(context.Background(), path); err == nil {
		t.Fatal("expected error when no parity volumes exist")
	}
}

func TestVerifySuccess(t *testing.T) {
	setHelperCommand(t, "success")
	cli := NewCLI()
	dir := t.TempDir()
	path := filepath.Join(dir, "song.flac")
	if err := os.WriteFile(path+".vol0000+1.par2", []byte("x"), 0o644); err != nil {
		t.Fatalf("write volume: %v", err)
	}
	if err := cli.Verify(context.Background(), path); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("PAR2_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "par2: verify failed")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
