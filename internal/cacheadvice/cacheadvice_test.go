package cacheadvice_test

import (
	"os"
	"path/filepath"
	"testing"

	"taketake/internal/cacheadvice"
)

func TestEvictSucceedsOnRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.bin")
	if err := os.WriteFile(path, make([]byte, 4096), 0o644); err != nil {
		t.Fatalf("write sample file: %v", err)
	}

	if err := cacheadvice.Evict(path); err != nil {
		t.Fatalf("Evict returned error: %v", err)
	}
}

func TestEvictMissingFile(t *testing.T) {
	if err := cacheadvice.Evict(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResidentEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	resident, err := cacheadvice.IsResident(path)
	if err != nil {
		t.Fatalf("IsResident returned error: %v", err)
	}
	if resident {
		t.Fatal("expected empty file to report not resident")
	}
}
