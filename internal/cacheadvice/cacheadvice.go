package cacheadvice

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Evict fsyncs each named file and then advises the kernel, via
// posix_fadvise(POSIX_FADV_DONTNEED), to drop its pages from cache. Files
// are processed in order; processing stops at the first failure, which is
// returned, and the remaining files are left untouched.
func Evict(paths ...string) error {
	for _, path := range paths {
		if err := evictOne(path); err != nil {
			return err
		}
	}
	return nil
}

func evictOne(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cacheadvice: open %s: %w", path, err)
	}
	defer f.Close()

	if err := f.Sync(); err != nil {
		return fmt.Errorf("cacheadvice: fsync %s: %w", path, err)
	}

	fd := int(f.Fd())
	if err := unix.Fadvise(fd, 0, 0, unix.FADV_DONTNEED); err != nil {
		return fmt.Errorf("cacheadvice: fadvise %s: %w", path, err)
	}
	return nil
}

// IsResident reports whether any page of the named file is currently resident
// in the page cache, by mmap-ing it and consulting mincore(2). The pargen
// and xdelta stages poll it to wait until a file's pages are gone before
// verifying or diffing it, and tests use it to confirm Evict dropped them.
func IsResident(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("cacheadvice: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("cacheadvice: stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 {
		return false, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_NONE, unix.MAP_SHARED)
	if err != nil {
		return false, fmt.Errorf("cacheadvice: mmap %s: %w", path, err)
	}
	defer unix.Munmap(data)

	pageSize := os.Getpagesize()
	numPages := (len(data) + pageSize - 1) / pageSize
	vec := make([]byte, numPages)
	if err := mincore(data, vec); err != nil {
		return false, fmt.Errorf("cacheadvice: mincore %s: %w", path, err)
	}

	for _, b := range vec {
		if b&1 != 0 {
			return true, nil
		}
	}
	return false, nil
}

// mincore wraps the mincore(2) syscall, which golang.org/x/sys/unix does not
// expose as a named function.
func mincore(data, vec []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_MINCORE,
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)),
		uintptr(unsafe.Pointer(&vec[0])),
	)
	if errno != 0 {
		return errno
	}
	return nil
}
