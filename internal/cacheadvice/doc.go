// Package cacheadvice evicts completed source and working files from the
// page cache once they have been durably written and verified, so a long
// archival run does not pressure the destination filesystem's buffer cache
// with gigabytes of already-copied audio.
//
// It is a direct port of the prior implementation's flush_fs_caches, which
// shelled out to libc's posix_fadvise via ctypes; golang.org/x/sys/unix
// exposes the same syscall natively.
package cacheadvice
