package extract

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	kilobyte = 1024
	megabyte = 1024 * kilobyte
	gigabyte = 1024 * megabyte

	// maxSupportedFileSize is the hard ceiling above which extraction is
	// refused regardless of configuration.
	maxSupportedFileSize = 20 * gigabyte

	// largeFileThreshold marks the point where files get large-file
	// treatment (bigger buffers, fast mode recommended).
	largeFileThreshold = 100 * megabyte

	hugeFileThreshold = 500 * megabyte

	defaultBufferSize = 64 * kilobyte
	largeBufferSize   = 128 * kilobyte
	hugeBufferSize    = 256 * kilobyte

	assumedMemoryBytes = 20 * gigabyte
	assumedDiskBytes   = 100 * gigabyte
)

// GetAvailableMemory returns an estimate of memory available for extraction,
// in bytes. When GOMEMLIMIT is configured the limit is used; otherwise the
// estimate is deliberately permissive, since extraction streams through a
// bounded buffer and never holds the file in memory.
func GetAvailableMemory() uint64 {
	if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < assumedMemoryBytes {
		return uint64(limit)
	}
	return assumedMemoryBytes
}

// GetAvailableDiskSpace returns a permissive estimate of scratch disk space
// in bytes. Extraction reads from a stream and writes nothing to disk, so
// this only matters for callers staging files beforehand.
func GetAvailableDiskSpace() uint64 {
	return assumedDiskBytes
}

// CanHandleFileSize reports whether a file of the given size can be
// extracted at all. Files beyond the absolute ceiling are refused with a
// human-readable reason; below it the check is permissive because the
// streaming path keeps memory usage bounded regardless of file size.
func CanHandleFileSize(size int64) (bool, string) {
	if size < 0 {
		return false, "negative file size"
	}
	if size > maxSupportedFileSize {
		return false, fmt.Sprintf("file size %d exceeds maximum supported limit of %dGB", size, maxSupportedFileSize/gigabyte)
	}
	return true, ""
}

// IsLargeFile reports whether the file is large enough to warrant
// streaming-oriented handling (bigger buffers, fast mode).
func IsLargeFile(size int64) bool {
	return size > largeFileThreshold
}

// GetOptimalBufferSize returns the I/O buffer size to use for a file of the
// given size. Larger files get larger buffers to cut syscall overhead.
func GetOptimalBufferSize(size int64) int {
	switch {
	case size > hugeFileThreshold:
		return hugeBufferSize
	case size > largeFileThreshold:
		return largeBufferSize
	default:
		return defaultBufferSize
	}
}

// GetOptimalWorkerCount returns how many concurrent extractions to allow,
// derived from the CPU count and clamped to [1, 8]. Each extraction is a
// subprocess, so more than a handful buys nothing.
func GetOptimalWorkerCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	if n > 8 {
		n = 8
	}
	return n
}
