// Package hash computes content hashes used as the content-addressable
// identity of stored assets.
package hash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// bufferSize is the chunk size for reading files during hashing. 4MB is a
// compromise between memory usage and syscall overhead.
const bufferSize = 4 * 1024 * 1024

// File computes the BLAKE3 hash of a file and returns it as a hex string.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer f.Close()

	return Reader(f)
}

// Reader computes the BLAKE3 hash of everything in r as a hex string.
func Reader(r io.Reader) (string, error) {
	hasher := blake3.New()
	buf := make([]byte, bufferSize)

	if _, err := io.CopyBuffer(hasher, r, buf); err != nil {
		return "", fmt.Errorf("error reading during hashing: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Verify reports whether the file at path hashes to expected.
func Verify(path, expected string) (bool, error) {
	calculated, err := File(path)
	if err != nil {
		return false, err
	}
	return calculated == expected, nil
}
