package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"media-pipeline/internal/logging"
)

// StagedFile is an upload parked in the staging area, waiting for a
// worker to hash, extract, and place it.
type StagedFile struct {
	Path             string
	OriginalFilename string
	Size             int64
	CreatedAt        time.Time
}

// StagingArea holds uploads between HTTP accept and worker processing.
// Files here survive restarts; the queue's durable tasks reference them
// by path.
type StagingArea struct {
	root string
}

// NewStagingArea opens (creating if needed) a staging directory.
func NewStagingArea(root string) (*StagingArea, error) {
	if root == "" {
		return nil, fmt.Errorf("staging root cannot be empty")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &StagingArea{root: root}, nil
}

// Root returns the staging directory path.
func (s *StagingArea) Root() string {
	return s.root
}

// Stage writes the reader's contents to a uniquely named staging file and
// returns its descriptor. The original filename is kept in the staged
// name (after the UUID prefix) so extraction can still see the extension.
func (s *StagingArea) Stage(r io.Reader, originalFilename string) (*StagedFile, error) {
	name := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(originalFilename))
	path := filepath.Join(s.root, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to sync staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close staging file: %w", err)
	}

	return &StagedFile{
		Path:             path,
		OriginalFilename: filepath.Base(originalFilename),
		Size:             size,
		CreatedAt:        time.Now(),
	}, nil
}

// OriginalFilename recovers the uploaded filename from a staged path by
// stripping the UUID prefix. Paths outside the staging naming scheme are
// returned as-is.
func OriginalFilename(stagedPath string) string {
	base := filepath.Base(stagedPath)
	// UUID prefix is 36 characters plus the underscore separator.
	if len(base) > 37 && base[36] == '_' {
		if _, err := uuid.Parse(base[:36]); err == nil {
			return base[37:]
		}
	}
	return base
}

// Remove deletes a staged file. Missing files are not an error; the
// placement move may already have consumed them.
func (s *StagingArea) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove staged file: %w", err)
	}
	return nil
}

// Cleanup removes staged files older than maxAge and returns how many
// were deleted. Stale files mean a task was lost or abandoned; they are
// logged before removal so an operator can replay them.
func (s *StagingArea) Cleanup(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("failed to read staging directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.root, entry.Name())
		logging.Warn("Removing stale staged file %s (age %s)", path, time.Since(info.ModTime()).Round(time.Minute))
		if err := os.Remove(path); err != nil {
			logging.Error("Failed to remove stale staged file %s: %v", path, err)
			continue
		}
		removed++
	}

	return removed, nil
}
