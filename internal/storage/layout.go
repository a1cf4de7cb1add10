package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResolvePath decides the repository-relative path for a file under the
// repository's storage strategy, creating any needed directories:
//
//   - date: YYYY/MM/<name>
//   - flat: <name>
//   - cas:  ab/cd/ef/<hash><ext> (falls back to date when hash is short)
//
// Duplicate handling from the repository's local settings is applied to
// the chosen filename.
func ResolvePath(repoPath string, cfg *RepositoryConfig, originalFilename, hash string) (string, error) {
	strategy := Strategy(strings.ToLower(cfg.StorageStrategy))
	duplicateMode := cfg.LocalSettings.HandleDuplicateFilenames

	filename := originalFilename
	if !cfg.LocalSettings.PreserveOriginalFilename {
		filename = uuid.New().String() + filepath.Ext(originalFilename)
	}

	switch strategy {
	case StrategyFlat:
		name := uniqueFilename(repoPath, filename, duplicateMode)
		return name, nil

	case StrategyCAS:
		// Hash-derived fanout keeps directories small. Without a usable
		// hash there is nothing to address by, so fall back to date.
		if len(hash) < 6 {
			fallback := cfg.Clone()
			fallback.StorageStrategy = string(StrategyDate)
			return ResolvePath(repoPath, fallback, originalFilename, hash)
		}
		dirRel := filepath.Join(hash[0:2], hash[2:4], hash[4:6])
		if err := os.MkdirAll(filepath.Join(repoPath, dirRel), 0755); err != nil {
			return "", fmt.Errorf("failed to create content-addressed directories: %w", err)
		}
		return filepath.Join(dirRel, hash+filepath.Ext(originalFilename)), nil

	default:
		now := time.Now()
		dirRel := filepath.Join(fmt.Sprintf("%d", now.Year()), fmt.Sprintf("%02d", now.Month()))
		fullDir := filepath.Join(repoPath, dirRel)
		if err := os.MkdirAll(fullDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create date-based directories: %w", err)
		}
		name := uniqueFilename(fullDir, filename, duplicateMode)
		return filepath.Join(dirRel, name), nil
	}
}

// uniqueFilename applies duplicate handling within a directory. With
// "overwrite" the original name is returned and the caller replaces the
// existing file; "uuid" appends a short random suffix; "rename" (the
// default) appends (1), (2) and so on.
func uniqueFilename(dir, filename, duplicateMode string) string {
	if _, err := os.Stat(filepath.Join(dir, filename)); os.IsNotExist(err) {
		return filename
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	switch strings.ToLower(duplicateMode) {
	case "overwrite":
		return filename
	case "uuid":
		return fmt.Sprintf("%s_%s%s", base, uuid.New().String()[:8], ext)
	default:
		for i := 1; i <= 999; i++ {
			candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
			if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
				return candidate
			}
		}
		// Timestamp guarantees uniqueness past 999 collisions.
		return fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102_150405"), ext)
	}
}

// MoveFile places src at dst atomically where the filesystem allows it.
// A cross-device rename falls back to copy-fsync-rename-remove so a crash
// mid-move never leaves dst truncated.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync destination file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close destination file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize destination file: %w", err)
	}

	return os.Remove(src)
}
