package storage

import (
	"fmt"
	"os"
	"strings"
)

// Strategy selects how asset files are laid out inside a repository.
type Strategy string

const (
	// StrategyDate organizes files as YYYY/MM/name, easy to browse.
	StrategyDate Strategy = "date"
	// StrategyCAS stores files under hash-derived paths, deduplicating
	// by content.
	StrategyCAS Strategy = "cas"
	// StrategyFlat keeps every file in one directory.
	StrategyFlat Strategy = "flat"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyDate, StrategyCAS, StrategyFlat:
		return true
	}
	return false
}

// Description returns a human-readable summary of the strategy.
func (s Strategy) Description() string {
	switch s {
	case StrategyDate:
		return "Date-based organization (YYYY/MM), easy to browse chronologically"
	case StrategyCAS:
		return "Content-addressable storage, hash-based paths with automatic deduplication"
	case StrategyFlat:
		return "Flat structure, all files in one directory"
	default:
		return "Unknown storage strategy"
	}
}

// Options tunes per-file placement behavior.
type Options struct {
	// PreserveOriginalFilename keeps the uploaded filename where the
	// strategy allows it (date and flat).
	PreserveOriginalFilename bool `json:"preserve_original_filename"`

	// HandleDuplicateFilenames selects what happens on a name collision:
	// "rename" appends (1), (2)..., "uuid" appends a short UUID,
	// "overwrite" replaces the existing file.
	HandleDuplicateFilenames string `json:"handle_duplicate_filenames"`

	// MaxFileSize caps stored file size in bytes. Zero means no limit.
	MaxFileSize int64 `json:"max_file_size"`
}

// Config holds the storage layer's startup configuration.
type Config struct {
	BasePath string   `json:"base_path"`
	Strategy Strategy `json:"strategy"`
	Options  Options  `json:"options"`
}

// DefaultConfig returns the default storage configuration.
func DefaultConfig() Config {
	return Config{
		BasePath: "./data/storage",
		Strategy: StrategyDate,
		Options: Options{
			PreserveOriginalFilename: true,
			HandleDuplicateFilenames: "rename",
			MaxFileSize:              0,
		},
	}
}

// LoadConfigFromEnv builds a Config from STORAGE_* environment variables,
// falling back to defaults for anything unset.
func LoadConfigFromEnv() Config {
	config := DefaultConfig()

	if basePath := os.Getenv("STORAGE_PATH"); basePath != "" {
		config.BasePath = basePath
	}
	if strategy := os.Getenv("STORAGE_STRATEGY"); strategy != "" {
		config.Strategy = Strategy(strings.ToLower(strategy))
	}
	if os.Getenv("STORAGE_PRESERVE_FILENAME") == "false" {
		config.Options.PreserveOriginalFilename = false
	}
	if handling := os.Getenv("STORAGE_DUPLICATE_HANDLING"); handling != "" {
		config.Options.HandleDuplicateFilenames = strings.ToLower(handling)
	}

	return config
}

// Validate checks the configuration for values that would break placement.
func (c *Config) Validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("storage base path cannot be empty")
	}
	if !c.Strategy.Valid() {
		return fmt.Errorf("invalid storage strategy: %s", c.Strategy)
	}
	switch c.Options.HandleDuplicateFilenames {
	case "rename", "uuid", "overwrite":
	default:
		return fmt.Errorf("invalid duplicate handling %q, must be one of: rename, uuid, overwrite", c.Options.HandleDuplicateFilenames)
	}
	if c.Options.MaxFileSize < 0 {
		return fmt.Errorf("max file size cannot be negative")
	}
	return nil
}
