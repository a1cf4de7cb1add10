package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the marker file that identifies an initialized
// repository. Its presence at a directory root means that directory is a
// repository.
const ConfigFileName = "repository.config"

// DefaultIgnorePatterns lists files skipped when scanning repositories.
var DefaultIgnorePatterns = []string{
	".DS_Store",
	"Thumbs.db",
	"ehthumbs.db",
	"desktop.ini",
	"*.tmp",
	"*.temp",
	"*.part",
	"*.partial",
	"*.bak",
	"*.orig",
	"*~",
	"~$*",
	"*.swp",
	"*.swo",
	".Trash",
	".Trashes",
	".fseventsd",
	".Spotlight-V100",
	".TemporaryItems",
	"lost+found",
}

// RepositoryConfig is the on-disk repository.config file structure.
type RepositoryConfig struct {
	Version   string    `yaml:"version" json:"version"`
	ID        string    `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`

	// StorageStrategy is one of "date", "cas", "flat".
	StorageStrategy string        `yaml:"storage_strategy" json:"storage_strategy"`
	ScanSettings    ScanSettings  `yaml:"scan_settings" json:"scan_settings"`
	LocalSettings   LocalSettings `yaml:"local_settings" json:"local_settings"`
}

// ScanSettings configures filesystem scans of the repository.
type ScanSettings struct {
	// IgnorePatterns lists file patterns skipped during scans.
	IgnorePatterns []string `yaml:"ignore_patterns" json:"ignore_patterns"`
}

// LocalSettings configures per-file placement for one repository,
// overriding the process-wide defaults.
type LocalSettings struct {
	PreserveOriginalFilename bool   `yaml:"preserve_original_filename" json:"preserve_original_filename"`
	HandleDuplicateFilenames string `yaml:"handle_duplicate_filenames" json:"handle_duplicate_filenames"`
	MaxFileSize              int64  `yaml:"max_file_size" json:"max_file_size"`
}

// DefaultRepositoryConfig returns a configuration template. ID, Name and
// CreatedAt are left unset; they are unique per repository.
func DefaultRepositoryConfig() *RepositoryConfig {
	return &RepositoryConfig{
		Version:         "1.0",
		StorageStrategy: string(StrategyDate),
		ScanSettings: ScanSettings{
			IgnorePatterns: DefaultIgnorePatterns,
		},
		LocalSettings: LocalSettings{
			PreserveOriginalFilename: true,
			HandleDuplicateFilenames: "rename",
			MaxFileSize:              0,
		},
	}
}

// RepositoryConfigOption customizes a new repository configuration.
type RepositoryConfigOption func(*RepositoryConfig)

// WithStorageStrategy sets the placement strategy.
func WithStorageStrategy(strategy Strategy) RepositoryConfigOption {
	return func(config *RepositoryConfig) {
		config.StorageStrategy = string(strategy)
	}
}

// WithLocalSettings sets the per-file placement settings.
func WithLocalSettings(preserveFilename bool, duplicateHandling string, maxSize int64) RepositoryConfigOption {
	return func(config *RepositoryConfig) {
		config.LocalSettings.PreserveOriginalFilename = preserveFilename
		config.LocalSettings.HandleDuplicateFilenames = duplicateHandling
		config.LocalSettings.MaxFileSize = maxSize
	}
}

// WithIgnorePatterns replaces the scan ignore patterns.
func WithIgnorePatterns(patterns []string) RepositoryConfigOption {
	return func(config *RepositoryConfig) {
		if patterns != nil {
			config.ScanSettings.IgnorePatterns = patterns
		}
	}
}

// NewRepositoryConfig creates a configuration with a fresh unique ID and
// the current timestamp, then applies the given options.
func NewRepositoryConfig(name string, options ...RepositoryConfigOption) *RepositoryConfig {
	config := DefaultRepositoryConfig()
	config.ID = uuid.New().String()
	config.Name = name
	config.CreatedAt = time.Now()

	for _, option := range options {
		option(config)
	}
	return config
}

// LoadConfigFromFile reads and validates the repository.config file at
// the repository root.
func LoadConfigFromFile(repoPath string) (*RepositoryConfig, error) {
	configPath := filepath.Join(repoPath, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("repository configuration not found at %s", configPath)
		}
		return nil, fmt.Errorf("failed to read repository config: %w", err)
	}

	var config RepositoryConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repository config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid repository configuration: %w", err)
	}

	return &config, nil
}

// SaveConfigToFile writes the configuration to the repository root,
// creating or updating the marker file.
func (rc *RepositoryConfig) SaveConfigToFile(repoPath string) error {
	if err := rc.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(rc)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	configPath := filepath.Join(repoPath, ConfigFileName)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks required fields and enumerated values.
func (rc *RepositoryConfig) Validate() error {
	if rc.Version == "" {
		return fmt.Errorf("version is required")
	}
	if rc.ID == "" {
		return fmt.Errorf("repository ID is required")
	}
	if rc.Name == "" {
		return fmt.Errorf("repository name is required")
	}
	if !Strategy(rc.StorageStrategy).Valid() {
		return fmt.Errorf("invalid storage strategy %q, must be one of: date, cas, flat", rc.StorageStrategy)
	}
	switch rc.LocalSettings.HandleDuplicateFilenames {
	case "rename", "uuid", "overwrite":
	default:
		return fmt.Errorf("invalid handle_duplicate_filenames %q, must be one of: rename, uuid, overwrite", rc.LocalSettings.HandleDuplicateFilenames)
	}
	if rc.LocalSettings.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size cannot be negative")
	}
	return nil
}

// MergeWithDefaults fills any missing fields from the default template.
func (rc *RepositoryConfig) MergeWithDefaults() {
	defaults := DefaultRepositoryConfig()

	if rc.Version == "" {
		rc.Version = defaults.Version
	}
	if rc.StorageStrategy == "" {
		rc.StorageStrategy = defaults.StorageStrategy
	}
	if rc.ScanSettings.IgnorePatterns == nil {
		rc.ScanSettings.IgnorePatterns = DefaultIgnorePatterns
	}
	if rc.LocalSettings.HandleDuplicateFilenames == "" {
		rc.LocalSettings.HandleDuplicateFilenames = defaults.LocalSettings.HandleDuplicateFilenames
	}
}

// Clone returns a deep copy of the configuration.
func (rc *RepositoryConfig) Clone() *RepositoryConfig {
	clone := *rc
	if rc.ScanSettings.IgnorePatterns != nil {
		clone.ScanSettings.IgnorePatterns = make([]string, len(rc.ScanSettings.IgnorePatterns))
		copy(clone.ScanSettings.IgnorePatterns, rc.ScanSettings.IgnorePatterns)
	}
	return &clone
}

// IsRepositoryRoot reports whether path contains a repository.config
// marker file.
func IsRepositoryRoot(path string) bool {
	_, err := os.Stat(filepath.Join(path, ConfigFileName))
	return err == nil
}
