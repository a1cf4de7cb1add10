package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewRepositoryConfig(t *testing.T) {
	config := NewRepositoryConfig("primary")

	if config.ID == "" {
		t.Error("Expected generated ID")
	}
	if config.Name != "primary" {
		t.Errorf("Name = %q", config.Name)
	}
	if config.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
	if config.StorageStrategy != string(StrategyDate) {
		t.Errorf("Expected default strategy date, got %s", config.StorageStrategy)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("New config should validate: %v", err)
	}

	other := NewRepositoryConfig("primary")
	if other.ID == config.ID {
		t.Error("Expected unique IDs per repository")
	}
}

func TestNewRepositoryConfigOptions(t *testing.T) {
	config := NewRepositoryConfig("archive",
		WithStorageStrategy(StrategyCAS),
		WithLocalSettings(false, "overwrite", 1<<30),
		WithIgnorePatterns([]string{"*.raw"}),
	)

	if config.StorageStrategy != string(StrategyCAS) {
		t.Errorf("StorageStrategy = %q", config.StorageStrategy)
	}
	if config.LocalSettings.PreserveOriginalFilename {
		t.Error("Expected preservation disabled")
	}
	if config.LocalSettings.HandleDuplicateFilenames != "overwrite" {
		t.Errorf("HandleDuplicateFilenames = %q", config.LocalSettings.HandleDuplicateFilenames)
	}
	if config.LocalSettings.MaxFileSize != 1<<30 {
		t.Errorf("MaxFileSize = %d", config.LocalSettings.MaxFileSize)
	}
	if len(config.ScanSettings.IgnorePatterns) != 1 || config.ScanSettings.IgnorePatterns[0] != "*.raw" {
		t.Errorf("IgnorePatterns = %v", config.ScanSettings.IgnorePatterns)
	}
}

func TestRepositoryConfigSaveLoad(t *testing.T) {
	dir := t.TempDir()

	config := NewRepositoryConfig("primary", WithStorageStrategy(StrategyCAS))
	if err := config.SaveConfigToFile(dir); err != nil {
		t.Fatalf("SaveConfigToFile: %v", err)
	}

	if !IsRepositoryRoot(dir) {
		t.Error("Expected directory to be a repository root after save")
	}

	loaded, err := LoadConfigFromFile(dir)
	if err != nil {
		t.Fatalf("LoadConfigFromFile: %v", err)
	}
	if loaded.ID != config.ID {
		t.Errorf("Loaded ID = %q, want %q", loaded.ID, config.ID)
	}
	if loaded.Name != config.Name {
		t.Errorf("Loaded Name = %q, want %q", loaded.Name, config.Name)
	}
	if loaded.StorageStrategy != string(StrategyCAS) {
		t.Errorf("Loaded StorageStrategy = %q", loaded.StorageStrategy)
	}
}

func TestLoadConfigFromFileMissing(t *testing.T) {
	if _, err := LoadConfigFromFile(t.TempDir()); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadConfigFromFileCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFromFile(dir); err == nil {
		t.Error("Expected error for corrupt config file")
	}
}

func TestRepositoryConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RepositoryConfig)
	}{
		{"Missing version", func(c *RepositoryConfig) { c.Version = "" }},
		{"Missing ID", func(c *RepositoryConfig) { c.ID = "" }},
		{"Missing name", func(c *RepositoryConfig) { c.Name = "" }},
		{"Bad strategy", func(c *RepositoryConfig) { c.StorageStrategy = "chronological" }},
		{"Bad duplicate handling", func(c *RepositoryConfig) { c.LocalSettings.HandleDuplicateFilenames = "panic" }},
		{"Negative max size", func(c *RepositoryConfig) { c.LocalSettings.MaxFileSize = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewRepositoryConfig("test")
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	config := &RepositoryConfig{ID: "abc", Name: "partial"}
	config.MergeWithDefaults()

	if config.Version == "" {
		t.Error("Expected version filled in")
	}
	if config.StorageStrategy != string(StrategyDate) {
		t.Errorf("StorageStrategy = %q", config.StorageStrategy)
	}
	if config.LocalSettings.HandleDuplicateFilenames == "" {
		t.Error("Expected duplicate handling filled in")
	}
	if config.ScanSettings.IgnorePatterns == nil {
		t.Error("Expected ignore patterns filled in")
	}
}

func TestClone(t *testing.T) {
	config := NewRepositoryConfig("test")
	clone := config.Clone()

	clone.ScanSettings.IgnorePatterns[0] = "mutated"
	if config.ScanSettings.IgnorePatterns[0] == "mutated" {
		t.Error("Clone shares ignore patterns slice with original")
	}
}
