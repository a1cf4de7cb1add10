package storage

import "testing"

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("STORAGE_PATH", "")
		t.Setenv("STORAGE_STRATEGY", "")
		t.Setenv("STORAGE_PRESERVE_FILENAME", "")
		t.Setenv("STORAGE_DUPLICATE_HANDLING", "")

		config := LoadConfigFromEnv()
		if config.Strategy != StrategyDate {
			t.Errorf("Expected default strategy date, got %s", config.Strategy)
		}
		if !config.Options.PreserveOriginalFilename {
			t.Error("Expected filename preservation by default")
		}
		if config.Options.HandleDuplicateFilenames != "rename" {
			t.Errorf("Expected default duplicate handling rename, got %s", config.Options.HandleDuplicateFilenames)
		}
	})

	t.Run("Environment overrides", func(t *testing.T) {
		t.Setenv("STORAGE_PATH", "/mnt/photos")
		t.Setenv("STORAGE_STRATEGY", "CAS")
		t.Setenv("STORAGE_PRESERVE_FILENAME", "false")
		t.Setenv("STORAGE_DUPLICATE_HANDLING", "uuid")

		config := LoadConfigFromEnv()
		if config.BasePath != "/mnt/photos" {
			t.Errorf("BasePath = %q", config.BasePath)
		}
		if config.Strategy != StrategyCAS {
			t.Errorf("Strategy = %q", config.Strategy)
		}
		if config.Options.PreserveOriginalFilename {
			t.Error("Expected filename preservation disabled")
		}
		if config.Options.HandleDuplicateFilenames != "uuid" {
			t.Errorf("HandleDuplicateFilenames = %q", config.Options.HandleDuplicateFilenames)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"Default config", func(*Config) {}, true},
		{"Empty base path", func(c *Config) { c.BasePath = "" }, false},
		{"Bad strategy", func(c *Config) { c.Strategy = "alphabetical" }, false},
		{"Bad duplicate handling", func(c *Config) { c.Options.HandleDuplicateFilenames = "explode" }, false},
		{"Negative max size", func(c *Config) { c.Options.MaxFileSize = -1 }, false},
		{"CAS strategy", func(c *Config) { c.Strategy = StrategyCAS }, true},
		{"Flat strategy", func(c *Config) { c.Strategy = StrategyFlat }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			err := config.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid config, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestStrategyDescription(t *testing.T) {
	for _, s := range []Strategy{StrategyDate, StrategyCAS, StrategyFlat} {
		if s.Description() == "Unknown storage strategy" {
			t.Errorf("Strategy %s has no description", s)
		}
	}
	if Strategy("bogus").Description() != "Unknown storage strategy" {
		t.Error("Expected unknown description for bogus strategy")
	}
}
