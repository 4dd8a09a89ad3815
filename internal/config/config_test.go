package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yiblet/sieve/internal/catalog"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.ItemsPerPage != 12 {
		t.Errorf("Expected default items per page 12, got %d", config.ItemsPerPage)
	}

	if config.PaginationMode != "pagination" {
		t.Errorf("Expected default pagination mode, got %s", config.PaginationMode)
	}

	if !config.PaginationEnabled || !config.PersistPage {
		t.Errorf("Expected pagination and page persistence enabled by default")
	}

	if config.SearchDebounceMs != 300 {
		t.Errorf("Expected default debounce 300ms, got %d", config.SearchDebounceMs)
	}

	if config.SessionLocation != "" {
		t.Errorf("Expected default session location empty, got %s", config.SessionLocation)
	}
}

func TestConfig_Pagination(t *testing.T) {
	config := DefaultConfig()
	config.ItemsPerPage = 24
	config.PaginationMode = "loadMore"
	config.PersistPage = false

	p := config.Pagination()
	if p.ItemsPerPage != 24 || p.Mode != catalog.ModeLoadMore || p.PersistPage || !p.Enabled {
		t.Errorf("unexpected pagination %+v", p)
	}
	if p.CurrentPage != 1 {
		t.Errorf("Expected page 1, got %d", p.CurrentPage)
	}
}

func TestConfigManager_LoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	cm := NewConfigManagerWithPath(configPath)

	config, err := cm.Load()
	if err != nil {
		t.Fatalf("Expected no error loading non-existent config, got: %v", err)
	}

	if config.ItemsPerPage != DefaultConfig().ItemsPerPage {
		t.Errorf("Expected default items per page, got %d", config.ItemsPerPage)
	}
}

func TestConfigManager_LoadPartialFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("items_per_page: 30\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := NewConfigManagerWithPath(configPath).Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.ItemsPerPage != 30 {
		t.Errorf("Expected items per page 30, got %d", config.ItemsPerPage)
	}
	if config.Locale != "en" || config.LogLevel != "info" {
		t.Errorf("Expected missing keys to keep defaults, got %+v", config)
	}
}

func TestConfigManager_SaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "config.yaml")

	cm := NewConfigManagerWithPath(configPath)

	testConfig := DefaultConfig()
	testConfig.ItemsPerPage = 48
	testConfig.PaginationMode = "autoScroll"
	testConfig.SessionName = "shop"
	testConfig.SessionLocation = "/custom/session.db"

	if err := cm.Save(testConfig); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loadedConfig, err := cm.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if *loadedConfig != *testConfig {
		t.Errorf("Expected %+v, got %+v", testConfig, loadedConfig)
	}
}

func TestConfigManager_Validation(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "zero items per page",
			mutate:      func(c *Config) { c.ItemsPerPage = 0 },
			expectError: true,
			errorMsg:    "items_per_page must be greater than 0",
		},
		{
			name:        "excessive items per page",
			mutate:      func(c *Config) { c.ItemsPerPage = 1000 },
			expectError: true,
			errorMsg:    "items_per_page cannot exceed 500",
		},
		{
			name:        "negative debounce",
			mutate:      func(c *Config) { c.SearchDebounceMs = -1 },
			expectError: true,
			errorMsg:    "search_debounce_ms cannot be negative",
		},
		{
			name:        "unknown mode",
			mutate:      func(c *Config) { c.PaginationMode = "carousel" },
			expectError: true,
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := cm.Save(config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %s, but got none", tt.name)
				} else if tt.errorMsg != "" && err.Error() != "invalid configuration: "+tt.errorMsg {
					t.Errorf("Expected error message '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error for %s: %v", tt.name, err)
			}
		})
	}
}

func TestConfigManager_Update(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	tests := []struct {
		name        string
		key         string
		value       string
		expectError bool
	}{
		{"valid items-per-page", "items-per-page", "24", false},
		{"valid pagination-mode", "pagination-mode", "loadMore", false},
		{"valid persist-page false", "persist-page", "false", false},
		{"valid pagination-enabled true", "pagination-enabled", "true", false},
		{"valid search-debounce-ms", "search-debounce-ms", "150", false},
		{"valid session-location", "session-location", "/custom/path.db", false},
		{"valid log-level", "log-level", "debug", false},
		{"invalid key", "invalid-key", "value", true},
		{"invalid items-per-page", "items-per-page", "not-a-number", true},
		{"out of range items-per-page", "items-per-page", "0", true},
		{"invalid persist-page", "persist-page", "maybe", true},
		{"invalid pagination-mode", "pagination-mode", "carousel", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cm.Update(tt.key, tt.value)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %s, but got none", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %s: %v", tt.name, err)
			}

			retrievedValue, err := cm.Get(tt.key)
			if err != nil {
				t.Errorf("Failed to get value after update: %v", err)
			} else if retrievedValue != tt.value {
				t.Errorf("Expected retrieved value %s, got %s", tt.value, retrievedValue)
			}
		})
	}
}

func TestConfigManager_List(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	values, err := cm.List()
	if err != nil {
		t.Fatalf("Failed to list default config: %v", err)
	}

	for _, key := range Keys() {
		if _, exists := values[key]; !exists {
			t.Errorf("Expected key %s to exist in list output", key)
		}
	}

	if values["items-per-page"] != "12" {
		t.Errorf("Expected default items-per-page 12, got %s", values["items-per-page"])
	}

	if values["session-location"] != "[default]" {
		t.Errorf("Expected default session-location [default], got %s", values["session-location"])
	}
}

func TestConfigManager_GetConfigPath(t *testing.T) {
	configPath := "/test/config/path.yaml"
	cm := NewConfigManagerWithPath(configPath)

	if cm.GetConfigPath() != configPath {
		t.Errorf("Expected config path %s, got %s", configPath, cm.GetConfigPath())
	}
}

func TestNewConfigManager(t *testing.T) {
	cm, err := NewConfigManager()
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	configPath := cm.GetConfigPath()
	if !filepath.IsAbs(configPath) {
		t.Errorf("Expected absolute config path, got %s", configPath)
	}

	if !strings.HasSuffix(configPath, ".config/sieve/config.yaml") {
		t.Errorf("Expected config path to end with .config/sieve/config.yaml, got %s", configPath)
	}
}
