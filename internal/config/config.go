package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/yiblet/sieve/internal/catalog"
	"gopkg.in/yaml.v3"
)

// Config represents the sieve configuration
type Config struct {
	ItemsPerPage      int    `yaml:"items_per_page"`
	PaginationMode    string `yaml:"pagination_mode"`
	PaginationEnabled bool   `yaml:"pagination_enabled"`
	PersistPage       bool   `yaml:"persist_page"`
	SearchDebounceMs  int    `yaml:"search_debounce_ms"`
	Locale            string `yaml:"locale"`
	SessionName       string `yaml:"session_name"`
	SessionLocation   string `yaml:"session_location,omitempty"`
	LogLevel          string `yaml:"log_level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ItemsPerPage:      catalog.DefaultItemsPerPage,
		PaginationMode:    string(catalog.ModePagination),
		PaginationEnabled: true,
		PersistPage:       true,
		SearchDebounceMs:  300,
		Locale:            "en",
		SessionName:       "default",
		LogLevel:          "info",
	}
}

// Pagination converts the pagination settings into the store's initial
// pagination state.
func (c *Config) Pagination() catalog.Pagination {
	p := catalog.DefaultPagination()
	p.ItemsPerPage = c.ItemsPerPage
	p.Enabled = c.PaginationEnabled
	p.PersistPage = c.PersistPage
	if mode, err := catalog.ParseMode(c.PaginationMode); err == nil {
		p.Mode = mode
	}
	return p
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	return &ConfigManager{
		configPath: filepath.Join(homeDir, ".config", "sieve", "config.yaml"),
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration from file, or returns default if file doesn't exist.
// Keys missing from the file keep their default values.
func (cm *ConfigManager) Load() (*Config, error) {
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := validate(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cm.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func validate(config *Config) error {
	if config.ItemsPerPage <= 0 {
		return fmt.Errorf("items_per_page must be greater than 0")
	}
	if config.ItemsPerPage > 500 {
		return fmt.Errorf("items_per_page cannot exceed 500")
	}
	if _, err := catalog.ParseMode(config.PaginationMode); err != nil {
		return fmt.Errorf("pagination_mode: %w", err)
	}
	if config.SearchDebounceMs < 0 {
		return fmt.Errorf("search_debounce_ms cannot be negative")
	}
	if config.Locale == "" {
		return fmt.Errorf("locale cannot be empty")
	}
	if config.SessionName == "" {
		return fmt.Errorf("session_name cannot be empty")
	}
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// field binds a dashed command line key to one Config field.
type field struct {
	get func(c *Config) string
	set func(c *Config, value string) error
}

var fields = map[string]field{
	"items-per-page": {
		get: func(c *Config) string { return strconv.Itoa(c.ItemsPerPage) },
		set: func(c *Config, v string) error { return setInt(&c.ItemsPerPage, "items-per-page", v) },
	},
	"pagination-mode": {
		get: func(c *Config) string { return c.PaginationMode },
		set: func(c *Config, v string) error {
			mode, err := catalog.ParseMode(v)
			if err != nil {
				return err
			}
			c.PaginationMode = string(mode)
			return nil
		},
	},
	"pagination-enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.PaginationEnabled) },
		set: func(c *Config, v string) error { return setBool(&c.PaginationEnabled, "pagination-enabled", v) },
	},
	"persist-page": {
		get: func(c *Config) string { return strconv.FormatBool(c.PersistPage) },
		set: func(c *Config, v string) error { return setBool(&c.PersistPage, "persist-page", v) },
	},
	"search-debounce-ms": {
		get: func(c *Config) string { return strconv.Itoa(c.SearchDebounceMs) },
		set: func(c *Config, v string) error { return setInt(&c.SearchDebounceMs, "search-debounce-ms", v) },
	},
	"locale": {
		get: func(c *Config) string { return c.Locale },
		set: func(c *Config, v string) error { c.Locale = v; return nil },
	},
	"session-name": {
		get: func(c *Config) string { return c.SessionName },
		set: func(c *Config, v string) error { c.SessionName = v; return nil },
	},
	"session-location": {
		get: func(c *Config) string {
			if c.SessionLocation == "" {
				return "[default]"
			}
			return c.SessionLocation
		},
		set: func(c *Config, v string) error { c.SessionLocation = v; return nil },
	},
	"log-level": {
		get: func(c *Config) string { return c.LogLevel },
		set: func(c *Config, v string) error { c.LogLevel = v; return nil },
	},
}

// Keys returns every configuration key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	config, err := cm.Load()
	if err != nil {
		return err
	}

	if err := f.set(config, value); err != nil {
		return err
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}

	config, err := cm.Load()
	if err != nil {
		return "", err
	}

	return f.get(config), nil
}

// List returns all configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(fields))
	for key, f := range fields {
		result[key] = f.get(config)
	}
	return result, nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	switch value {
	case "true":
		*dst = true
	case "false":
		*dst = false
	default:
		return fmt.Errorf("invalid boolean value for %s: %s (must be 'true' or 'false')", key, value)
	}
	return nil
}
