package sievefs

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	ConfigDir      = ".config/sieve"
	ConfigFile     = "config.yaml"
	DefaultDBFile  = "session.db"
	DefaultLogsDir = "logs"
)

// SieveFS resolves the files kept under the sieve application directory
type SieveFS struct {
	root string
}

// New creates a SieveFS rooted at ~/.config/sieve/, creating it if needed
func New() (*SieveFS, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	root := filepath.Join(homeDir, ConfigDir)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", root, err)
	}

	return &SieveFS{root: root}, nil
}

// NewWithRoot creates a SieveFS with a custom root (for testing)
func NewWithRoot(root string) *SieveFS {
	return &SieveFS{root: root}
}

// Root returns the root directory path
func (sfs *SieveFS) Root() string {
	return sfs.root
}

// ConfigPath returns the path of the configuration file
func (sfs *SieveFS) ConfigPath() string {
	return filepath.Join(sfs.root, ConfigFile)
}

// DBPath resolves the session database location.
// If location is empty, uses <root>/session.db.
// If location is absolute, uses it directly.
// If location is relative, treats it as relative to the root.
// The parent directory is created.
func (sfs *SieveFS) DBPath(location string) (string, error) {
	var path string
	switch {
	case location == "":
		path = filepath.Join(sfs.root, DefaultDBFile)
	case filepath.IsAbs(location):
		path = location
	default:
		path = filepath.Join(sfs.root, location)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}
	return path, nil
}

// LogDir returns the directory daily log files are written to
func (sfs *SieveFS) LogDir() string {
	return filepath.Join(sfs.root, DefaultLogsDir)
}
