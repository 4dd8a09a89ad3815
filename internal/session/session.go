// Package session defines the key-value storage that keeps catalog criteria
// alive between runs. Entries are grouped into named sessions so several
// independent browsing contexts can share one database.
package session

import (
	"errors"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("session key not found")

// DefaultName is the session used when none is configured.
const DefaultName = "default"

// Backend stores the entries of one session.
// All methods are safe for concurrent use.
type Backend interface {
	// Get retrieves a value by key.
	// Returns an error wrapping ErrNotFound if the key does not exist.
	Get(key string) (string, error)

	// Set stores a value, replacing any previous value for the key.
	Set(key, value string) error

	// Remove deletes a key. Removing a missing key is not an error.
	Remove(key string) error

	// List returns a copy of every entry in the session.
	List() (map[string]string, error)

	// Close releases any resources.
	Close() error
}

// Store hands out backends for named sessions and manages their lifecycle
// as a single unit.
type Store interface {
	// Session returns the backend for the named session.
	Session(name string) Backend

	// Names lists the sessions that currently hold at least one entry.
	Names() ([]string, error)

	// Close releases all resources.
	Close() error
}
