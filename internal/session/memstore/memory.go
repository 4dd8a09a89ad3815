// Package memstore provides an in-memory implementation of the session
// interfaces. Nothing is persisted; it backs tests and one-shot runs.
package memstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/yiblet/sieve/internal/session"
)

// MemoryStore is an in-memory implementation of session.Store.
// It is thread-safe via a mutex.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string]string),
	}
}

// Session returns the backend for name.
func (m *MemoryStore) Session(name string) session.Backend {
	if name == "" {
		name = session.DefaultName
	}
	return &memoryBackend{store: m, name: name}
}

// Names lists sessions holding entries, sorted.
func (m *MemoryStore) Names() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.sessions))
	for name, entries := range m.sessions {
		if len(entries) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close releases resources (no-op for memory store).
func (m *MemoryStore) Close() error {
	return nil
}

// memoryBackend implements session.Backend for one session of a MemoryStore.
type memoryBackend struct {
	store *MemoryStore
	name  string
}

// Get retrieves a value by key.
func (b *memoryBackend) Get(key string) (string, error) {
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()

	value, exists := b.store.sessions[b.name][key]
	if !exists {
		return "", fmt.Errorf("%w: %s", session.ErrNotFound, key)
	}
	return value, nil
}

// Set stores a value.
func (b *memoryBackend) Set(key, value string) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	entries, ok := b.store.sessions[b.name]
	if !ok {
		entries = make(map[string]string)
		b.store.sessions[b.name] = entries
	}
	entries[key] = value
	return nil
}

// Remove deletes a key.
func (b *memoryBackend) Remove(key string) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	delete(b.store.sessions[b.name], key)
	return nil
}

// List returns a copy of all entries.
func (b *memoryBackend) List() (map[string]string, error) {
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()

	// Return copy to prevent external modification
	entries := b.store.sessions[b.name]
	result := make(map[string]string, len(entries))
	for k, v := range entries {
		result[k] = v
	}
	return result, nil
}

// Close releases resources (no-op for memory store).
func (b *memoryBackend) Close() error {
	return nil
}
