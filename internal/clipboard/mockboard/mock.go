// Package mockboard provides an in-memory clipboard for tests.
package mockboard

import (
	"bytes"
	"io"
	"sync"
)

// MockClipboard keeps clipboard contents in memory
type MockClipboard struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

// New creates a new MockClipboard instance
func New() *MockClipboard {
	return &MockClipboard{}
}

// Read returns the current contents
func (m *MockClipboard) Read() (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return io.NopCloser(bytes.NewReader(bytes.Clone(m.data))), nil
}

// Write replaces the contents with everything read from r
func (m *MockClipboard) Write(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.writes++
	m.mu.Unlock()
	return nil
}

// SetData sets the mock clipboard data directly (for testing)
func (m *MockClipboard) SetData(data []byte) {
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
}

// GetData returns the current clipboard data (for testing)
func (m *MockClipboard) GetData() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// Writes returns how many times Write succeeded
func (m *MockClipboard) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// IsSupported always returns true for the mock clipboard
func (m *MockClipboard) IsSupported() bool {
	return true
}
