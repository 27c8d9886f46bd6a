package store

import (
	"slices"
	"sync"
)

// DB is the key/value storage area backing the application state.
type DB interface {
	// Get returns the values for keys that exist
	Get(keys ...string) (map[string][]byte, error)
	// Set writes all values atomically
	Set(values map[string][]byte) error
	// Remove deletes the keys
	Remove(keys ...string) error
	// Close ends the database connection
	Close() error
}

// Memory is an in-process DB. It is used when running without a database
// file and in tests.
type Memory struct {
	data   map[string][]byte
	mu     sync.Mutex
	writes int
}

// NewMemory returns an empty in-memory DB.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(keys ...string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := make(map[string][]byte, len(keys))

	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			values[k] = slices.Clone(v)
		}
	}

	return values, nil
}

func (m *Memory) Set(values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range values {
		m.data[k] = slices.Clone(v)
	}

	m.writes++

	return nil
}

func (m *Memory) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.data, k)
	}

	return nil
}

func (m *Memory) Close() error {
	return nil
}

// Writes returns how many Set calls have been made.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writes
}
