package localcache

import (
	"errors"
	"sync"
)

// ErrInjected is returned by a MemoryStore whose Fail flag is set.
var ErrInjected = errors.New("localcache: injected failure")

// MemoryStore is an in-process Store, used in tests and as a last-resort
// cache when the cache file cannot be opened.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	// FailWrites makes every mutation return ErrInjected.
	FailWrites bool
	// FailReads makes every Get return ErrInjected.
	FailReads bool
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return "", false, ErrInjected
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store.
func (m *MemoryStore) Set(key, value string) error {
	return m.SetMany(map[string]string{key: value})
}

// SetMany implements Store.
func (m *MemoryStore) SetMany(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrInjected
	}
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrInjected
	}
	delete(m.values, key)
	return nil
}
