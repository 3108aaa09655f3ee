package bench

import "sync"

// Target is the map surface the harness drives. Both the striped map
// and the baseline satisfy it; the harness never reaches past these
// six operations.
type Target interface {
	Get(key string) (uint64, bool)
	Put(key string, value uint64)
	Remove(key string) bool
	Contains(key string) bool
	Size() int
	Clear()
}

// MutexMap is the naive baseline: one Go map behind one global
// reader-writer lock. Every operation serializes on the same mutex,
// which is exactly the contention the striped map exists to avoid.
// It is part of the harness for comparison only.
type MutexMap struct {
	mu    sync.RWMutex
	items map[string]uint64
}

// NewMutexMap creates an empty baseline map.
func NewMutexMap() *MutexMap {
	return &MutexMap{items: make(map[string]uint64)}
}

// Get retrieves a value by key.
func (m *MutexMap) Get(key string) (uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.items[key]
	return val, ok
}

// Put stores a key-value pair.
func (m *MutexMap) Put(key string, value uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

// Remove deletes a key and reports whether it was present.
func (m *MutexMap) Remove(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	delete(m.items, key)
	return ok
}

// Contains checks if a key exists.
func (m *MutexMap) Contains(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Size returns the number of entries.
func (m *MutexMap) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Clear removes all entries.
func (m *MutexMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]uint64)
}
