package stripemap

import "sync"

// entry is a single key-value pair in a bucket chain. The key never
// changes after insertion; the value is overwritten in place on upsert.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// bucket is one stripe of the map: a reader-writer lock plus the chain
// of entries whose keys hash to this slot. Chain order carries no
// meaning, so removal may reorder it.
type bucket[K comparable, V any] struct {
	mu      sync.RWMutex
	entries []entry[K, V]
}

// scan looks up key under a shared lock. Any number of scanners may run
// on the same bucket at once.
func (b *bucket[K, V]) scan(key K) (V, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := range b.entries {
		if b.entries[i].key == key {
			return b.entries[i].value, true
		}
	}
	var zero V
	return zero, false
}

// upsert overwrites the value for key if present, otherwise appends a
// new entry. Runs under an exclusive lock.
func (b *bucket[K, V]) upsert(key K, value V) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.entries {
		if b.entries[i].key == key {
			b.entries[i].value = value
			return
		}
	}
	b.entries = append(b.entries, entry[K, V]{key: key, value: value})
}

// erase removes the entry for key if present and reports whether it did.
// The last entry is swapped into the vacated slot. Exclusive lock.
func (b *bucket[K, V]) erase(key K) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.entries {
		if b.entries[i].key == key {
			last := len(b.entries) - 1
			b.entries[i] = b.entries[last]
			b.entries[last] = entry[K, V]{} // release value for GC
			b.entries = b.entries[:last]
			return true
		}
	}
	return false
}

// count returns the current chain length under a shared lock.
func (b *bucket[K, V]) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// drain empties the chain under an exclusive lock.
func (b *bucket[K, V]) drain() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
}
