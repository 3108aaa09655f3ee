// Package stripemap provides a concurrent-safe lock-striped map.
//
// It partitions the keyspace into a fixed number of independently
// locked buckets to reduce contention versus a single global mutex.
//
// @req RQ-0101
// @design DS-0101
package stripemap

import (
	"hash/maphash"
)

// DefaultBucketCount is the default number of buckets (1024 as per DS-0101).
const DefaultBucketCount = 1024

// Map is a concurrent-safe lock-striped map.
//
// A Map must not be copied after first use: each bucket owns live lock
// state, and a copy would alias chains while duplicating their locks.
// New returns a pointer; go vet flags value copies via the noCopy marker.
type Map[K comparable, V any] struct {
	noCopy noCopy

	buckets []bucket[K, V]
	seed    maphash.Seed
}

// New creates a new striped map with the default bucket count.
func New[K comparable, V any]() *Map[K, V] {
	return NewWithBuckets[K, V](DefaultBucketCount)
}

// NewWithBuckets creates a new striped map with the specified bucket
// count. The count is fixed for the map's lifetime; a non-positive
// count falls back to DefaultBucketCount. Any positive count is valid
// since indexing is modulo, not masked.
func NewWithBuckets[K comparable, V any](bucketCount int) *Map[K, V] {
	if bucketCount <= 0 {
		bucketCount = DefaultBucketCount
	}

	return &Map[K, V]{
		buckets: make([]bucket[K, V], bucketCount),
		seed:    maphash.MakeSeed(),
	}
}

// bucketFor returns the bucket a key hashes to. The seed is fixed at
// construction, so a key's bucket never changes for this instance.
func (m *Map[K, V]) bucketFor(key K) *bucket[K, V] {
	idx := maphash.Comparable(m.seed, key) % uint64(len(m.buckets))
	return &m.buckets[idx]
}

// Get retrieves a copy of the value stored for key. It acquires only
// the target bucket's lock, in shared mode; lookups on other buckets
// proceed untouched.
func (m *Map[K, V]) Get(key K) (V, bool) {
	return m.bucketFor(key).scan(key)
}

// Put stores a key-value pair with upsert semantics: an existing entry
// for key has its value overwritten in place, otherwise a new entry is
// added. Only the target bucket's lock is taken, in exclusive mode, so
// puts on different buckets run fully in parallel.
func (m *Map[K, V]) Put(key K, value V) {
	m.bucketFor(key).upsert(key, value)
}

// Remove deletes the entry for key and reports whether one was present.
// Exclusive lock on the target bucket only.
func (m *Map[K, V]) Remove(key K) bool {
	return m.bucketFor(key).erase(key)
}

// Contains reports whether key is present, defined as "Get succeeds".
//
// The check is an independent lock acquisition: it is NOT atomic with
// any subsequent Get, Put, or Remove on the same key, and a concurrent
// mutation between the two calls can make the pair observe inconsistent
// state. Callers needing atomic check-then-act cannot build it from
// this method.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Size returns the total number of entries by summing bucket counts,
// taking each bucket's shared lock in sequence and never more than one
// at a time.
//
// The result is not a point-in-time snapshot: under concurrent
// mutation, buckets visited early are counted at an earlier logical
// moment than buckets visited late. This is an accepted tradeoff of
// not serializing the whole structure behind one lock.
func (m *Map[K, V]) Size() int {
	total := 0
	for i := range m.buckets {
		total += m.buckets[i].count()
	}
	return total
}

// Clear removes all entries, draining each bucket under its own
// exclusive lock in sequence.
//
// Same weak consistency as Size: a Put racing with an in-progress
// Clear may land in a not-yet-drained bucket, so the map may never
// have been globally empty at any single instant.
func (m *Map[K, V]) Clear() {
	for i := range m.buckets {
		m.buckets[i].drain()
	}
}

// BucketCount returns the fixed number of buckets.
func (m *Map[K, V]) BucketCount() int {
	return len(m.buckets)
}

// noCopy makes `go vet -copylocks` reject value copies of the
// enclosing struct.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
