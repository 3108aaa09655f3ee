// Package stripemap provides a lock-striped concurrent map.
//
// This package implements a fixed-size associative container optimized
// for access by many goroutines with the following features:
//
//   - Lock Striping: A fixed array of buckets, each guarded by its own
//     reader-writer lock, so operations on different buckets never contend
//   - Bucket Chains: Entries hashing to the same bucket live in a small
//     unordered chain scanned linearly under the bucket lock
//   - Weakly Consistent Aggregates: Size and Clear walk buckets one lock
//     at a time and never freeze the whole structure
//
// Usage:
//
//	m := stripemap.New[string, int]()
//	m.Put("key", 42)
//	val, ok := m.Get("key")
//
// Thread Safety:
//
// All operations are safe for concurrent use. Read operations (Get,
// Contains, Size) acquire bucket locks in shared mode, write operations
// (Put, Remove, Clear) in exclusive mode. Within one bucket, operations
// are linearizable; across buckets there is no global ordering, which
// Size and Clear document explicitly.
//
// @adr AD-0101
package stripemap
