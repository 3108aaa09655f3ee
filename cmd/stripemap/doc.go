// Package main provides the entry point for the stripemap tool.
//
// The tool exercises the lock-striped concurrent map:
//
//   - Benchmarking (mixed read/write workload, baseline comparison)
//   - Correctness verification (sequential and concurrent checks)
//
// Usage:
//
//	stripemap [command] [flags]
//	stripemap bench --workers 8 --ops 100000 --read-ratio 0.7
//	stripemap verify --workers 8 --keys 10000
//
// @design DS-0601
package main
