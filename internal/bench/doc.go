// Package bench provides the concurrency benchmark harness.
//
// It drives a configurable mix of randomized get/put/remove operations
// from many workers against a shared map target and reports throughput
// and mean latency. The same harness runs against the striped map and
// against a single-global-lock baseline so the two can be compared
// under identical workloads.
//
// Workload shape follows the classic mixed read/write benchmark:
// a read ratio decides reads vs writes, and writes split 80/20 between
// puts and removes. Each key's value is derived from the key itself,
// so a randomized run remains verifiable afterwards.
//
// Run it via the stripemap CLI:
//
//	stripemap bench --workers 8 --ops 100000 --read-ratio 0.7
//
// @req RQ-0201
// @design DS-0201
package bench
