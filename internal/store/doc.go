// Package store provides SQLite-backed memoization of text-channel query
// results and a history of query runs.
//
// Results are keyed by a content hash of (language, program, input), computed
// over canonical JSON with domain-separated SHA-256, so the same query over
// maps that differ only in key order shares one entry. Failed executions are
// recorded as runs but never cached.
//
// # Ordering
//
// Runs are stamped with a logical seq number, never a timestamp. All listing
// queries use ORDER BY seq ASC, id ASC COLLATE BINARY, so history output is
// deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
