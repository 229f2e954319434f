// Package storage implements FlashKV's sharded, in-memory storage engine.
//
// The engine holds string and list values behind a fixed number of
// independent shards, each guarded by its own pair of reader-writer locks.
// Keys expire lazily (checked on read) and actively (reclaimed by the
// background sweeper in sweeper.go). All counters are advisory and use
// relaxed atomic operations; they never gate correctness.
package storage
