// Package cmap provides a concurrent map implementation for FlashKV.
//
// This package implements a sharded concurrent map optimized for
// high-throughput keyed lookups with the following features:
//
//   - Sharding: Configurable shard count for parallelism
//   - Fine-grained Locking: Per-shard RWMutex for minimal contention
//   - Upsert: create-or-update under the shard's write lock
//
// There are no versioned compare-and-swap operations and no iteration API.
//
// Usage:
//
//	m := cmap.NewWithShards[string, *rate.Limiter](32)
//	m.Set("key", limiter)
//	val, ok := m.Get("key")
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete) use Lock.
package cmap
