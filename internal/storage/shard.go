package storage

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// nShards is the fixed shard count. It must stay a power of two so shard
// selection can use a bit-mask instead of a modulo.
const nShards = 64

// ShardCount is nShards exposed for callers (config validation, metrics)
// that need to report or check the engine's fixed partition count.
const ShardCount = nShards

const shardMask = nShards - 1

// shard owns an independent partition of the keyspace: a string map and a
// list map, each behind its own reader-writer lock. The two locks are
// never held together — every operation touches either strings or lists
// of a single shard, never both.
type shard struct {
	stringsMu sync.RWMutex
	strings   map[string]*StringEntry

	listsMu sync.RWMutex
	lists   map[string]*ListEntry
}

func newShard() *shard {
	return &shard{
		strings: make(map[string]*StringEntry),
		lists:   make(map[string]*ListEntry),
	}
}

// shardIndex hashes key with a fixed, process-stable byte hash (murmur3)
// and masks it down to a shard slot. The same function is used for every
// lookup, so a key always lands on the same shard for the life of the
// process.
func shardIndex(key string) int {
	h := murmur3.Sum64([]byte(key))
	return int(h & shardMask)
}
