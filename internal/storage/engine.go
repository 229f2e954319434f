package storage

// Engine is the sharded, lock-protected key-value store at the heart of
// FlashKV. It is safe for concurrent use by many goroutines: share one
// *Engine (by pointer) across every connection goroutine and the
// background sweeper rather than constructing one per connection.
type Engine struct {
	shards   [nShards]shard
	counters counters
}

// New creates an empty Engine with nShards independent shards.
func New() *Engine {
	e := &Engine{}
	for i := range e.shards {
		e.shards[i] = *newShard()
	}
	return e
}

func (e *Engine) shardFor(key string) *shard {
	return &e.shards[shardIndex(key)]
}

// Flush clears every shard's string and list maps and resets key_count to
// zero. Shard write locks are acquired sequentially, one shard at a time,
// so Flush can never deadlock against the sweeper (which also locks one
// shard at a time).
func (e *Engine) Flush() {
	var removed int64
	for i := range e.shards {
		sh := &e.shards[i]

		sh.stringsMu.Lock()
		removed += int64(len(sh.strings))
		sh.strings = make(map[string]*StringEntry)
		sh.stringsMu.Unlock()

		sh.listsMu.Lock()
		removed += int64(len(sh.lists))
		sh.lists = make(map[string]*ListEntry)
		sh.listsMu.Unlock()
	}
	e.counters.keyCount.Add(-removed)
}
