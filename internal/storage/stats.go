package storage

import "sync/atomic"

// counters holds the engine's advisory statistics. All increments use
// relaxed atomic operations: they tolerate small races under concurrent
// modification and never participate in happens-before reasoning about
// the data they describe.
type counters struct {
	keyCount     atomic.Int64
	getCount     atomic.Int64
	setCount     atomic.Int64
	delCount     atomic.Int64
	expiredCount atomic.Int64
}

// Stats is a point-in-time snapshot of the engine's counters.
type Stats struct {
	KeyCount     int64
	GetCount     int64
	SetCount     int64
	DelCount     int64
	ExpiredCount int64
}

// Stats snapshots the engine's counters.
func (e *Engine) Stats() Stats {
	return Stats{
		KeyCount:     e.counters.keyCount.Load(),
		GetCount:     e.counters.getCount.Load(),
		SetCount:     e.counters.setCount.Load(),
		DelCount:     e.counters.delCount.Load(),
		ExpiredCount: e.counters.expiredCount.Load(),
	}
}

// fixedOverheadPerEntry is a rough per-entry bookkeeping cost (map slot,
// entry struct header, pointer) used to estimate memory usage. It's a
// rule of thumb, not an exact accounting.
const fixedOverheadPerEntry = 64

// MemoryInfo returns a rough byte estimate: the sum over every
// non-expired entry of its key length, its value length, and a fixed
// per-entry overhead.
func (e *Engine) MemoryInfo() int64 {
	var total int64
	at := now()
	for i := range e.shards {
		sh := &e.shards[i]

		sh.stringsMu.RLock()
		for k, v := range sh.strings {
			if v.expired(at) {
				continue
			}
			total += int64(len(k)) + int64(len(v.value)) + fixedOverheadPerEntry
		}
		sh.stringsMu.RUnlock()

		sh.listsMu.RLock()
		for k, v := range sh.lists {
			if v.expired(at) {
				continue
			}
			size := int64(len(k)) + fixedOverheadPerEntry
			for el := v.items.Front(); el != nil; el = el.Next() {
				size += int64(len(el.Value.([]byte)))
			}
			total += size
		}
		sh.listsMu.RUnlock()
	}
	return total
}
