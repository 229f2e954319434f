package storage

import (
	"container/list"
)

// withListRead runs fn against key's live list entry under a read lock,
// applying the same lazy-expiry upgrade pattern Get uses for strings:
// if the entry turns out to be expired, the read lock is dropped, the
// write lock is acquired, the entry is re-checked and reclaimed if still
// expired. found reports whether a live entry existed (and therefore
// whether fn ran).
func (e *Engine) withListRead(key string, fn func(entry *ListEntry)) (found bool, err error) {
	sh := e.shardFor(key)
	at := now()

	if sh.isStringBound(key, at) {
		return false, ErrWrongType
	}

	sh.listsMu.RLock()
	entry, ok := sh.lists[key]
	if ok && !entry.expired(at) {
		fn(entry)
		sh.listsMu.RUnlock()
		return true, nil
	}
	sh.listsMu.RUnlock()
	if !ok {
		return false, nil
	}

	sh.listsMu.Lock()
	entry, ok = sh.lists[key]
	if ok && entry.expired(now()) {
		delete(sh.lists, key)
		e.counters.keyCount.Add(-1)
		e.counters.expiredCount.Add(1)
	}
	sh.listsMu.Unlock()
	return false, nil
}

// LPush pushes each value to the head of key's list in argument order:
// after pushing v1..vn in sequence, v1 ends up furthest from the head.
// Returns the new length.
func (e *Engine) LPush(key string, values [][]byte) (int64, error) {
	return e.listPush(key, values, true)
}

// RPush pushes each value to the tail of key's list in argument order.
func (e *Engine) RPush(key string, values [][]byte) (int64, error) {
	return e.listPush(key, values, false)
}

func (e *Engine) listPush(key string, values [][]byte, left bool) (int64, error) {
	sh := e.shardFor(key)
	at := now()

	if sh.isStringBound(key, at) {
		return 0, ErrWrongType
	}

	sh.listsMu.Lock()
	defer sh.listsMu.Unlock()

	entry, ok := sh.lists[key]
	isNew := !ok || entry.expired(at)
	if isNew {
		entry = newListEntry()
		sh.lists[key] = entry
	}

	for _, v := range values {
		if left {
			entry.items.PushFront(cloneBytes(v))
		} else {
			entry.items.PushBack(cloneBytes(v))
		}
	}

	if isNew {
		e.counters.keyCount.Add(1)
	}
	e.counters.setCount.Add(1)
	return int64(entry.items.Len()), nil
}

// LPop removes and returns the head of key's list.
func (e *Engine) LPop(key string) ([]byte, bool, error) { return e.listPop(key, true) }

// RPop removes and returns the tail of key's list.
func (e *Engine) RPop(key string) ([]byte, bool, error) { return e.listPop(key, false) }

func (e *Engine) listPop(key string, left bool) ([]byte, bool, error) {
	sh := e.shardFor(key)
	at := now()

	if sh.isStringBound(key, at) {
		return nil, false, ErrWrongType
	}

	sh.listsMu.Lock()
	defer sh.listsMu.Unlock()

	entry, ok := sh.lists[key]
	if !ok {
		return nil, false, nil
	}
	if entry.expired(at) {
		delete(sh.lists, key)
		e.counters.keyCount.Add(-1)
		e.counters.expiredCount.Add(1)
		return nil, false, nil
	}

	var el *list.Element
	if left {
		el = entry.items.Front()
	} else {
		el = entry.items.Back()
	}
	value := el.Value.([]byte)
	entry.items.Remove(el)

	if entry.items.Len() == 0 {
		delete(sh.lists, key)
		e.counters.keyCount.Add(-1)
		e.counters.delCount.Add(1)
	}
	return value, true, nil
}

// LLen returns the length of key's list, or 0 for a missing key.
func (e *Engine) LLen(key string) (int64, error) {
	var n int64
	_, err := e.withListRead(key, func(entry *ListEntry) {
		n = int64(entry.items.Len())
	})
	return n, err
}

// resolveIndex converts a possibly-negative LINDEX-style index against a
// list of length n. Out-of-range indexes (including ones that remain
// negative after the len+i adjustment) are reported via ok=false rather
// than clamped.
func resolveIndex(idx, n int64) (resolved int64, ok bool) {
	if idx < 0 {
		idx = n + idx
	}
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

// LIndex resolves a negative index as len+i and returns the element at
// that position, or (nil, false) if out of range.
func (e *Engine) LIndex(key string, idx int64) ([]byte, bool, error) {
	var value []byte
	var inRange bool
	found, err := e.withListRead(key, func(entry *ListEntry) {
		n := int64(entry.items.Len())
		resolved, ok := resolveIndex(idx, n)
		if !ok {
			return
		}
		el := entry.items.Front()
		for i := int64(0); i < resolved; i++ {
			el = el.Next()
		}
		value = cloneBytes(el.Value.([]byte))
		inRange = true
	})
	if err != nil {
		return nil, false, err
	}
	if !found || !inRange {
		return nil, false, nil
	}
	return value, true, nil
}

// clampToRange clamps idx into [0, n-1] after resolving a negative index
// against n, per LRANGE's normalization rule (distinct from LINDEX's
// out-of-range-is-null rule). n must be > 0.
func clampToRange(idx, n int64) int64 {
	if idx < 0 {
		idx += n
		if idx < 0 {
			idx = 0
		}
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// LRange returns the inclusive range [start, stop] after normalizing both
// bounds (negative = from-end, clamped into [0, len-1]). Inverted or
// empty ranges yield an empty (non-nil-safe) slice. It never panics
// regardless of how extreme start/stop are.
func (e *Engine) LRange(key string, start, stop int64) ([][]byte, error) {
	var result [][]byte
	_, err := e.withListRead(key, func(entry *ListEntry) {
		n := int64(entry.items.Len())
		if n == 0 {
			return
		}
		s := clampToRange(start, n)
		e2 := clampToRange(stop, n)
		if s > e2 {
			return
		}
		el := entry.items.Front()
		var i int64
		for ; i < s; i++ {
			el = el.Next()
		}
		for ; i <= e2; i++ {
			result = append(result, cloneBytes(el.Value.([]byte)))
			el = el.Next()
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LSet sets the element at index i, failing with ErrIndexOutOfRange if i
// is out of bounds after negative-index normalization.
func (e *Engine) LSet(key string, idx int64, value []byte) error {
	sh := e.shardFor(key)
	at := now()

	if sh.isStringBound(key, at) {
		return ErrWrongType
	}

	sh.listsMu.Lock()
	defer sh.listsMu.Unlock()

	entry, ok := sh.lists[key]
	if !ok || entry.expired(at) {
		if ok {
			delete(sh.lists, key)
			e.counters.keyCount.Add(-1)
			e.counters.expiredCount.Add(1)
		}
		return ErrIndexOutOfRange
	}

	n := int64(entry.items.Len())
	resolved, inRange := resolveIndex(idx, n)
	if !inRange {
		return ErrIndexOutOfRange
	}

	el := entry.items.Front()
	for i := int64(0); i < resolved; i++ {
		el = el.Next()
	}
	el.Value = cloneBytes(value)
	e.counters.setCount.Add(1)
	return nil
}

// LRem removes elements of key's list equal to value. count > 0 removes
// the first count matches head-to-tail; count < 0 removes the first
// |count| matches tail-to-head; count == 0 removes every match. Returns
// the number of elements removed. The entry is deleted if it becomes
// empty.
func (e *Engine) LRem(key string, count int64, value []byte) (int64, error) {
	sh := e.shardFor(key)
	at := now()

	if sh.isStringBound(key, at) {
		return 0, ErrWrongType
	}

	sh.listsMu.Lock()
	defer sh.listsMu.Unlock()

	entry, ok := sh.lists[key]
	if !ok {
		return 0, nil
	}
	if entry.expired(at) {
		delete(sh.lists, key)
		e.counters.keyCount.Add(-1)
		e.counters.expiredCount.Add(1)
		return 0, nil
	}

	var removed int64
	switch {
	case count >= 0:
		limit := count
		for el := entry.items.Front(); el != nil; {
			next := el.Next()
			if limit > 0 && removed >= limit {
				break
			}
			if bytesEqual(el.Value.([]byte), value) {
				entry.items.Remove(el)
				removed++
			}
			el = next
		}
	default:
		limit := -count
		for el := entry.items.Back(); el != nil; {
			prev := el.Prev()
			if removed >= limit {
				break
			}
			if bytesEqual(el.Value.([]byte), value) {
				entry.items.Remove(el)
				removed++
			}
			el = prev
		}
	}

	if entry.items.Len() == 0 {
		delete(sh.lists, key)
		e.counters.keyCount.Add(-1)
	}
	if removed > 0 {
		e.counters.delCount.Add(removed)
	}
	return removed, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
