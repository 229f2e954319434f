package storage

import (
	"strconv"
	"time"
)

// isListBound reports whether key is currently bound to a non-expired
// list entry. It takes only the list lock, and releases it before the
// caller proceeds — the two per-shard locks are never held together.
func (sh *shard) isListBound(key string, at time.Time) bool {
	sh.listsMu.RLock()
	e, ok := sh.lists[key]
	bound := ok && !e.expired(at)
	sh.listsMu.RUnlock()
	return bound
}

// isStringBound reports whether key is currently bound to a non-expired
// string entry.
func (sh *shard) isStringBound(key string, at time.Time) bool {
	sh.stringsMu.RLock()
	e, ok := sh.strings[key]
	bound := ok && !e.expired(at)
	sh.stringsMu.RUnlock()
	return bound
}

// dropListBinding deletes key from the list map if present, regardless of
// expiry. Used by commands (SET) that explicitly replace a key's type.
func (sh *shard) dropListBinding(key string) {
	sh.listsMu.Lock()
	delete(sh.lists, key)
	sh.listsMu.Unlock()
}

// Get implements the GET-shape read: a read lock on the key's shard, a
// miss/expired check, and the mandatory "upgrade on expired" pattern.
// A narrow race exists between dropping the read lock and acquiring the
// write lock, during which another writer could rebind the key; the
// re-check after acquiring the write lock is what makes this safe, not
// the absence of the window.
func (e *Engine) Get(key string) ([]byte, bool, error) {
	sh := e.shardFor(key)
	at := now()

	sh.stringsMu.RLock()
	entry, ok := sh.strings[key]
	if !ok {
		sh.stringsMu.RUnlock()
		if sh.isListBound(key, at) {
			return nil, false, ErrWrongType
		}
		return nil, false, nil
	}
	if !entry.expired(at) {
		entry.lastAccessed = at
		value := cloneBytes(entry.value)
		sh.stringsMu.RUnlock()
		e.counters.getCount.Add(1)
		return value, true, nil
	}
	sh.stringsMu.RUnlock()

	sh.stringsMu.Lock()
	entry, ok = sh.strings[key]
	if ok && entry.expired(now()) {
		delete(sh.strings, key)
		e.counters.keyCount.Add(-1)
		e.counters.expiredCount.Add(1)
		ok = false
	}
	sh.stringsMu.Unlock()

	if !ok {
		return nil, false, nil
	}
	// Another writer rebound the key between the two critical sections;
	// re-read it fresh rather than return the stale clone.
	return e.Get(key)
}

// Set implements the SET-shape write. SET explicitly replaces whatever
// type previously held the key, so — unlike APPEND/INCR/etc. — it never
// reports WRONGTYPE against a list-bound key; it just drops the list
// binding first. hasTTL selects whether ttl is applied; nx/xx implement
// the NX/XX set-condition variants under the same write lock that
// performs the write, so there is no time-of-check/time-of-use gap.
func (e *Engine) Set(key string, value []byte, ttl time.Duration, hasTTL, nx, xx bool) (ok bool, err error) {
	sh := e.shardFor(key)
	at := now()

	listBound := sh.isListBound(key, at)
	if listBound {
		sh.dropListBinding(key)
	}

	sh.stringsMu.Lock()
	defer sh.stringsMu.Unlock()

	existing, hasExisting := sh.strings[key]
	stringBound := hasExisting && !existing.expired(at)
	bound := stringBound || listBound

	if nx && bound {
		return false, nil
	}
	if xx && !bound {
		return false, nil
	}

	var expiresAt time.Time
	if hasTTL {
		expiresAt = at.Add(ttl)
	}
	sh.strings[key] = newStringEntry(value, expiresAt)
	if !bound {
		e.counters.keyCount.Add(1)
	}
	e.counters.setCount.Add(1)
	return true, nil
}

// GetSet atomically sets key to value and returns the previous value (nil
// if it was unset), under a single write lock.
func (e *Engine) GetSet(key string, value []byte) (prev []byte, hadPrev bool, err error) {
	sh := e.shardFor(key)
	at := now()

	if sh.isListBound(key, at) {
		return nil, false, ErrWrongType
	}

	sh.stringsMu.Lock()
	defer sh.stringsMu.Unlock()

	existing, ok := sh.strings[key]
	if ok && !existing.expired(at) {
		prev = cloneBytes(existing.value)
		hadPrev = true
	} else {
		ok = false
	}

	sh.strings[key] = newStringEntry(value, time.Time{})
	if !ok {
		e.counters.keyCount.Add(1)
	}
	e.counters.setCount.Add(1)
	return prev, hadPrev, nil
}

// GetDel atomically returns a key's value and deletes it.
func (e *Engine) GetDel(key string) (value []byte, existed bool, err error) {
	sh := e.shardFor(key)
	at := now()

	if sh.isListBound(key, at) {
		return nil, false, ErrWrongType
	}

	sh.stringsMu.Lock()
	entry, ok := sh.strings[key]
	if ok && !entry.expired(at) {
		value = cloneBytes(entry.value)
		existed = true
		delete(sh.strings, key)
	} else if ok {
		delete(sh.strings, key)
	}
	sh.stringsMu.Unlock()

	if existed {
		e.counters.keyCount.Add(-1)
		e.counters.delCount.Add(1)
	}
	return value, existed, nil
}

// applyIncr is the shared body of INCR/INCRBY/DECR/DECRBY: it is atomic
// under the shard's write lock, parses the existing value as a base-10
// signed 64-bit integer (treating a missing or expired key as 0),
// computes the new value with overflow checking, writes back the ASCII
// representation, and preserves any existing TTL.
func (e *Engine) applyIncr(key string, delta int64) (int64, error) {
	sh := e.shardFor(key)
	at := now()

	if sh.isListBound(key, at) {
		return 0, ErrWrongType
	}

	sh.stringsMu.Lock()
	defer sh.stringsMu.Unlock()

	existing, ok := sh.strings[key]
	isNew := !ok || existing.expired(at)

	var current int64
	var expiresAt time.Time
	if !isNew {
		parsed, err := strconv.ParseInt(string(existing.value), 10, 64)
		if err != nil {
			return 0, ErrNotAnInteger
		}
		current = parsed
		expiresAt = existing.expiresAt
	}

	sum, overflow := addOverflows(current, delta)
	if overflow {
		return 0, ErrIntegerOverflow
	}

	sh.strings[key] = &StringEntry{
		value:        []byte(strconv.FormatInt(sum, 10)),
		expiresAt:    expiresAt,
		createdAt:    now(),
		lastAccessed: now(),
	}
	if isNew {
		e.counters.keyCount.Add(1)
	}
	e.counters.setCount.Add(1)
	return sum, nil
}

func addOverflows(a, b int64) (sum int64, overflow bool) {
	sum = a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, true
	}
	return sum, false
}

// Incr increments key by 1.
func (e *Engine) Incr(key string) (int64, error) { return e.applyIncr(key, 1) }

// IncrBy increments key by delta.
func (e *Engine) IncrBy(key string, delta int64) (int64, error) { return e.applyIncr(key, delta) }

// Decr decrements key by 1.
func (e *Engine) Decr(key string) (int64, error) { return e.applyIncr(key, -1) }

// DecrBy decrements key by delta.
func (e *Engine) DecrBy(key string, delta int64) (int64, error) {
	if delta == minInt64 {
		// -delta would itself overflow; treat as a dedicated overflow case.
		return 0, ErrIntegerOverflow
	}
	return e.applyIncr(key, -delta)
}

const minInt64 = -1 << 63

// Append concatenates value to the existing string (treating a missing or
// expired key as empty), preserving any existing TTL, and returns the new
// length.
func (e *Engine) Append(key string, value []byte) (int64, error) {
	sh := e.shardFor(key)
	at := now()

	if sh.isListBound(key, at) {
		return 0, ErrWrongType
	}

	sh.stringsMu.Lock()
	defer sh.stringsMu.Unlock()

	existing, ok := sh.strings[key]
	isNew := !ok || existing.expired(at)

	var base []byte
	var expiresAt time.Time
	if !isNew {
		base = existing.value
		expiresAt = existing.expiresAt
	}

	newValue := make([]byte, 0, len(base)+len(value))
	newValue = append(newValue, base...)
	newValue = append(newValue, value...)

	sh.strings[key] = &StringEntry{
		value:        newValue,
		expiresAt:    expiresAt,
		createdAt:    now(),
		lastAccessed: now(),
	}
	if isNew {
		e.counters.keyCount.Add(1)
	}
	e.counters.setCount.Add(1)
	return int64(len(newValue)), nil
}

// Strlen returns the length of key's string value, or 0 if missing.
func (e *Engine) Strlen(key string) (int64, error) {
	value, ok, err := e.Get(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return int64(len(value)), nil
}

// Mset sets multiple key/value pairs. Each pair goes through Set
// independently (and therefore its own shard lock); MSET is consistent
// per key, not atomic across keys.
func (e *Engine) Mset(pairs [][2][]byte) error {
	for _, kv := range pairs {
		if _, err := e.Set(string(kv[0]), kv[1], 0, false, false, false); err != nil {
			return err
		}
	}
	return nil
}

// Mget returns the values for multiple keys; a missing or wrong-typed key
// yields a nil entry rather than aborting the batch.
func (e *Engine) Mget(keys []string) [][]byte {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		v, ok, err := e.Get(k)
		if err != nil || !ok {
			continue
		}
		out[i] = v
	}
	return out
}
