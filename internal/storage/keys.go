package storage

import (
	"time"
	"unicode/utf8"
)

// Type returns "string", "list", or "none" after a lazy expiry check.
func (e *Engine) Type(key string) (string, error) {
	sh := e.shardFor(key)
	at := now()

	sh.stringsMu.RLock()
	se, ok := sh.strings[key]
	stringBound := ok && !se.expired(at)
	sh.stringsMu.RUnlock()
	if stringBound {
		return "string", nil
	}

	sh.listsMu.RLock()
	le, ok := sh.lists[key]
	listBound := ok && !le.expired(at)
	sh.listsMu.RUnlock()
	if listBound {
		return "list", nil
	}

	return "none", nil
}

// Exists reports how many of the given keys are currently bound and
// non-expired; a key listed twice counts twice.
func (e *Engine) Exists(keys []string) int64 {
	var n int64
	for _, k := range keys {
		t, _ := e.Type(k)
		if t != "none" {
			n++
		}
	}
	return n
}

// Del deletes the given keys, returning the count actually removed.
func (e *Engine) Del(keys []string) int64 {
	var removed int64
	for _, key := range keys {
		sh := e.shardFor(key)
		at := now()

		sh.stringsMu.Lock()
		if se, ok := sh.strings[key]; ok {
			delete(sh.strings, key)
			if !se.expired(at) {
				removed++
			}
		}
		sh.stringsMu.Unlock()

		sh.listsMu.Lock()
		if le, ok := sh.lists[key]; ok {
			delete(sh.lists, key)
			if !le.expired(at) {
				removed++
			}
		}
		sh.listsMu.Unlock()
	}
	if removed > 0 {
		e.counters.keyCount.Add(-removed)
		e.counters.delCount.Add(removed)
	}
	return removed
}

// DBSize is an alias for the key_count counter.
func (e *Engine) DBSize() int64 {
	return e.counters.keyCount.Load()
}

// Expire assigns expires_at = now + ttl to an existing, non-expired
// entry. A non-positive ttl deletes the key and reports success, per
// spec. Returns false if the key doesn't exist.
func (e *Engine) Expire(key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		removed := e.Del([]string{key})
		return removed > 0, nil
	}
	return e.setExpiry(key, now().Add(ttl))
}

// ExpireAt converts a wall-clock instant to a monotonic deadline once, at
// command time; later clock adjustments never move it (see DESIGN.md).
func (e *Engine) ExpireAt(key string, at time.Time) (bool, error) {
	if !at.After(now()) {
		removed := e.Del([]string{key})
		return removed > 0, nil
	}
	d := time.Until(at)
	return e.setExpiry(key, now().Add(d))
}

func (e *Engine) setExpiry(key string, deadline time.Time) (bool, error) {
	sh := e.shardFor(key)
	at := now()

	sh.stringsMu.Lock()
	if se, ok := sh.strings[key]; ok && !se.expired(at) {
		se.expiresAt = deadline
		sh.stringsMu.Unlock()
		return true, nil
	}
	sh.stringsMu.Unlock()

	sh.listsMu.Lock()
	defer sh.listsMu.Unlock()
	if le, ok := sh.lists[key]; ok && !le.expired(at) {
		le.expiresAt = deadline
		return true, nil
	}
	return false, nil
}

// Persist clears a key's expiry, returning whether it had one.
func (e *Engine) Persist(key string) (bool, error) {
	sh := e.shardFor(key)
	at := now()

	sh.stringsMu.Lock()
	if se, ok := sh.strings[key]; ok && !se.expired(at) {
		had := !se.expiresAt.IsZero()
		se.expiresAt = time.Time{}
		sh.stringsMu.Unlock()
		return had, nil
	}
	sh.stringsMu.Unlock()

	sh.listsMu.Lock()
	defer sh.listsMu.Unlock()
	if le, ok := sh.lists[key]; ok && !le.expired(at) {
		had := !le.expiresAt.IsZero()
		le.expiresAt = time.Time{}
		return had, nil
	}
	return false, nil
}

// TTL returns -2 if key is missing, -1 if it has no expiry, or the
// remaining seconds, rounded up.
func (e *Engine) TTL(key string) int64 {
	d, ok := e.remaining(key)
	if !ok {
		return -2
	}
	if d < 0 {
		return -1
	}
	return int64((d + time.Second - 1) / time.Second)
}

// PTTL is TTL's millisecond-resolution counterpart.
func (e *Engine) PTTL(key string) int64 {
	d, ok := e.remaining(key)
	if !ok {
		return -2
	}
	if d < 0 {
		return -1
	}
	return int64(d / time.Millisecond)
}

// remaining returns (duration-until-expiry, true) for a bound key, where
// a negative duration means "no expiry", or (0, false) if the key is
// missing or expired.
func (e *Engine) remaining(key string) (time.Duration, bool) {
	sh := e.shardFor(key)
	at := now()

	sh.stringsMu.RLock()
	if se, ok := sh.strings[key]; ok && !se.expired(at) {
		defer sh.stringsMu.RUnlock()
		if se.expiresAt.IsZero() {
			return -1, true
		}
		return se.expiresAt.Sub(at), true
	}
	sh.stringsMu.RUnlock()

	sh.listsMu.RLock()
	defer sh.listsMu.RUnlock()
	if le, ok := sh.lists[key]; ok && !le.expired(at) {
		if le.expiresAt.IsZero() {
			return -1, true
		}
		return le.expiresAt.Sub(at), true
	}
	return 0, false
}

// Rename moves key's binding (whichever type it is) to newkey, replacing
// anything newkey previously held. Returns false if key doesn't exist.
func (e *Engine) Rename(key, newkey string) (bool, error) {
	t, _ := e.Type(key)
	switch t {
	case "none":
		return false, nil
	case "string":
		v, _, _ := e.Get(key)
		ttl, hasTTL := e.ttlDuration(key)
		e.Del([]string{key})
		_, err := e.Set(newkey, v, ttl, hasTTL, false, false)
		return true, err
	default: // list
		items, _ := e.LRange(key, 0, -1)
		ttl, hasTTL := e.ttlDuration(key)
		e.Del([]string{key, newkey})
		if len(items) > 0 {
			if _, err := e.RPush(newkey, items); err != nil {
				return true, err
			}
		}
		if hasTTL {
			_, err := e.Expire(newkey, ttl)
			return true, err
		}
		return true, nil
	}
}

// RenameNX is like Rename but only succeeds if newkey doesn't exist.
func (e *Engine) RenameNX(key, newkey string) (bool, error) {
	t, _ := e.Type(newkey)
	if t != "none" {
		return false, nil
	}
	return e.Rename(key, newkey)
}

func (e *Engine) ttlDuration(key string) (time.Duration, bool) {
	d, ok := e.remaining(key)
	if !ok || d < 0 {
		return 0, false
	}
	return d, true
}

// Keys scans every shard and collects keys whose UTF-8 form matches
// pattern. Non-UTF-8 keys never match. Expired keys are simply skipped in
// this pass — not actively reclaimed — so KEYS never takes a write lock.
func (e *Engine) Keys(pattern string) []string {
	var out []string
	at := now()
	for i := range e.shards {
		sh := &e.shards[i]

		sh.stringsMu.RLock()
		for k, v := range sh.strings {
			if v.expired(at) || !utf8.ValidString(k) {
				continue
			}
			if matchGlob(pattern, k) {
				out = append(out, k)
			}
		}
		sh.stringsMu.RUnlock()

		sh.listsMu.RLock()
		for k, v := range sh.lists {
			if v.expired(at) || !utf8.ValidString(k) {
				continue
			}
			if matchGlob(pattern, k) {
				out = append(out, k)
			}
		}
		sh.listsMu.RUnlock()
	}
	return out
}

// RandomKey returns an arbitrary non-expired key, or "" if the database
// is empty. It walks the shards in order and returns the first live key
// it finds; expired keys passed over on the way add to its cost.
func (e *Engine) RandomKey() string {
	at := now()
	for i := range e.shards {
		sh := &e.shards[i]
		sh.stringsMu.RLock()
		for k, v := range sh.strings {
			if !v.expired(at) {
				sh.stringsMu.RUnlock()
				return k
			}
		}
		sh.stringsMu.RUnlock()

		sh.listsMu.RLock()
		for k, v := range sh.lists {
			if !v.expired(at) {
				sh.listsMu.RUnlock()
				return k
			}
		}
		sh.listsMu.RUnlock()
	}
	return ""
}
