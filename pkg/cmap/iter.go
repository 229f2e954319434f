// Package cmap provides a concurrent-safe sharded map.
package cmap

// Upsert atomically updates or inserts a value.
//
// The callback receives the existing value (if any) and whether the key
// exists; whatever it returns becomes the stored value. This is the
// registry's only way to create-or-reuse an entry without a check-then-act
// race between two connections from the same remote address racing to
// create the first rate limiter for it.
func (m *Map[K, V]) Upsert(key K, value V, fn func(existingValue V, exists bool) V) V {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	existing, exists := shard.items[key]
	if exists {
		value = fn(existing, true)
	} else {
		value = fn(value, false)
	}
	shard.items[key] = value
	return value
}
