package storage

import (
	"container/list"
	"time"
)

// StringEntry holds a single string-typed binding.
type StringEntry struct {
	value        []byte
	expiresAt    time.Time // zero value means no expiry
	createdAt    time.Time
	lastAccessed time.Time
}

func newStringEntry(value []byte, expiresAt time.Time) *StringEntry {
	t := now()
	return &StringEntry{
		value:        cloneBytes(value),
		expiresAt:    expiresAt,
		createdAt:    t,
		lastAccessed: t,
	}
}

func (e *StringEntry) expired(at time.Time) bool {
	return !e.expiresAt.IsZero() && !at.Before(e.expiresAt)
}

// ListEntry holds a single list-typed binding. items supports O(1)
// insertion and removal at both ends via a doubly linked list; the spec
// mandates that a list entry never exists with zero items, so every
// mutator that can empty the list deletes the binding itself.
type ListEntry struct {
	items     *list.List
	expiresAt time.Time
	createdAt time.Time
}

func newListEntry() *ListEntry {
	return &ListEntry{
		items:     list.New(),
		createdAt: now(),
	}
}

func (e *ListEntry) expired(at time.Time) bool {
	return !e.expiresAt.IsZero() && !at.Before(e.expiresAt)
}

// cloneBytes returns an independent copy of b. The engine never hands out
// a slice that aliases its own internal storage, and never retains a
// slice handed in by a caller — matching the ownership rule in the data
// model: "returned values are independent clones that the caller owns".
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
