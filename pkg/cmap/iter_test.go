package cmap

import (
	"sync"
	"testing"
)

func TestUpsert_CreatesOnFirstCall(t *testing.T) {
	m := New[string, *limiterStub]()

	created := m.Upsert("10.0.0.1", nil, func(existing *limiterStub, exists bool) *limiterStub {
		if exists {
			t.Fatal("first Upsert for a fresh key must see exists=false")
		}
		return &limiterStub{addr: "10.0.0.1"}
	})

	if created == nil || created.addr != "10.0.0.1" {
		t.Fatalf("Upsert() = %+v, want a limiter for 10.0.0.1", created)
	}

	val, ok := m.Get("10.0.0.1")
	if !ok || val != created {
		t.Error("Upsert should have stored the value it returned")
	}
}

func TestUpsert_ReusesExisting(t *testing.T) {
	m := New[string, *limiterStub]()
	first := &limiterStub{addr: "10.0.0.1"}
	m.Set("10.0.0.1", first)

	got := m.Upsert("10.0.0.1", nil, func(existing *limiterStub, exists bool) *limiterStub {
		if !exists {
			t.Fatal("Upsert against a populated key must see exists=true")
		}
		return existing
	})

	if got != first {
		t.Error("Upsert should return the pre-existing limiter unchanged")
	}
}

// TestUpsert_ConcurrentCreateIsRaceFree mirrors internal/ratelimit.Registry's
// limiterFor: many connections from the same never-before-seen remote
// address race to create its rate limiter. Upsert's per-shard lock must
// make exactly one winner, and every caller must observe that winner.
func TestUpsert_ConcurrentCreateIsRaceFree(t *testing.T) {
	m := New[string, *limiterStub]()
	const racers = 64

	results := make([]*limiterStub, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = m.Upsert("10.0.0.1", nil, func(existing *limiterStub, exists bool) *limiterStub {
				if exists {
					return existing
				}
				return &limiterStub{addr: "10.0.0.1"}
			})
		}(i)
	}
	wg.Wait()

	winner := results[0]
	for i, r := range results {
		if r != winner {
			t.Fatalf("racer %d got a different limiter than racer 0; Upsert let two winners through", i)
		}
	}
}
