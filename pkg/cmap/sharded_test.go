package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	m := New[string, int]()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if len(m.shards) != DefaultShardCount {
		t.Errorf("shard count = %d, want %d", len(m.shards), DefaultShardCount)
	}
}

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},  // invalid → default
		{-1, DefaultShardCount}, // invalid → default
		{3, DefaultShardCount},  // not power of 2 → default
		{1, 1},                  // power of 2
		{2, 2},                  // power of 2
		{4, 4},                  // power of 2
		{8, 8},                  // power of 2
		{16, 16},                // power of 2
		{32, 32},                // power of 2
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[string, int](tt.input)
			if len(m.shards) != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d",
					tt.input, len(m.shards), tt.expected)
			}
		})
	}
}

// limiterStub stands in for *rate.Limiter in tests that don't need a real
// token bucket, mirroring how internal/ratelimit.Registry keys this map by
// remote address.
type limiterStub struct {
	addr       string
	allowCalls int
}

func TestSetAndGet(t *testing.T) {
	m := New[string, *limiterStub]()

	m.Set("10.0.0.1", &limiterStub{addr: "10.0.0.1"})
	m.Set("10.0.0.2", &limiterStub{addr: "10.0.0.2"})

	val, ok := m.Get("10.0.0.1")
	if !ok || val.addr != "10.0.0.1" {
		t.Errorf("Get(10.0.0.1) = (%+v, %v), want addr 10.0.0.1", val, ok)
	}

	val, ok = m.Get("10.0.0.2")
	if !ok || val.addr != "10.0.0.2" {
		t.Errorf("Get(10.0.0.2) = (%+v, %v), want addr 10.0.0.2", val, ok)
	}

	if _, ok := m.Get("10.0.0.3"); ok {
		t.Error("Get on an address that was never seen should report false")
	}
}

func TestDelete(t *testing.T) {
	m := New[string, *limiterStub]()

	m.Set("10.0.0.1", &limiterStub{addr: "10.0.0.1"})
	m.Delete("10.0.0.1")

	if _, ok := m.Get("10.0.0.1"); ok {
		t.Error("address should not exist after its connection closes and forgets it")
	}

	// Forgetting an address whose connection already raced to close twice
	// must not panic.
	m.Delete("10.0.0.1")
}

func TestHas(t *testing.T) {
	m := New[string, *limiterStub]()

	m.Set("10.0.0.1", &limiterStub{addr: "10.0.0.1"})

	if !m.Has("10.0.0.1") {
		t.Error("Has(10.0.0.1) should return true")
	}

	if m.Has("10.0.0.9") {
		t.Error("Has(10.0.0.9) should return false")
	}
}

func TestCount(t *testing.T) {
	m := New[string, *limiterStub]()

	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}

	m.Set("10.0.0.1", &limiterStub{})
	m.Set("10.0.0.2", &limiterStub{})
	m.Set("10.0.0.3", &limiterStub{})

	if m.Count() != 3 {
		t.Errorf("Count() = %d, want 3", m.Count())
	}

	m.Delete("10.0.0.2")
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}
}

func TestClear(t *testing.T) {
	m := New[string, *limiterStub]()

	m.Set("10.0.0.1", &limiterStub{})
	m.Set("10.0.0.2", &limiterStub{})
	m.Clear()

	if m.Count() != 0 {
		t.Errorf("Count() after Clear() = %d, want 0", m.Count())
	}
}

func TestOverwrite(t *testing.T) {
	m := New[string, int]()

	m.Set("10.0.0.1", 1)
	m.Set("10.0.0.1", 2)

	val, ok := m.Get("10.0.0.1")
	if !ok || val != 2 {
		t.Errorf("Get(10.0.0.1) = (%d, %v), want (2, true)", val, ok)
	}
}

// TestConcurrentAccess simulates many connections from distinct remote
// addresses racing to register, read, and replace their rate limiters
// concurrently, which is exactly the access pattern internal/ratelimit
// drives against this map in production.
func TestConcurrentAccess(t *testing.T) {
	m := New[string, *limiterStub]()
	var wg sync.WaitGroup
	numGoroutines := 100
	numOps := 1000

	addr := func(base, j int) string {
		return fmt.Sprintf("10.%d.%d.1", base, j%256)
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				m.Set(addr(base, j), &limiterStub{addr: addr(base, j)})
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				m.Get(addr(base, j))
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				k := addr(base, j)
				m.Set(k, &limiterStub{addr: k})
				m.Get(k)
				m.Has(k)
			}
		}(i)
	}
	wg.Wait()
}

func TestPointerValue(t *testing.T) {
	m := New[string, *limiterStub]()

	l := &limiterStub{addr: "10.0.0.1"}
	m.Set("10.0.0.1", l)

	retrieved, ok := m.Get("10.0.0.1")
	if !ok || retrieved != l {
		t.Error("retrieved pointer is different from original")
	}

	retrieved.allowCalls++

	retrieved2, _ := m.Get("10.0.0.1")
	if retrieved2.allowCalls != 1 {
		t.Error("mutation through the pointer was not reflected")
	}
}
