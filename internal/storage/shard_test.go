package storage

import "testing"

func TestShardIndex_Stable(t *testing.T) {
	keys := []string{"a", "user:1", "", "a-much-longer-key-value-here"}
	for _, k := range keys {
		first := shardIndex(k)
		for i := 0; i < 5; i++ {
			if got := shardIndex(k); got != first {
				t.Errorf("shardIndex(%q) not stable across calls: %d vs %d", k, got, first)
			}
		}
		if first < 0 || first >= nShards {
			t.Errorf("shardIndex(%q) = %d, out of [0,%d)", k, first, nShards)
		}
	}
}

func TestShardIndex_Spread(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 10000; i++ {
		k := string(rune('a')) + string(rune(i%26)) + string(rune(i/26))
		seen[shardIndex(k)] = true
	}
	if len(seen) < nShards/2 {
		t.Errorf("shardIndex used only %d of %d shards across 10000 keys", len(seen), nShards)
	}
}
