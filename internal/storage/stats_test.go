package storage

import "testing"

func TestEngine_Stats(t *testing.T) {
	e := New()
	e.Set("a", []byte("v"), 0, false, false, false)
	e.Get("a")
	e.Get("a")
	e.Del([]string{"a"})

	s := e.Stats()
	if s.SetCount != 1 {
		t.Errorf("SetCount = %d, want 1", s.SetCount)
	}
	if s.GetCount != 2 {
		t.Errorf("GetCount = %d, want 2", s.GetCount)
	}
	if s.DelCount != 1 {
		t.Errorf("DelCount = %d, want 1", s.DelCount)
	}
	if s.KeyCount != 0 {
		t.Errorf("KeyCount = %d, want 0", s.KeyCount)
	}
}

func TestEngine_MemoryInfo(t *testing.T) {
	e := New()
	if n := e.MemoryInfo(); n != 0 {
		t.Errorf("MemoryInfo on empty engine = %d, want 0", n)
	}

	e.Set("key", []byte("value"), 0, false, false, false)
	n := e.MemoryInfo()
	want := int64(len("key") + len("value") + fixedOverheadPerEntry)
	if n != want {
		t.Errorf("MemoryInfo = %d, want %d", n, want)
	}

	e.RPush("list", [][]byte{[]byte("a"), []byte("bb")})
	n2 := e.MemoryInfo()
	if n2 <= n {
		t.Error("MemoryInfo did not grow after adding a list")
	}
}
