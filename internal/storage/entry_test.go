package storage

import (
	"testing"
	"time"
)

func TestStringEntry_Expired(t *testing.T) {
	base := time.Now()

	tests := []struct {
		name      string
		expiresAt time.Time
		at        time.Time
		want      bool
	}{
		{"zero expiry never expires", time.Time{}, base.Add(time.Hour), false},
		{"future expiry not yet expired", base.Add(time.Minute), base, false},
		{"past expiry is expired", base.Add(-time.Minute), base, true},
		{"exact boundary counts as expired", base, base, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newStringEntry([]byte("v"), tt.expiresAt)
			e.expiresAt = tt.expiresAt
			if got := e.expired(tt.at); got != tt.want {
				t.Errorf("expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCloneBytes(t *testing.T) {
	orig := []byte("hello")
	clone := cloneBytes(orig)
	clone[0] = 'H'
	if orig[0] != 'h' {
		t.Error("cloneBytes shares backing array with the original")
	}
	if cloneBytes(nil) != nil {
		t.Error("cloneBytes(nil) should return nil")
	}
}
