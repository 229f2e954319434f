package ratelimit

import "testing"

func TestRegistry_Disabled(t *testing.T) {
	r := NewRegistry(0)
	if r.Enabled() {
		t.Error("Enabled() = true for commandsPerSecond=0")
	}
	for i := 0; i < 1000; i++ {
		if !r.Allow("1.2.3.4") {
			t.Fatal("disabled registry refused a command")
		}
	}
}

func TestRegistry_PerAddressIsolation(t *testing.T) {
	r := NewRegistry(1)

	if !r.Allow("a") {
		t.Fatal("first command from a should be allowed")
	}
	if r.Allow("a") {
		t.Fatal("second immediate command from a should be throttled")
	}
	if !r.Allow("b") {
		t.Fatal("a's throttling should not affect a different address")
	}
}

func TestRegistry_ForgetResetsState(t *testing.T) {
	r := NewRegistry(1)
	r.Allow("a")
	r.Allow("a") // exhausts the burst

	r.Forget("a")
	if !r.Allow("a") {
		t.Error("Allow after Forget should start with a fresh limiter")
	}
}
